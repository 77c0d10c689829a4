package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"

	"github.com/antoniostano/babybot/internal/audio"
)

var errNotReady = errors.New("voice connection not ready")

// voiceConn plays clips on a guild voice connection: ffmpeg decodes to
// 48kHz stereo PCM and each 20ms frame is Opus-encoded onto OpusSend.
type voiceConn struct {
	vc     *discordgo.VoiceConnection
	ffmpeg string
}

func (c *voiceConn) Connected() bool {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready && c.vc.OpusSend != nil
}

func (c *voiceConn) Play(ctx context.Context, clip audio.Clip) (<-chan error, error) {
	if clip.Empty() {
		return nil, errors.New("empty clip")
	}
	if !c.Connected() {
		return nil, errNotReady
	}
	enc, err := gopus.NewEncoder(audio.PlaybackSampleRate, audio.PlaybackChannels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}

	playCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(playCtx, c.ffmpeg, ffmpegArgs()...)
	cmd.Stdin = bytes.NewReader(clip.Data)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		defer cancel()
		err := c.stream(playCtx, enc, stdout)
		if err != nil {
			// Unblock ffmpeg before waiting on it.
			cancel()
		}
		if waitErr := cmd.Wait(); err == nil && waitErr != nil {
			err = fmt.Errorf("ffmpeg: %w", waitErr)
		}
		done <- err
	}()
	return done, nil
}

func (c *voiceConn) stream(ctx context.Context, enc *gopus.Encoder, pcm io.Reader) error {
	_ = c.vc.Speaking(true)
	defer func() { _ = c.vc.Speaking(false) }()

	c.vc.RLock()
	send := c.vc.OpusSend
	c.vc.RUnlock()

	frames := audio.NewFrameReader(pcm, audio.PlaybackFrameSize, audio.PlaybackChannels)
	maxBytes := audio.PlaybackFrameSize * audio.PlaybackChannels * 2
	return pumpOpus(ctx, frames, func(frame []int16) ([]byte, error) {
		return enc.Encode(frame, audio.PlaybackFrameSize, maxBytes)
	}, send)
}

type frameSource interface {
	Next() ([]int16, error)
}

// pumpOpus encodes every frame from src and sends the packets in order until
// src is exhausted or ctx is done.
func pumpOpus(ctx context.Context, src frameSource, encode func([]int16) ([]byte, error), send chan<- []byte) error {
	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pcm: %w", err)
		}
		packet, err := encode(frame)
		if err != nil {
			return fmt.Errorf("encode opus: %w", err)
		}
		select {
		case send <- packet:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func ffmpegArgs() []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprint(audio.PlaybackSampleRate),
		"-ac", fmt.Sprint(audio.PlaybackChannels),
		"pipe:1",
	}
}
