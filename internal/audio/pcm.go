package audio

import (
	"encoding/binary"
	"errors"
	"io"
)

// Discord voice playback format.
const (
	PlaybackSampleRate = 48000
	PlaybackChannels   = 2
	// PlaybackFrameSize is samples per channel in one 20ms Opus frame.
	PlaybackFrameSize = 960
)

// FrameReader yields interleaved PCM16LE frames of a fixed sample count.
type FrameReader struct {
	r       io.Reader
	samples int
	buf     []byte
}

// NewFrameReader reads frames of frameSize samples per channel.
func NewFrameReader(r io.Reader, frameSize, channels int) *FrameReader {
	n := frameSize * channels
	return &FrameReader{r: r, samples: n, buf: make([]byte, n*2)}
}

// Next returns the next frame. A trailing partial frame is zero-padded; io.EOF
// is returned once the stream is exhausted.
func (f *FrameReader) Next() ([]int16, error) {
	n, err := io.ReadFull(f.r, f.buf)
	switch {
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		clear(f.buf[n:])
	case err != nil:
		return nil, err
	}
	frame := make([]int16, f.samples)
	for i := range frame {
		frame[i] = int16(binary.LittleEndian.Uint16(f.buf[i*2:]))
	}
	return frame, nil
}
