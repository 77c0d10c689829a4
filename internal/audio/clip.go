package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// Clip is a synthesized utterance ready for playback. Format names the
// container or encoding of Data ("mp3", "wav", "pcm_24000", ...).
type Clip struct {
	Data   []byte
	Format string
}

// Empty reports whether the clip carries no audio.
func (c Clip) Empty() bool { return len(c.Data) == 0 }

// ParsePCMFormat extracts the sample rate from raw PCM format names such as
// "pcm_24000". ok is false for anything that is not raw PCM.
func ParsePCMFormat(format string) (sampleRate int, ok bool) {
	f := strings.ToLower(strings.TrimSpace(format))
	if !strings.HasPrefix(f, "pcm_") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(f, "pcm_"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Containerize wraps raw PCM clips in a WAV header so downstream decoders can
// detect the sample rate on their own. Other formats pass through unchanged.
func Containerize(c Clip) (Clip, error) {
	rate, ok := ParsePCMFormat(c.Format)
	if !ok {
		return c, nil
	}
	wav, err := EncodeWAVPCM16LE(c.Data, rate)
	if err != nil {
		return Clip{}, fmt.Errorf("wrap pcm as wav: %w", err)
	}
	return Clip{Data: wav, Format: "wav"}, nil
}
