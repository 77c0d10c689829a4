package voice

import (
	"context"
	"errors"

	"github.com/antoniostano/babybot/internal/audio"
)

// ErrUnavailable is returned when no speech synthesizer is configured.
var ErrUnavailable = errors.New("speech synthesis unavailable")

// Synthesizer turns text into a playable clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio.Clip, error)
}

// Connection is the bot's live voice link in one guild.
type Connection interface {
	Connected() bool
	// Play starts playback and returns a channel that receives exactly one
	// value (nil on success) when playback ends.
	Play(ctx context.Context, clip audio.Clip) (<-chan error, error)
}

// Connections resolves the active voice connection for a guild.
type Connections interface {
	Voice(guildID string) (Connection, bool)
}

// SynthesisError is a provider failure. Retryable marks throttling and
// transient upstream conditions.
type SynthesisError struct {
	Provider  string
	Code      string
	Detail    string
	Retryable bool
}

func (e *SynthesisError) Error() string {
	if e.Code != "" {
		return e.Provider + " synthesis failed: " + e.Code + ": " + e.Detail
	}
	return e.Provider + " synthesis failed: " + e.Detail
}

// Unavailable is the Synthesizer used when no provider is configured.
type Unavailable struct{}

func (Unavailable) Synthesize(context.Context, string) (audio.Clip, error) {
	return audio.Clip{}, ErrUnavailable
}
