package voice

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/antoniostano/babybot/internal/audio"
)

// NewFailoverSynthesizer prefers primary and switches to fallback when primary
// fails. Once fallback succeeds it stays active until it fails; then primary
// is retried.
func NewFailoverSynthesizer(primary, fallback Synthesizer) Synthesizer {
	return &failoverSynthesizer{primary: primary, fallback: fallback}
}

type failoverSynthesizer struct {
	primary        Synthesizer
	fallback       Synthesizer
	fallbackActive atomic.Bool
}

func (f *failoverSynthesizer) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	if f.fallbackActive.Load() {
		clip, fbErr := f.fallback.Synthesize(ctx, text)
		if fbErr == nil {
			return clip, nil
		}
		// Fallback failed after being active; try primary again.
		clip, prErr := f.primary.Synthesize(ctx, text)
		if prErr == nil {
			f.fallbackActive.Store(false)
			return clip, nil
		}
		return audio.Clip{}, fmt.Errorf("tts fallback failed: %v; tts primary failed: %w", fbErr, prErr)
	}

	clip, prErr := f.primary.Synthesize(ctx, text)
	if prErr == nil {
		return clip, nil
	}
	if ctx.Err() != nil {
		return audio.Clip{}, prErr
	}
	clip, fbErr := f.fallback.Synthesize(ctx, text)
	if fbErr != nil {
		return audio.Clip{}, fmt.Errorf("tts primary failed: %v; tts fallback failed: %w", prErr, fbErr)
	}
	f.fallbackActive.Store(true)
	return clip, nil
}
