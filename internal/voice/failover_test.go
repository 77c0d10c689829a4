package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/antoniostano/babybot/internal/audio"
)

func TestFailoverSynthesizerSwitchesToFallbackAndSticks(t *testing.T) {
	ctx := context.Background()
	primary := &stubSynthesizer{err: errors.New("primary unavailable")}
	fallback := &stubSynthesizer{}

	synth := NewFailoverSynthesizer(primary, fallback)
	for i := 0; i < 2; i++ {
		if _, err := synth.Synthesize(ctx, "hi"); err != nil {
			t.Fatalf("Synthesize() unexpected error = %v", err)
		}
	}

	if primary.calls != 1 {
		t.Fatalf("primary calls = %d, want 1", primary.calls)
	}
	if fallback.calls != 2 {
		t.Fatalf("fallback calls = %d, want 2", fallback.calls)
	}
}

func TestFailoverSynthesizerRetriesPrimaryWhenFallbackFails(t *testing.T) {
	ctx := context.Background()
	primary := &stubSynthesizer{format: "primary", err: errors.New("quota exceeded")}
	fallback := &stubSynthesizer{format: "fallback"}
	synth := NewFailoverSynthesizer(primary, fallback)

	if _, err := synth.Synthesize(ctx, "hi"); err != nil {
		t.Fatalf("Synthesize() unexpected error = %v", err)
	}
	primary.err = nil
	fallback.err = errors.New("fallback down")
	clip, err := synth.Synthesize(ctx, "hi")
	if err != nil {
		t.Fatalf("Synthesize() unexpected error = %v", err)
	}
	if clip.Format != "primary" {
		t.Fatalf("clip format = %q, want primary", clip.Format)
	}

	fallback.err = nil
	if clip, _ := synth.Synthesize(ctx, "hi"); clip.Format != "primary" {
		t.Fatalf("clip format = %q, want primary after recovery", clip.Format)
	}
}

func TestFailoverSynthesizerReturnsCombinedErrorWhenBothFail(t *testing.T) {
	primaryErr := errors.New("primary down")
	synth := NewFailoverSynthesizer(
		&stubSynthesizer{err: primaryErr},
		&stubSynthesizer{err: errors.New("fallback down")},
	)
	if _, err := synth.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatalf("Synthesize() expected error when both providers fail")
	}
}

type stubSynthesizer struct {
	calls  int
	format string
	err    error
}

func (s *stubSynthesizer) Synthesize(context.Context, string) (audio.Clip, error) {
	s.calls++
	if s.err != nil {
		return audio.Clip{}, s.err
	}
	return audio.Clip{Data: []byte{1}, Format: s.format}, nil
}
