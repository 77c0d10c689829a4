package voice

import (
	"context"
	"strings"
	"sync"

	"github.com/antoniostano/babybot/internal/audio"
)

// MockSynthesizer is a local stand-in used when no TTS provider is configured
// for development. The clip payload is the text itself.
type MockSynthesizer struct {
	mu    sync.Mutex
	Err   error
	texts []string
}

func NewMockSynthesizer() *MockSynthesizer { return &MockSynthesizer{} }

func (s *MockSynthesizer) Synthesize(_ context.Context, text string) (audio.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.Err != nil {
		return audio.Clip{}, s.Err
	}
	if strings.TrimSpace(text) == "" {
		return audio.Clip{}, nil
	}
	return audio.Clip{Data: []byte(text), Format: "mock_text_bytes"}, nil
}

// Texts returns everything synthesized so far.
func (s *MockSynthesizer) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.texts))
	copy(out, s.texts)
	return out
}
