package voice

import (
	"fmt"
	"strings"
)

type FactoryConfig struct {
	Provider   string
	OpenAI     OpenAIConfig
	ElevenLabs ElevenLabsConfig
}

// NewSynthesizer selects the speech backend. "auto" prefers ElevenLabs with
// OpenAI as failover, then OpenAI alone; without credentials it returns
// Unavailable.
func NewSynthesizer(cfg FactoryConfig) (Synthesizer, error) {
	hasOpenAI := strings.TrimSpace(cfg.OpenAI.APIKey) != ""
	hasEleven := strings.TrimSpace(cfg.ElevenLabs.APIKey) != ""

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "auto":
		switch {
		case hasEleven && hasOpenAI:
			return NewFailoverSynthesizer(NewElevenLabsSynthesizer(cfg.ElevenLabs), NewOpenAISynthesizer(cfg.OpenAI)), nil
		case hasEleven:
			return NewElevenLabsSynthesizer(cfg.ElevenLabs), nil
		case hasOpenAI:
			return NewOpenAISynthesizer(cfg.OpenAI), nil
		default:
			return Unavailable{}, nil
		}
	case "openai":
		if !hasOpenAI {
			return Unavailable{}, nil
		}
		return NewOpenAISynthesizer(cfg.OpenAI), nil
	case "elevenlabs":
		if !hasEleven {
			return nil, fmt.Errorf("elevenlabs synthesizer requires an api key")
		}
		return NewElevenLabsSynthesizer(cfg.ElevenLabs), nil
	case "mock":
		return NewMockSynthesizer(), nil
	case "none":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unsupported voice provider %q", cfg.Provider)
	}
}
