package generation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewGenerator selects a generator by provider name. A missing OpenAI key
// yields Unavailable rather than an error so replies degrade to a placeholder.
func NewGenerator(provider string, cfg OpenAIConfig, logger *zap.Logger) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		g, err := NewOpenAIGenerator(cfg, logger)
		if errors.Is(err, ErrUnavailable) {
			return Unavailable{}, nil
		}
		if err != nil {
			return nil, err
		}
		return g, nil
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", provider)
	}
}
