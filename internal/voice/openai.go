package voice

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/antoniostano/babybot/internal/audio"
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// OpenAISynthesizer uses the audio speech endpoint and returns mp3 clips.
type OpenAISynthesizer struct {
	client *openai.Client
	cfg    OpenAIConfig
}

func NewOpenAISynthesizer(cfg OpenAIConfig) *OpenAISynthesizer {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini-tts"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "aria"
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &OpenAISynthesizer{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.cfg.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.cfg.Voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return audio.Clip{}, &SynthesisError{Provider: "openai", Detail: err.Error()}
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("read speech body: %w", err)
	}
	if len(data) == 0 {
		return audio.Clip{}, &SynthesisError{Provider: "openai", Detail: "empty speech body"}
	}
	return audio.Clip{Data: data, Format: "mp3"}, nil
}
