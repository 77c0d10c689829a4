package app

import (
	"fmt"
	"strings"

	"github.com/antoniostano/babybot/internal/config"
	"github.com/antoniostano/babybot/internal/voice"
)

type VoiceInfo struct {
	Provider string
	Detail   string
}

type voiceSetup struct {
	synth voice.Synthesizer
	info  VoiceInfo
}

func resolveVoice(cfg config.Config) (voiceSetup, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.VoiceProvider))
	if mode == "" {
		mode = "auto"
	}

	synth, err := voice.NewSynthesizer(voice.FactoryConfig{
		Provider: mode,
		OpenAI: voice.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.TTSModel,
			Voice:   cfg.TTSVoice,
		},
		ElevenLabs: voice.ElevenLabsConfig{
			APIKey:       cfg.ElevenLabsAPIKey,
			WSBaseURL:    cfg.ElevenLabsWSBaseURL,
			VoiceID:      cfg.ElevenLabsTTSVoice,
			ModelID:      cfg.ElevenLabsTTSModel,
			OutputFormat: cfg.ElevenLabsOutput,
		},
	})
	if err != nil {
		return voiceSetup{}, fmt.Errorf("voice provider init failed: %w", err)
	}
	return voiceSetup{synth: synth, info: describeVoice(mode, cfg)}, nil
}

func describeVoice(mode string, cfg config.Config) VoiceInfo {
	hasOpenAI := strings.TrimSpace(cfg.OpenAIAPIKey) != ""
	hasEleven := strings.TrimSpace(cfg.ElevenLabsAPIKey) != ""

	switch mode {
	case "none":
		return VoiceInfo{Provider: "none", Detail: "speech disabled"}
	case "mock":
		return VoiceInfo{Provider: "mock", Detail: "mock synthesizer"}
	case "elevenlabs":
		return VoiceInfo{Provider: "elevenlabs", Detail: "elevenlabs realtime"}
	case "openai":
		if hasOpenAI {
			return VoiceInfo{Provider: "openai", Detail: "openai speech"}
		}
	default:
		switch {
		case hasEleven && hasOpenAI:
			return VoiceInfo{Provider: "elevenlabs", Detail: "elevenlabs realtime with openai failover"}
		case hasEleven:
			return VoiceInfo{Provider: "elevenlabs", Detail: "elevenlabs realtime"}
		case hasOpenAI:
			return VoiceInfo{Provider: "openai", Detail: "openai speech"}
		}
	}
	return VoiceInfo{Provider: "none", Detail: "no tts credentials, text only"}
}
