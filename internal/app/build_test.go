package app

import (
	"context"
	"testing"
	"time"

	"github.com/antoniostano/babybot/internal/config"
)

func TestBuildWiresOfflineStack(t *testing.T) {
	cfg := config.Config{
		MetricsNamespace:    "test_app_build",
		DiscordToken:        "test-token",
		GenerationProvider:  "mock",
		VoiceProvider:       "none",
		MemoryBackend:       "memory",
		MemoryContextWindow: 4,
		ShutdownTimeout:     time.Second,
	}

	a, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if a.Voice.Provider != "none" {
		t.Fatalf("Voice.Provider = %q, want none", a.Voice.Provider)
	}
	if a.Memory.Window() != 4 {
		t.Fatalf("Memory.Window() = %d, want 4", a.Memory.Window())
	}
	if a.API == nil || a.Dispatcher == nil || a.Discord == nil {
		t.Fatalf("Build() left components nil: %+v", a)
	}
	if err := a.Memory.Close(context.Background()); err != nil {
		t.Fatalf("Memory.Close() error = %v", err)
	}
}

func TestBuildRejectsUnknownMemoryBackend(t *testing.T) {
	cfg := config.Config{
		DiscordToken:       "test-token",
		GenerationProvider: "mock",
		MemoryBackend:      "redis",
	}
	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatalf("Build() expected error for unknown memory backend")
	}
}

func TestDescribeVoice(t *testing.T) {
	cases := []struct {
		name   string
		mode   string
		cfg    config.Config
		want   string
		detail string
	}{
		{name: "auto both keys", mode: "auto", cfg: config.Config{OpenAIAPIKey: "sk", ElevenLabsAPIKey: "el"}, want: "elevenlabs", detail: "elevenlabs realtime with openai failover"},
		{name: "auto openai only", mode: "auto", cfg: config.Config{OpenAIAPIKey: "sk"}, want: "openai", detail: "openai speech"},
		{name: "auto no keys", mode: "auto", want: "none", detail: "no tts credentials, text only"},
		{name: "openai without key", mode: "openai", want: "none", detail: "no tts credentials, text only"},
		{name: "disabled", mode: "none", cfg: config.Config{OpenAIAPIKey: "sk"}, want: "none", detail: "speech disabled"},
		{name: "mock", mode: "mock", want: "mock", detail: "mock synthesizer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := describeVoice(tc.mode, tc.cfg)
			if got.Provider != tc.want || got.Detail != tc.detail {
				t.Fatalf("describeVoice() = %+v, want %s/%s", got, tc.want, tc.detail)
			}
		})
	}
}

func TestResolveVoiceRejectsUnknownProvider(t *testing.T) {
	if _, err := resolveVoice(config.Config{VoiceProvider: "espeak"}); err == nil {
		t.Fatalf("resolveVoice() expected error")
	}
}
