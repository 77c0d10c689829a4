package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCredential marks configuration that cannot start without a secret.
var ErrMissingCredential = errors.New("missing required credential")

// Config contains all runtime settings for the bot.
type Config struct {
	BindAddr         string
	OpsAPIToken      string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogLevel         string
	LogFormat        string

	DiscordToken      string
	PrivilegedUserIDs []string

	GenerationProvider string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	ChatModel          string

	VoiceProvider       string
	TTSModel            string
	TTSVoice            string
	ElevenLabsAPIKey    string
	ElevenLabsWSBaseURL string
	ElevenLabsTTSVoice  string
	ElevenLabsTTSModel  string
	ElevenLabsOutput    string
	FFmpegPath          string
	VoiceIdleTimeout    time.Duration
	VoicePauseMin       time.Duration
	VoicePauseMax       time.Duration
	TypingDelayMin      time.Duration
	TypingDelayMax      time.Duration

	MemoryBackend       string
	MemoryFile          string
	DatabaseURL         string
	SQLitePath          string
	MemoryContextWindow int
	MemoryRedactPII     bool
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("APP_BIND_ADDR", "127.0.0.1:8080"),
		OpsAPIToken:         strings.TrimSpace(os.Getenv("OPS_API_TOKEN")),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "babybot"),
		LogLevel:            strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		DiscordToken:        strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
		PrivilegedUserIDs:   listFromEnv("PRIVILEGED_USER_IDS"),
		GenerationProvider:  strings.ToLower(envOrDefault("GENERATION_PROVIDER", "openai")),
		OpenAIAPIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:       strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		ChatModel:           envOrDefault("CHAT_MODEL", "gpt-4o-mini"),
		VoiceProvider:       strings.ToLower(envOrDefault("VOICE_PROVIDER", "auto")),
		TTSModel:            envOrDefault("TTS_MODEL", "gpt-4o-mini-tts"),
		TTSVoice:            envOrDefault("TTS_VOICE", "aria"),
		ElevenLabsAPIKey:    strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
		ElevenLabsWSBaseURL: envOrDefault("ELEVENLABS_WS_BASE_URL", "wss://api.elevenlabs.io"),
		// Warm female premade voice.
		ElevenLabsTTSVoice: envOrDefault("ELEVENLABS_TTS_VOICE_ID", "cgSgspJ2msm6clMCkdW9"),
		ElevenLabsTTSModel: envOrDefault("ELEVENLABS_TTS_MODEL_ID", "eleven_multilingual_v2"),
		ElevenLabsOutput:   envOrDefault("ELEVENLABS_TTS_OUTPUT_FORMAT", "pcm_24000"),
		FFmpegPath:         envOrDefault("FFMPEG_PATH", "ffmpeg"),
		MemoryBackend:      strings.ToLower(envOrDefault("MEMORY_BACKEND", "file")),
		MemoryFile:         envOrDefault("MEMORY_FILE", "baby_memory.json"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:         envOrDefault("SQLITE_PATH", "baby_memory.db"),

		ShutdownTimeout:     15 * time.Second,
		VoiceIdleTimeout:    0,
		VoicePauseMin:       500 * time.Millisecond,
		VoicePauseMax:       1600 * time.Millisecond,
		TypingDelayMin:      1400 * time.Millisecond,
		TypingDelayMax:      3200 * time.Millisecond,
		MemoryContextWindow: 6,
	}
	if strings.EqualFold(cfg.BindAddr, "off") {
		cfg.BindAddr = ""
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"APP_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"VOICE_IDLE_TIMEOUT", &cfg.VoiceIdleTimeout},
		{"VOICE_PAUSE_MIN", &cfg.VoicePauseMin},
		{"VOICE_PAUSE_MAX", &cfg.VoicePauseMax},
		{"TYPING_DELAY_MIN", &cfg.TypingDelayMin},
		{"TYPING_DELAY_MAX", &cfg.TypingDelayMax},
	}
	for _, d := range durations {
		*d.dst, err = durationFromEnv(d.key, *d.dst)
		if err != nil {
			return Config{}, err
		}
	}
	cfg.MemoryContextWindow, err = intFromEnv("MEMORY_CONTEXT_WINDOW", cfg.MemoryContextWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryRedactPII, err = boolFromEnv("MEMORY_REDACT_PII", cfg.MemoryRedactPII)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("%w: DISCORD_TOKEN", ErrMissingCredential)
	}
	switch c.GenerationProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredential)
		}
	case "mock":
	default:
		return fmt.Errorf("invalid GENERATION_PROVIDER: %q (expected openai|mock)", c.GenerationProvider)
	}
	switch c.VoiceProvider {
	case "auto", "openai", "mock", "none":
	case "elevenlabs":
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("%w: ELEVENLABS_API_KEY (VOICE_PROVIDER=elevenlabs)", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("invalid VOICE_PROVIDER: %q (expected auto|openai|elevenlabs|mock|none)", c.VoiceProvider)
	}
	switch c.MemoryBackend {
	case "file":
		if strings.TrimSpace(c.MemoryFile) == "" {
			return fmt.Errorf("MEMORY_FILE must not be empty for the file backend")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for MEMORY_BACKEND=postgres")
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty for the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid MEMORY_BACKEND: %q (expected file|postgres|sqlite|memory)", c.MemoryBackend)
	}
	if c.MemoryContextWindow <= 0 {
		return fmt.Errorf("MEMORY_CONTEXT_WINDOW must be positive")
	}
	if c.VoicePauseMin < 0 || c.VoicePauseMax < c.VoicePauseMin {
		return fmt.Errorf("VOICE_PAUSE_MIN/MAX must satisfy 0 <= min <= max")
	}
	if c.TypingDelayMin < 0 || c.TypingDelayMax < c.TypingDelayMin {
		return fmt.Errorf("TYPING_DELAY_MIN/MAX must satisfy 0 <= min <= max")
	}
	if c.VoiceIdleTimeout < 0 {
		return fmt.Errorf("VOICE_IDLE_TIMEOUT must be >= 0")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q (expected json|console)", c.LogFormat)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func listFromEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
