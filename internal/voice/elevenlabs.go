package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/antoniostano/babybot/internal/audio"
	"github.com/antoniostano/babybot/internal/reliability"
)

type ElevenLabsConfig struct {
	APIKey       string
	WSBaseURL    string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Settings     TTSSettings
}

type TTSSettings struct {
	Stability       float64
	SimilarityBoost float64
	Speed           float64
}

// ElevenLabsSynthesizer renders a full utterance over the stream-input
// websocket and collects the audio until the final frame.
type ElevenLabsSynthesizer struct {
	cfg    ElevenLabsConfig
	dialer *websocket.Dialer
}

func NewElevenLabsSynthesizer(cfg ElevenLabsConfig) *ElevenLabsSynthesizer {
	if strings.TrimSpace(cfg.WSBaseURL) == "" {
		cfg.WSBaseURL = "wss://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if strings.TrimSpace(cfg.OutputFormat) == "" {
		cfg.OutputFormat = "pcm_24000"
	}
	return &ElevenLabsSynthesizer{cfg: cfg, dialer: websocket.DefaultDialer}
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	if strings.TrimSpace(s.cfg.VoiceID) == "" {
		return audio.Clip{}, fmt.Errorf("voice_id is required")
	}

	u, err := url.Parse(strings.TrimRight(s.cfg.WSBaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(s.cfg.VoiceID) + "/stream-input")
	if err != nil {
		return audio.Clip{}, err
	}
	q := u.Query()
	q.Set("model_id", s.cfg.ModelID)
	q.Set("output_format", s.cfg.OutputFormat)
	q.Set("auto_mode", "true")
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("xi-api-key", s.cfg.APIKey)

	conn, _, err := s.dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("dial tts websocket: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// The first message primes the stream and carries voice settings.
	for _, payload := range []map[string]any{
		{"text": " ", "voice_settings": s.voiceSettings()},
		{"text": text + " ", "try_trigger_generation": true},
		{"text": ""},
	} {
		if err := conn.WriteJSON(payload); err != nil {
			return audio.Clip{}, fmt.Errorf("write tts websocket: %w", err)
		}
	}

	var pcm []byte
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return audio.Clip{}, ctx.Err()
			}
			if len(pcm) > 0 && websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return audio.Clip{}, fmt.Errorf("read tts websocket: %w", err)
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			continue
		}
		if errMsg := asString(raw["error"]); errMsg != "" {
			code := asString(raw["message_type"])
			return audio.Clip{}, &SynthesisError{
				Provider:  "elevenlabs",
				Code:      code,
				Detail:    errMsg,
				Retryable: reliability.IsRetryableSynthesisCode(code),
			}
		}
		if chunk := asString(raw["audio"]); chunk != "" {
			decoded, err := base64.StdEncoding.DecodeString(chunk)
			if err != nil {
				return audio.Clip{}, fmt.Errorf("decode tts audio: %w", err)
			}
			pcm = append(pcm, decoded...)
		}
		if asBool(raw["isFinal"]) || asBool(raw["is_final"]) {
			break
		}
	}
	if len(pcm) == 0 {
		return audio.Clip{}, &SynthesisError{Provider: "elevenlabs", Detail: "no audio received"}
	}
	return audio.Containerize(audio.Clip{Data: pcm, Format: s.cfg.OutputFormat})
}

func (s *ElevenLabsSynthesizer) voiceSettings() map[string]any {
	return map[string]any{
		"stability":        clamp(s.cfg.Settings.Stability, 0.42, 0, 1),
		"similarity_boost": clamp(s.cfg.Settings.SimilarityBoost, 0.85, 0, 1),
		"speed":            clamp(s.cfg.Settings.Speed, 1.0, 0.7, 1.2),
	}
}

func clamp(v, fallback, lo, hi float64) float64 {
	if v <= 0 {
		v = fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
