package httpapi

import (
	"net/http"
	"os/exec"
	"strings"
)

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	GenerationProvider string        `json:"generation_provider"`
	VoiceProvider      string        `json:"voice_provider"`
	MemoryBackend      string        `json:"memory_backend"`
	MemoryUsers        int           `json:"memory_users"`
	PrivilegedUsers    int           `json:"privileged_users"`
	Checks             []statusCheck `json:"checks"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	users := 0
	if s.memory != nil {
		users = s.memory.Users()
	}
	respondJSON(w, http.StatusOK, statusResponse{
		GenerationProvider: s.cfg.GenerationProvider,
		VoiceProvider:      s.cfg.VoiceProvider,
		MemoryBackend:      s.cfg.MemoryBackend,
		MemoryUsers:        users,
		PrivilegedUsers:    len(s.cfg.PrivilegedUserIDs),
		Checks:             s.checks(),
	})
}

func (s *Server) checks() []statusCheck {
	checks := make([]statusCheck, 0, 6)

	switch s.cfg.GenerationProvider {
	case "mock":
		checks = append(checks, statusCheck{
			ID:     "generation",
			Status: "warn",
			Label:  "Text generation",
			Detail: "mock replies",
			Fix:    "Set GENERATION_PROVIDER=openai and OPENAI_API_KEY.",
		})
	default:
		checks = append(checks, keyCheck("openai_key", "OpenAI API key", s.cfg.OpenAIAPIKey, "OPENAI_API_KEY", "error"))
	}

	voiceProvider := strings.ToLower(strings.TrimSpace(s.cfg.VoiceProvider))
	switch voiceProvider {
	case "none":
		checks = append(checks, statusCheck{
			ID:     "voice",
			Status: "warn",
			Label:  "Speech",
			Detail: "disabled",
			Fix:    "Set VOICE_PROVIDER=auto to speak replies in voice channels.",
		})
	case "mock":
		checks = append(checks, statusCheck{
			ID:     "voice",
			Status: "warn",
			Label:  "Speech",
			Detail: "mock synthesizer, playback will be noise",
		})
	case "elevenlabs":
		checks = append(checks, keyCheck("elevenlabs_key", "ElevenLabs API key", s.cfg.ElevenLabsAPIKey, "ELEVENLABS_API_KEY", "error"))
	default:
		if strings.TrimSpace(s.cfg.ElevenLabsAPIKey) == "" && strings.TrimSpace(s.cfg.OpenAIAPIKey) == "" {
			checks = append(checks, statusCheck{
				ID:     "voice",
				Status: "warn",
				Label:  "Speech",
				Detail: "no TTS credentials, replies will be text only",
				Fix:    "Set OPENAI_API_KEY or ELEVENLABS_API_KEY.",
			})
		} else {
			checks = append(checks, statusCheck{ID: "voice", Status: "ok", Label: "Speech", Detail: voiceProvider})
		}
	}

	if voiceProvider != "none" {
		checks = append(checks, ffmpegCheck(s.cfg.FFmpegPath))
	}

	switch s.cfg.MemoryBackend {
	case "file":
		checks = append(checks, statusCheck{ID: "memory", Status: "ok", Label: "Memory", Detail: "file " + s.cfg.MemoryFile})
	case "":
		checks = append(checks, statusCheck{ID: "memory", Status: "warn", Label: "Memory", Detail: "not configured"})
	default:
		checks = append(checks, statusCheck{ID: "memory", Status: "ok", Label: "Memory", Detail: s.cfg.MemoryBackend})
	}

	if s.cfg.OpsAPIToken == "" {
		checks = append(checks, statusCheck{
			ID:     "memory_api",
			Status: "warn",
			Label:  "Memory inspection",
			Detail: "disabled, no OPS_API_TOKEN",
			Fix:    "Set OPS_API_TOKEN and send it as a bearer token.",
		})
	}

	if len(s.cfg.PrivilegedUserIDs) == 0 {
		checks = append(checks, statusCheck{
			ID:     "privileged_users",
			Status: "warn",
			Label:  "Privileged users",
			Detail: "only guild administrators can use roasts",
			Fix:    "Set PRIVILEGED_USER_IDS to a comma separated list of user ids.",
		})
	}
	return checks
}

func keyCheck(id, label, value, envName, missingStatus string) statusCheck {
	if strings.TrimSpace(value) == "" {
		return statusCheck{
			ID:     id,
			Status: missingStatus,
			Label:  label,
			Detail: envName + " is not set",
			Fix:    "Set " + envName + ".",
		}
	}
	return statusCheck{ID: id, Status: "ok", Label: label, Detail: "present"}
}

func ffmpegCheck(path string) statusCheck {
	if strings.TrimSpace(path) == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return statusCheck{
			ID:     "ffmpeg",
			Status: "error",
			Label:  "ffmpeg",
			Detail: "not found: " + path,
			Fix:    "Install ffmpeg or set FFMPEG_PATH.",
		}
	}
	return statusCheck{ID: "ffmpeg", Status: "ok", Label: "ffmpeg", Detail: resolved}
}
