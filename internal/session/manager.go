package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("voice session not found")

// Session is the bot's presence in one guild's voice channel.
type Session struct {
	ID             string    `json:"session_id"`
	GuildID        string    `json:"guild_id"`
	ChannelID      string    `json:"channel_id"`
	Status         Status    `json:"status"`
	Playbacks      int       `json:"playbacks"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Manager tracks at most one voice session per guild.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	onExpire    func(*Session)
	now         func() time.Time
}

// NewManager creates a registry. idleTimeout <= 0 disables idle expiry.
func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Join records a connection to channelID. An active session in the same guild
// is moved to the new channel and keeps its id.
func (m *Manager) Join(guildID, channelID string) *Session {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[guildID]; ok && s.Status == StatusActive {
		s.ChannelID = channelID
		s.LastActivityAt = now
		return clone(s)
	}
	s := &Session{
		ID:             uuid.NewString(),
		GuildID:        guildID,
		ChannelID:      channelID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}
	m.sessions[guildID] = s
	return clone(s)
}

func (m *Manager) Get(guildID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// Active reports whether guildID has an active session.
func (m *Manager) Active(guildID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	return ok && s.Status == StatusActive
}

func (m *Manager) Touch(guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok || s.Status != StatusActive {
		return ErrNotFound
	}
	s.LastActivityAt = m.now()
	return nil
}

func (m *Manager) RecordPlayback(guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok || s.Status != StatusActive {
		return ErrNotFound
	}
	s.Playbacks++
	s.LastActivityAt = m.now()
	return nil
}

func (m *Manager) End(guildID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok || s.Status != StatusActive {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.LastActivityAt = m.now()
	return clone(s), nil
}

// List returns copies of all known sessions.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, clone(s))
	}
	return out
}

// StartJanitor expires idle sessions until ctx is done. It is a no-op when
// the idle timeout is disabled.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if m.idleTimeout <= 0 {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.sessions {
		if s.Status != StatusActive {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.idleTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		expired = append(expired, clone(s))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
