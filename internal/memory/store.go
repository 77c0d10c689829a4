package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/observability"
	"github.com/antoniostano/babybot/internal/policy"
)

// DefaultWindow is the number of exchanges returned when no window is configured.
const DefaultWindow = 6

type Options struct {
	Window    int
	RedactPII bool
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// Store is the process-wide conversation memory. Every mutation is flushed to
// the backing storage before Append returns.
type Store struct {
	mu      sync.Mutex
	table   Table
	storage Storage
	window  int
	redact  bool
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Load reads the persisted table once. Missing or unreadable data starts an
// empty table; the failure is logged and never returned.
func Load(ctx context.Context, storage Storage, opts Options) *Store {
	if storage == nil {
		storage = NewInMemoryStorage()
	}
	s := &Store{
		table:   Table{},
		storage: storage,
		window:  opts.Window,
		redact:  opts.RedactPII,
		logger:  observability.OrNop(opts.Logger),
		metrics: opts.Metrics,
	}
	if s.window <= 0 {
		s.window = DefaultWindow
	}

	data, err := storage.Read(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Info("memory storage empty, starting fresh")
	case err != nil:
		s.logger.Warn("memory read failed, starting empty", zap.Error(err))
		s.metrics.IncStorageError("read")
	default:
		table, decodeErr := Decode(data)
		if decodeErr != nil {
			s.logger.Warn("memory decode failed, starting empty", zap.Error(decodeErr))
			s.metrics.IncStorageError("decode")
		} else {
			s.table = table
		}
	}
	s.metrics.SetMemoryUsers(len(s.table))
	return s
}

// Append records one exchange for userID and rewrites the table to storage.
// Storage failures leave the in-memory table updated.
func (s *Store) Append(ctx context.Context, userID, userText, botText string) {
	if s.redact {
		userText, _ = policy.RedactPII(userText)
		botText, _ = policy.RedactPII(botText)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table[userID] = append(s.table[userID], Exchange{User: userText, Bot: botText})
	s.metrics.SetMemoryUsers(len(s.table))
	s.flushLocked(ctx)
}

// ContextWindow returns the most recent size exchanges for userID, oldest
// first. size <= 0 uses the configured window.
func (s *Store) ContextWindow(userID string, size int) []Exchange {
	if size <= 0 {
		size = s.window
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.table[userID]
	if len(history) > size {
		history = history[len(history)-size:]
	}
	out := make([]Exchange, len(history))
	copy(out, history)
	return out
}

func (s *Store) Snapshot() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}

func (s *Store) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table)
}

func (s *Store) Window() int { return s.window }

// Close flushes the table one last time and releases the storage backend.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked(ctx)
	return s.storage.Close()
}

func (s *Store) flushLocked(ctx context.Context) {
	data, err := Encode(s.table)
	if err != nil {
		s.logger.Error("memory encode failed", zap.Error(err))
		s.metrics.IncStorageError("encode")
		return
	}
	if err := s.storage.Write(ctx, data); err != nil {
		s.logger.Warn("memory write failed, keeping in-memory copy", zap.Error(err))
		s.metrics.IncStorageError("write")
	}
}
