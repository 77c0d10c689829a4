package memory

import (
	"context"
	"sync"
)

// InMemoryStorage keeps the encoded table in process memory. Useful for local
// runs and tests; nothing survives a restart of the process that owns it.
type InMemoryStorage struct {
	mu     sync.RWMutex
	data   []byte
	writes int
	err    error
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

func (s *InMemoryStorage) Read(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *InMemoryStorage) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = append(s.data[:0:0], data...)
	s.writes++
	return nil
}

// FailWrites makes subsequent writes return err; nil restores normal writes.
func (s *InMemoryStorage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Writes returns the number of successful writes.
func (s *InMemoryStorage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *InMemoryStorage) Close() error { return nil }
