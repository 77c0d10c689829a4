package generation

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator answers without a network call. Reply, when set, is returned
// verbatim; otherwise the last user message is echoed back.
type MockGenerator struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	requests []Request
}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Generate(_ context.Context, req Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.Err != nil {
		return "", g.Err
	}
	if g.Reply != "" {
		return g.Reply, nil
	}
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			last = req.Messages[i].Content
			break
		}
	}
	return "umm... " + strings.TrimSpace(last), nil
}

// Requests returns the requests seen so far.
func (g *MockGenerator) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Request, len(g.requests))
	copy(out, g.requests)
	return out
}
