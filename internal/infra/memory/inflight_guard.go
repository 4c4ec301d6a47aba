package memory

import (
	"context"
	"sync"

	"coding-relay-console/internal/domain"
)

// InFlightGuard is an in-process implementation of app.InFlightGuard.
type InFlightGuard struct {
	mu      sync.Mutex
	holders map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{holders: make(map[string]struct{})}
}

func (g *InFlightGuard) Acquire(_ context.Context, teamID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.holders[teamID]; held {
		return nil, domain.ErrOperationInProgress
	}
	g.holders[teamID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.holders, teamID)
			g.mu.Unlock()
		})
	}, nil
}

// Held reports whether teamID currently has an outstanding operation.
func (g *InFlightGuard) Held(teamID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.holders[teamID]
	return held
}
