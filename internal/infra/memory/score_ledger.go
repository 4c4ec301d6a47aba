package memory

import (
	"context"
	"sync"

	"coding-relay-console/internal/domain"
)

// ScoreLedger keeps score changes in memory when no database is configured.
type ScoreLedger struct {
	mu      sync.RWMutex
	changes []domain.ScoreChange
}

func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{}
}

func (l *ScoreLedger) Record(_ context.Context, change domain.ScoreChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, change)
	return nil
}

// History returns the newest changes for teamID first.
func (l *ScoreLedger) History(_ context.Context, teamID string, limit int) ([]domain.ScoreChange, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.ScoreChange
	for i := len(l.changes) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if l.changes[i].TeamID == teamID {
			out = append(out, l.changes[i])
		}
	}
	return out, nil
}
