package postgres

import (
	"context"
	"fmt"

	"coding-relay-console/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreLedger stores applied score changes in the score_changes table.
type ScoreLedger struct {
	pool *pgxpool.Pool
}

func NewScoreLedger(pool *pgxpool.Pool) *ScoreLedger {
	return &ScoreLedger{pool: pool}
}

func (l *ScoreLedger) Record(ctx context.Context, change domain.ScoreChange) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO score_changes (team_id, kind, delta, previous_score, new_score, time_remaining, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		change.TeamID, string(change.Kind), change.Delta, change.PreviousScore, change.NewScore,
		change.TimeRemaining, change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record score change: %w", err)
	}
	return nil
}

func (l *ScoreLedger) History(ctx context.Context, teamID string, limit int) ([]domain.ScoreChange, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT team_id, kind, delta, previous_score, new_score, time_remaining, created_at
		 FROM score_changes WHERE team_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`,
		teamID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var changes []domain.ScoreChange
	for rows.Next() {
		var (
			c    domain.ScoreChange
			kind string
		)
		if err := rows.Scan(&c.TeamID, &kind, &c.Delta, &c.PreviousScore, &c.NewScore, &c.TimeRemaining, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score change: %w", err)
		}
		c.Kind = domain.ScoreChangeKind(kind)
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history: %w", err)
	}
	return changes, nil
}
