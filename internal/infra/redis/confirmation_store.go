package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coding-relay-console/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ConfirmationStore parks pending overwrites in Redis until confirmed.
// Peek uses GET; Take uses GETDEL so a token is consumed exactly once.
type ConfirmationStore struct {
	client *redis.Client
}

func NewConfirmationStore(client *redis.Client) *ConfirmationStore {
	return &ConfirmationStore{client: client}
}

type storedConfirmation struct {
	Token         string    `json:"token"`
	Warning       string    `json:"warning"`
	ExpiresAt     time.Time `json:"expiresAt"`
	TeamID        string    `json:"teamId"`
	TotalPoints   int       `json:"totalPoints"`
	TimeRemaining *int      `json:"timeRemaining,omitempty"`
}

func (s *ConfirmationStore) Save(ctx context.Context, c domain.Confirmation, ttl time.Duration) error {
	raw, err := json.Marshal(storedConfirmation{
		Token:         c.Token,
		Warning:       c.Warning,
		ExpiresAt:     c.ExpiresAt,
		TeamID:        c.Overwrite.TeamID,
		TotalPoints:   c.Overwrite.TotalPoints,
		TimeRemaining: c.Overwrite.TimeRemaining,
	})
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}
	return s.client.Set(ctx, s.key(c.Token), raw, ttl).Err()
}

func (s *ConfirmationStore) Peek(ctx context.Context, token string) (domain.Confirmation, error) {
	return s.read(s.client.Get(ctx, s.key(token)))
}

func (s *ConfirmationStore) Take(ctx context.Context, token string) (domain.Confirmation, error) {
	return s.read(s.client.GetDel(ctx, s.key(token)))
}

func (s *ConfirmationStore) read(cmd *redis.StringCmd) (domain.Confirmation, error) {
	raw, err := cmd.Bytes()
	if isMiss(err) {
		return domain.Confirmation{}, domain.ErrConfirmationNotFound
	}
	if err != nil {
		return domain.Confirmation{}, err
	}
	var stored storedConfirmation
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Confirmation{}, fmt.Errorf("unmarshal confirmation: %w", err)
	}
	return domain.Confirmation{
		Token:     stored.Token,
		Warning:   stored.Warning,
		ExpiresAt: stored.ExpiresAt,
		Overwrite: domain.ScoreOverwrite{
			TeamID:        stored.TeamID,
			TotalPoints:   stored.TotalPoints,
			TimeRemaining: stored.TimeRemaining,
		},
	}, nil
}

func (s *ConfirmationStore) key(token string) string {
	return keyPrefix + "confirm:" + token
}
