package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"coding-relay-console/internal/domain"
)

func TestConfirmationStoreIsSingleUse(t *testing.T) {
	store := NewConfirmationStore()
	ctx := context.Background()
	c := domain.Confirmation{Token: "tok-1", Overwrite: domain.ScoreOverwrite{TeamID: "team-1", TotalPoints: 500}}

	if err := store.Save(ctx, c, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 2; i++ {
		if peeked, err := store.Peek(ctx, "tok-1"); err != nil || peeked.Overwrite.TeamID != "team-1" {
			t.Fatalf("peek %d: got %+v, %v", i, peeked, err)
		}
	}
	got, err := store.Take(ctx, "tok-1")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got.Overwrite.TotalPoints != 500 {
		t.Fatalf("unexpected overwrite %+v", got.Overwrite)
	}
	if _, err := store.Take(ctx, "tok-1"); !errors.Is(err, domain.ErrConfirmationNotFound) {
		t.Fatalf("expected token consumed, got %v", err)
	}
}

func TestConfirmationStoreExpires(t *testing.T) {
	store := NewConfirmationStore()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	_ = store.Save(context.Background(), domain.Confirmation{Token: "tok-1"}, time.Minute)
	now = now.Add(61 * time.Second)

	if _, err := store.Peek(context.Background(), "tok-1"); !errors.Is(err, domain.ErrConfirmationNotFound) {
		t.Fatalf("expected expired token on peek, got %v", err)
	}
	if _, err := store.Take(context.Background(), "tok-1"); !errors.Is(err, domain.ErrConfirmationNotFound) {
		t.Fatalf("expected expired token, got %v", err)
	}
}
