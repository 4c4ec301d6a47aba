package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"coding-relay-console/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestInFlightGuardSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	guard := NewInFlightGuard(newClient(mr), time.Minute)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "team-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !mr.Exists("relay:inflight:team-1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, err := guard.Acquire(ctx, "team-1"); !errors.Is(err, domain.ErrOperationInProgress) {
		t.Fatalf("expected in-progress error, got %v", err)
	}

	release()
	if mr.Exists("relay:inflight:team-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestInFlightGuardMarkerExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	guard := NewInFlightGuard(newClient(mr), 30*time.Second)
	if _, err := guard.Acquire(context.Background(), "team-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(31 * time.Second)

	if _, err := guard.Acquire(context.Background(), "team-1"); err != nil {
		t.Fatalf("expected stale marker to expire, got %v", err)
	}
}

func TestInFlightGuardReleaseKeepsNewOwner(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	guard := NewInFlightGuard(newClient(mr), 30*time.Second)
	staleRelease, _ := guard.Acquire(context.Background(), "team-1")
	mr.FastForward(31 * time.Second)
	if _, err := guard.Acquire(context.Background(), "team-1"); err != nil {
		t.Fatalf("second acquire: %v", err)
	}

	staleRelease()
	if !mr.Exists("relay:inflight:team-1") {
		t.Fatalf("a stale release must not clear the new holder's marker")
	}
}
