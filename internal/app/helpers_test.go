package app_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"coding-relay-console/internal/app"
	"coding-relay-console/internal/domain"
	"coding-relay-console/internal/infra/memory"
)

// recordingTeams counts every call that would reach the remote service.
type recordingTeams struct {
	app.TeamRepository

	mu         sync.Mutex
	calls      int
	updates    []domain.TeamUpdate
	failUpdate error
	failList   error
}

func (r *recordingTeams) ListTeams(ctx context.Context) ([]domain.Team, error) {
	r.mu.Lock()
	r.calls++
	err := r.failList
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.TeamRepository.ListTeams(ctx)
}

func (r *recordingTeams) CreateTeam(ctx context.Context, nt domain.NewTeam) (domain.Team, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.TeamRepository.CreateTeam(ctx, nt)
}

func (r *recordingTeams) UpdateTeam(ctx context.Context, teamID string, update domain.TeamUpdate) error {
	r.mu.Lock()
	r.calls++
	r.updates = append(r.updates, update)
	err := r.failUpdate
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.TeamRepository.UpdateTeam(ctx, teamID, update)
}

func (r *recordingTeams) DeleteTeam(ctx context.Context, teamID string) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.TeamRepository.DeleteTeam(ctx, teamID)
}

func (r *recordingTeams) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *recordingTeams) lastUpdate() domain.TeamUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

type fixture struct {
	teams  *recordingTeams
	roster *app.Roster
	guard  *memory.InFlightGuard
	ledger *memory.ScoreLedger
	scores *app.ScoreService
	admin  *app.TeamService
}

func newFixture(seed ...domain.Team) *fixture {
	teams := &recordingTeams{TeamRepository: memory.NewTeamStore(seed...)}
	roster := app.NewRoster(teams, time.Minute)
	guard := memory.NewInFlightGuard()
	ledger := memory.NewScoreLedger()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		teams:  teams,
		roster: roster,
		guard:  guard,
		ledger: ledger,
		scores: app.NewScoreService(teams, roster, guard, memory.NewConfirmationStore(), ledger, time.Minute, logger),
		admin:  app.NewTeamService(teams, roster, logger),
	}
}

func seedTeams() []domain.Team {
	minutes := 45
	return []domain.Team{
		{ID: "t1", Name: "Null Pointers", Members: []string{"Ana", "Bo", "", ""}, Score: 1000, TimeRemaining: &minutes},
		{ID: "t2", Name: "Off By One", Members: []string{"Cy", "", "", ""}},
	}
}
