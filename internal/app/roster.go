package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"coding-relay-console/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TeamRepository is the remote team-storage service.
type TeamRepository interface {
	ListTeams(ctx context.Context) ([]domain.Team, error)
	CreateTeam(ctx context.Context, team domain.NewTeam) (domain.Team, error)
	UpdateTeam(ctx context.Context, teamID string, update domain.TeamUpdate) error
	DeleteTeam(ctx context.Context, teamID string) error
}

// Roster is the console's cached copy of the remote team list. The list is
// only ever replaced wholesale by Refresh; readers get copies.
type Roster struct {
	teams  TeamRepository
	maxAge time.Duration
	now    func() time.Time
	sf     singleflight.Group

	mu          sync.RWMutex
	snapshot    []domain.Team
	fetchedAt   time.Time
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewRoster(teams TeamRepository, maxAge time.Duration) *Roster {
	return NewRosterWithClock(teams, maxAge, time.Now)
}

// NewRosterWithClock allows deterministic staleness in tests.
func NewRosterWithClock(teams TeamRepository, maxAge time.Duration, now func() time.Time) *Roster {
	return &Roster{
		teams:       teams,
		maxAge:      maxAge,
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Refresh refetches the team list, replaces the snapshot and pushes the new
// leaderboard to subscribers. Concurrent callers share one fetch.
func (r *Roster) Refresh(ctx context.Context) ([]domain.Team, error) {
	result, err, _ := r.sf.Do("teams", func() (interface{}, error) {
		teams, err := r.teams.ListTeams(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.snapshot = cloneTeams(teams)
		r.fetchedAt = r.now()
		r.broadcastLocked()
		r.mu.Unlock()
		return teams, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneTeams(result.([]domain.Team)), nil
}

// Teams returns the cached list, fetching it first if it was never loaded.
func (r *Roster) Teams(ctx context.Context) ([]domain.Team, error) {
	r.mu.RLock()
	loaded := !r.fetchedAt.IsZero()
	teams := cloneTeams(r.snapshot)
	r.mu.RUnlock()
	if loaded {
		return teams, nil
	}
	return r.Refresh(ctx)
}

// Team looks up one team, refreshing when the snapshot is stale or the
// team is not in it yet.
func (r *Roster) Team(ctx context.Context, teamID string) (domain.Team, error) {
	if team, ok := r.cached(teamID, true); ok {
		return team, nil
	}
	if _, err := r.Refresh(ctx); err != nil {
		return domain.Team{}, err
	}
	if team, ok := r.cached(teamID, false); ok {
		return team, nil
	}
	return domain.Team{}, domain.ErrTeamNotFound
}

// Current refetches the team list unconditionally and returns teamID from
// it. Score changes read through it so the new score is computed from the
// remote value, not from a snapshot another console may have outdated.
func (r *Roster) Current(ctx context.Context, teamID string) (domain.Team, error) {
	if _, err := r.Refresh(ctx); err != nil {
		return domain.Team{}, err
	}
	if team, ok := r.cached(teamID, false); ok {
		return team, nil
	}
	return domain.Team{}, domain.ErrTeamNotFound
}

// Cached returns the team from the current snapshot without any fetch.
func (r *Roster) Cached(teamID string) (domain.Team, bool) {
	return r.cached(teamID, false)
}

func (r *Roster) cached(teamID string, requireFresh bool) (domain.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fetchedAt.IsZero() {
		return domain.Team{}, false
	}
	if requireFresh && r.now().Sub(r.fetchedAt) > r.maxAge {
		return domain.Team{}, false
	}
	for _, team := range r.snapshot {
		if team.ID == teamID {
			return cloneTeam(team), true
		}
	}
	return domain.Team{}, false
}

// Leaderboard ranks the cached teams.
func (r *Roster) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	if _, err := r.Teams(ctx); err != nil {
		return domain.Leaderboard{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.leaderboardLocked(), nil
}

// Subscribe returns a channel that receives a leaderboard after every
// refresh. The caller must invoke the returned cancel function.
func (r *Roster) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	initial := r.leaderboardLocked()
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Roster) broadcastLocked() {
	lb := r.leaderboardLocked()
	for ch := range r.subscribers {
		select {
		case ch <- lb:
		default:
			// slow subscriber: drop its oldest snapshot
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (r *Roster) leaderboardLocked() domain.Leaderboard {
	teams := cloneTeams(r.snapshot)
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Score != teams[j].Score {
			return teams[i].Score > teams[j].Score
		}
		return teams[i].Name < teams[j].Name
	})

	entries := make([]domain.LeaderboardEntry, 0, len(teams))
	for i, team := range teams {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:          i + 1,
			TeamID:        team.ID,
			TeamName:      team.Name,
			Leader:        team.Leader(),
			Score:         team.Score,
			TimeRemaining: team.TimeRemaining,
		})
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: r.fetchedAt}
}

func cloneTeams(teams []domain.Team) []domain.Team {
	out := make([]domain.Team, len(teams))
	for i := range teams {
		out[i] = cloneTeam(teams[i])
	}
	return out
}

func cloneTeam(t domain.Team) domain.Team {
	t.Members = append([]string(nil), t.Members...)
	if t.TimeRemaining != nil {
		v := *t.TimeRemaining
		t.TimeRemaining = &v
	}
	return t
}
