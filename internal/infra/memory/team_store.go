package memory

import (
	"context"
	"sync"

	"coding-relay-console/internal/domain"
	"github.com/google/uuid"
)

// TeamStore is an in-memory stand-in for the remote team-storage service.
// It backs offline demos and tests.
type TeamStore struct {
	mu    sync.RWMutex
	teams map[string]domain.Team
	order []string
}

func NewTeamStore(seed ...domain.Team) *TeamStore {
	s := &TeamStore{teams: make(map[string]domain.Team)}
	for _, team := range seed {
		if team.ID == "" {
			team.ID = uuid.NewString()
		}
		s.teams[team.ID] = team
		s.order = append(s.order, team.ID)
	}
	return s
}

func (s *TeamStore) ListTeams(_ context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Team, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.teams[id])
	}
	return out, nil
}

func (s *TeamStore) CreateTeam(_ context.Context, nt domain.NewTeam) (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, team := range s.teams {
		if team.Name == nt.Name {
			return domain.Team{}, &domain.NameConflictError{Name: nt.Name}
		}
	}
	team := domain.Team{
		ID:      uuid.NewString(),
		Name:    nt.Name,
		Members: append([]string(nil), nt.Members...),
	}
	s.teams[team.ID] = team
	s.order = append(s.order, team.ID)
	return team, nil
}

func (s *TeamStore) UpdateTeam(_ context.Context, teamID string, update domain.TeamUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if update.Score != nil {
		team.Score = *update.Score
	}
	if update.TimeRemaining != nil {
		v := *update.TimeRemaining
		team.TimeRemaining = &v
	}
	if update.Name != nil {
		team.Name = *update.Name
	}
	if update.Members != nil {
		team.Members = append([]string(nil), update.Members...)
	}
	s.teams[teamID] = team
	return nil
}

func (s *TeamStore) DeleteTeam(_ context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[teamID]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(s.teams, teamID)
	for i, id := range s.order {
		if id == teamID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
