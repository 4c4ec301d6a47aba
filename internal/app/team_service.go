package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"coding-relay-console/internal/domain"
	"github.com/gammazero/workerpool"
)

// MaxTeamNameLength bounds team names in characters.
const MaxTeamNameLength = 50

// TeamService covers team administration: create, modify, delete, import.
type TeamService struct {
	teams  TeamRepository
	roster *Roster
	logger *slog.Logger
}

func NewTeamService(teams TeamRepository, roster *Roster, logger *slog.Logger) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamService{teams: teams, roster: roster, logger: logger}
}

// ImportResult is the outcome of creating one team during an import.
type ImportResult struct {
	Name string      `json:"name"`
	Team domain.Team `json:"team"`
	Err  error       `json:"-"`
}

// CreateTeam registers a new team. A taken name surfaces as
// *domain.NameConflictError; any other remote failure as
// *domain.UpdateFailedError.
func (s *TeamService) CreateTeam(ctx context.Context, nt domain.NewTeam) (domain.Team, error) {
	team, err := s.create(ctx, nt)
	if err != nil {
		return domain.Team{}, err
	}
	s.refresh(ctx)
	return team, nil
}

func (s *TeamService) create(ctx context.Context, nt domain.NewTeam) (domain.Team, error) {
	nt, err := normalizeTeam(nt)
	if err != nil {
		return domain.Team{}, err
	}
	team, err := s.teams.CreateTeam(ctx, nt)
	if err != nil {
		var conflict *domain.NameConflictError
		if errors.As(err, &conflict) {
			return domain.Team{}, err
		}
		return domain.Team{}, &domain.UpdateFailedError{Op: "create team", Err: err}
	}
	s.logger.InfoContext(ctx, "team created", "team_id", team.ID, "team_name", team.Name)
	return team, nil
}

// UpdateTeam replaces a team's name and members.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID string, nt domain.NewTeam) error {
	if teamID == "" {
		return domain.Invalid("team_id", "please select a team to modify")
	}
	nt, err := normalizeTeam(nt)
	if err != nil {
		return err
	}
	update := domain.TeamUpdate{Name: &nt.Name, Members: nt.Members}
	if err := s.teams.UpdateTeam(ctx, teamID, update); err != nil {
		return &domain.UpdateFailedError{Op: "modify team", TeamID: teamID, Err: err}
	}
	s.logger.InfoContext(ctx, "team modified", "team_id", teamID)
	s.refresh(ctx)
	return nil
}

// DeleteTeam removes a team from the remote service.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID string) error {
	if teamID == "" {
		return domain.Invalid("team_id", "please select a team to delete")
	}
	if err := s.teams.DeleteTeam(ctx, teamID); err != nil {
		return &domain.UpdateFailedError{Op: "delete team", TeamID: teamID, Err: err}
	}
	s.logger.InfoContext(ctx, "team deleted", "team_id", teamID)
	s.refresh(ctx)
	return nil
}

// ImportTeams creates teams concurrently on at most workers goroutines.
// Results are returned in input order; the roster is refreshed once.
func (s *TeamService) ImportTeams(ctx context.Context, teams []domain.NewTeam, workers int) []ImportResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]ImportResult, len(teams))
	wp := workerpool.New(workers)
	for i, nt := range teams {
		wp.Submit(func() {
			team, err := s.create(ctx, nt)
			results[i] = ImportResult{Name: nt.Name, Team: team, Err: err}
		})
	}
	wp.StopWait()
	s.refresh(ctx)
	return results
}

func (s *TeamService) refresh(ctx context.Context) {
	if _, err := s.roster.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh roster", "error", err)
	}
}

// normalizeTeam trims the name, checks its length and pads members to
// domain.MaxTeamMembers slots.
func normalizeTeam(nt domain.NewTeam) (domain.NewTeam, error) {
	name := strings.TrimSpace(nt.Name)
	if name == "" {
		return nt, domain.Invalid("team_name", "team name is required")
	}
	if utf8.RuneCountInString(name) > MaxTeamNameLength {
		return nt, domain.Invalid("team_name", "team name must be less than 50 characters")
	}
	if len(nt.Members) > domain.MaxTeamMembers {
		return nt, domain.Invalid("team_members", "a team has at most 4 members")
	}
	members := make([]string, domain.MaxTeamMembers)
	for i, m := range nt.Members {
		members[i] = strings.TrimSpace(m)
	}
	return domain.NewTeam{Name: name, Members: members}, nil
}
