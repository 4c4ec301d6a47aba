package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coding-relay-console/internal/domain"
	"github.com/google/uuid"
)

// OverwriteWarning is shown to the operator before an overwrite is committed.
const OverwriteWarning = "Warning: This will overwrite the existing score. Do you wish to continue?"

// MaxTimeRemaining bounds the minutes an overwrite may set.
const MaxTimeRemaining = 60

// InFlightGuard allows at most one outstanding score change per team.
// Acquire returns domain.ErrOperationInProgress while another holder exists.
type InFlightGuard interface {
	Acquire(ctx context.Context, teamID string) (release func(), err error)
}

// ConfirmationStore keeps pending overwrites until they are confirmed.
// Peek reads a token without consuming it; Take is single-use. Both return
// domain.ErrConfirmationNotFound for unknown or expired tokens.
type ConfirmationStore interface {
	Save(ctx context.Context, c domain.Confirmation, ttl time.Duration) error
	Peek(ctx context.Context, token string) (domain.Confirmation, error)
	Take(ctx context.Context, token string) (domain.Confirmation, error)
}

// ScoreLedger records applied score changes.
type ScoreLedger interface {
	Record(ctx context.Context, change domain.ScoreChange) error
	History(ctx context.Context, teamID string, limit int) ([]domain.ScoreChange, error)
}

// ScoreResult is reported back after a score change reaches the remote service.
type ScoreResult struct {
	TeamID        string `json:"teamId"`
	Delta         int    `json:"delta"`
	Score         int    `json:"score"`
	TimeRemaining *int   `json:"timeRemaining,omitempty"`
}

// ScoreService implements the add-points and overwrite-points workflows.
type ScoreService struct {
	teams         TeamRepository
	roster        *Roster
	guard         InFlightGuard
	confirmations ConfirmationStore
	ledger        ScoreLedger
	confirmTTL    time.Duration
	logger        *slog.Logger

	now      func() time.Time
	newToken func() string
}

func NewScoreService(teams TeamRepository, roster *Roster, guard InFlightGuard, confirmations ConfirmationStore, ledger ScoreLedger, confirmTTL time.Duration, logger *slog.Logger) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		teams:         teams,
		roster:        roster,
		guard:         guard,
		confirmations: confirmations,
		ledger:        ledger,
		confirmTTL:    confirmTTL,
		logger:        logger,
		now:           time.Now,
		newToken:      uuid.NewString,
	}
}

// AddPoints computes the delta of sub and adds it to the team's current score.
func (s *ScoreService) AddPoints(ctx context.Context, teamID string, sub domain.ScoreSubmission) (ScoreResult, error) {
	if err := validateSubmission(teamID, sub); err != nil {
		return ScoreResult{}, err
	}
	delta := sub.Points()
	if delta == 0 {
		return ScoreResult{}, domain.Invalid("", "invalid data entered")
	}

	release, err := s.acquire(ctx, teamID)
	if err != nil {
		return ScoreResult{}, err
	}
	defer release()

	team, err := s.roster.Current(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return ScoreResult{}, &domain.ValidationError{Field: "team_id", Message: "team not found", Err: err}
		}
		return ScoreResult{}, &domain.UpdateFailedError{Op: "add points", TeamID: teamID, Err: err}
	}

	newScore := team.Score + delta
	if err := s.teams.UpdateTeam(ctx, teamID, domain.TeamUpdate{Score: &newScore}); err != nil {
		return ScoreResult{}, &domain.UpdateFailedError{Op: "add points", TeamID: teamID, Err: err}
	}
	s.logger.InfoContext(ctx, "points added", "team_id", teamID, "delta", delta, "score", newScore)

	s.afterChange(ctx, domain.ScoreChange{
		TeamID:        teamID,
		Kind:          domain.ScoreChangeAdd,
		Delta:         delta,
		PreviousScore: team.Score,
		NewScore:      newScore,
	})
	return ScoreResult{TeamID: teamID, Delta: delta, Score: newScore}, nil
}

func validateSubmission(teamID string, sub domain.ScoreSubmission) error {
	if teamID == "" {
		return domain.Invalid("team_id", "please select a team")
	}
	if sub.Difficulty == "" {
		return domain.Invalid("difficulty", "question set is required")
	}
	if sub.TestCasesPassed == 0 {
		return domain.Invalid("test_cases_passed", "test cases passed is required")
	}
	if sub.TestCasesPassed < domain.MinTestCasesPassed || sub.TestCasesPassed > domain.MaxTestCasesPassed {
		return domain.Invalid("test_cases_passed", "select between 1 and 5 test cases")
	}
	return nil
}

// RequestOverwrite validates an overwrite and parks it behind a
// confirmation token. Nothing is sent until ConfirmOverwrite.
func (s *ScoreService) RequestOverwrite(ctx context.Context, o domain.ScoreOverwrite) (domain.Confirmation, error) {
	if o.TeamID == "" {
		return domain.Confirmation{}, domain.Invalid("team_id", "please select a team")
	}
	if o.TotalPoints < 0 {
		return domain.Confirmation{}, domain.Invalid("total_points", "points should be greater than or equal to 0")
	}
	if o.TimeRemaining != nil && (*o.TimeRemaining < 0 || *o.TimeRemaining > MaxTimeRemaining) {
		return domain.Confirmation{}, domain.Invalid("time_remaining", "time remaining must be between 0 to 60 minutes")
	}

	c := domain.Confirmation{
		Token:     s.newToken(),
		Warning:   OverwriteWarning,
		ExpiresAt: s.now().Add(s.confirmTTL),
		Overwrite: o,
	}
	if err := s.confirmations.Save(ctx, c, s.confirmTTL); err != nil {
		return domain.Confirmation{}, err
	}
	return c, nil
}

// ConfirmOverwrite commits a pending overwrite. A token is consumed only
// once the team's guard is held, so a confirm rejected as in progress can
// be retried with the same token.
func (s *ScoreService) ConfirmOverwrite(ctx context.Context, token string) (ScoreResult, error) {
	c, err := s.confirmations.Peek(ctx, token)
	if err != nil {
		return ScoreResult{}, err
	}
	if s.now().After(c.ExpiresAt) {
		_, _ = s.confirmations.Take(ctx, token)
		return ScoreResult{}, domain.ErrConfirmationNotFound
	}
	o := c.Overwrite

	release, err := s.acquire(ctx, o.TeamID)
	if err != nil {
		return ScoreResult{}, err
	}
	defer release()

	if _, err := s.confirmations.Take(ctx, token); err != nil {
		return ScoreResult{}, err
	}

	previous, known := s.previousScore(ctx, o.TeamID)
	total := o.TotalPoints
	update := domain.TeamUpdate{Score: &total, TimeRemaining: o.TimeRemaining}
	if err := s.teams.UpdateTeam(ctx, o.TeamID, update); err != nil {
		return ScoreResult{}, &domain.UpdateFailedError{Op: "overwrite score", TeamID: o.TeamID, Err: err}
	}
	s.logger.InfoContext(ctx, "score overwritten", "team_id", o.TeamID, "score", total)

	if !known {
		previous = total
	}
	delta := total - previous
	s.afterChange(ctx, domain.ScoreChange{
		TeamID:        o.TeamID,
		Kind:          domain.ScoreChangeOverwrite,
		Delta:         delta,
		PreviousScore: previous,
		NewScore:      total,
		TimeRemaining: o.TimeRemaining,
	})
	return ScoreResult{TeamID: o.TeamID, Delta: delta, Score: total, TimeRemaining: o.TimeRemaining}, nil
}

// previousScore reads the team's remote score before an overwrite. A failed
// lookup does not block the overwrite; the last cached score is used, and
// without one the change is recorded as previous == new.
func (s *ScoreService) previousScore(ctx context.Context, teamID string) (int, bool) {
	team, err := s.roster.Current(ctx, teamID)
	if err == nil {
		return team.Score, true
	}
	s.logger.WarnContext(ctx, "read score before overwrite", "team_id", teamID, "error", err)
	if team, ok := s.roster.Cached(teamID); ok {
		return team.Score, true
	}
	return 0, false
}

// CancelOverwrite discards a pending overwrite.
func (s *ScoreService) CancelOverwrite(ctx context.Context, token string) error {
	_, err := s.confirmations.Take(ctx, token)
	return err
}

// History lists recorded score changes for a team, newest first.
func (s *ScoreService) History(ctx context.Context, teamID string, limit int) ([]domain.ScoreChange, error) {
	if teamID == "" {
		return nil, domain.Invalid("team_id", "please select a team")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.ledger.History(ctx, teamID, limit)
}

func (s *ScoreService) acquire(ctx context.Context, teamID string) (func(), error) {
	release, err := s.guard.Acquire(ctx, teamID)
	if errors.Is(err, domain.ErrOperationInProgress) {
		return nil, &domain.ValidationError{Field: "team_id", Message: "operation in progress", Err: err}
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

// afterChange records the change and refreshes the roster. Both are
// follow-ups to an update the remote service already accepted, so failures
// are logged rather than returned.
func (s *ScoreService) afterChange(ctx context.Context, change domain.ScoreChange) {
	change.CreatedAt = s.now()
	if err := s.ledger.Record(ctx, change); err != nil {
		s.logger.ErrorContext(ctx, "record score change", "team_id", change.TeamID, "error", err)
	}
	if _, err := s.roster.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh roster after score change", "error", err)
	}
}
