package domain

import (
	"strings"
	"time"
)

// MaxTeamMembers is the number of member slots a team carries.
const MaxTeamMembers = 4

// Team mirrors a record owned by the remote team-storage service.
type Team struct {
	ID            string   `json:"team_id"`
	Name          string   `json:"team_name"`
	Members       []string `json:"team_members"`
	Score         int      `json:"score"`
	TimeRemaining *int     `json:"time_remaining,omitempty"`
}

// Leader returns the first member, which the console treats as team leader.
func (t Team) Leader() string {
	if len(t.Members) == 0 {
		return ""
	}
	return t.Members[0]
}

// TeamUpdate is a partial update; nil fields are left untouched remotely.
type TeamUpdate struct {
	Score         *int
	TimeRemaining *int
	Name          *string
	Members       []string
}

// NewTeam is the payload for creating a team.
type NewTeam struct {
	Name    string   `json:"team_name" yaml:"team_name"`
	Members []string `json:"team_members" yaml:"team_members"`
}

// Difficulty selects a question set and its scoring rates.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the recognized difficulties in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the recognized difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty normalizes case and surrounding whitespace.
func ParseDifficulty(raw string) Difficulty {
	return Difficulty(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseYesNo reads the hidden-test-cases answer of the add-points form.
func ParseYesNo(field, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	case "":
		return false, Invalid(field, "answer is required")
	}
	return false, Invalid(field, "answer yes or no")
}

// TestCase is one input/expected-output pair of a question.
type TestCase struct {
	ID     int    `json:"id"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Question is a prompt from the remote question bank.
type Question struct {
	ID        int        `json:"id"`
	Prompt    string     `json:"question"`
	TestCases []TestCase `json:"testCaseId"`
}

// ScoreSubmission is the graded outcome of one attempt. It lives only for
// the duration of an add-points request.
type ScoreSubmission struct {
	Difficulty      Difficulty
	TestCasesPassed int
	HiddenViewed    bool
}

// ScoreOverwrite replaces a team's score and optionally its remaining time.
type ScoreOverwrite struct {
	TeamID        string
	TotalPoints   int
	TimeRemaining *int
}

// Confirmation is issued before an overwrite is committed.
type Confirmation struct {
	Token     string         `json:"token"`
	Warning   string         `json:"warning"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Overwrite ScoreOverwrite `json:"-"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	TeamID        string `json:"teamId"`
	TeamName      string `json:"teamName"`
	Leader        string `json:"leader"`
	Score         int    `json:"score"`
	TimeRemaining *int   `json:"timeRemaining,omitempty"`
}

// Leaderboard captures the ordered scoreboard at a point in time.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ScoreChangeKind distinguishes ledger entries.
type ScoreChangeKind string

const (
	ScoreChangeAdd       ScoreChangeKind = "add"
	ScoreChangeOverwrite ScoreChangeKind = "overwrite"
)

// ScoreChange records one applied score mutation.
type ScoreChange struct {
	TeamID        string          `json:"teamId"`
	Kind          ScoreChangeKind `json:"kind"`
	Delta         int             `json:"delta"`
	PreviousScore int             `json:"previousScore"`
	NewScore      int             `json:"newScore"`
	TimeRemaining *int            `json:"timeRemaining,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
