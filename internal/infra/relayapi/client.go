// Package relayapi talks to the remote Coding Relay scoring API, which owns
// team records and the question bank.
package relayapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coding-relay-console/internal/domain"
)

// DefaultBaseURL is the public Coding Relay backend.
const DefaultBaseURL = "https://coding-relay-be.onrender.com"

// Client implements app.TeamRepository and the question loaders over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-2xx answer from the remote API.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relayapi: %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (c *Client) ListTeams(ctx context.Context) ([]domain.Team, error) {
	var teams []domain.Team
	if err := c.do(ctx, http.MethodGet, "/teams/getAllTeams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

type createTeamRequest struct {
	TeamName    string   `json:"team_name"`
	TeamMembers []string `json:"team_members"`
}

// CreateTeam posts a new team. The remote service answers a taken name
// with HTTP 500 (or 409), which is reported as *domain.NameConflictError.
func (c *Client) CreateTeam(ctx context.Context, nt domain.NewTeam) (domain.Team, error) {
	var created domain.Team
	err := c.do(ctx, http.MethodPost, "/teams/createTeam", createTeamRequest{
		TeamName:    nt.Name,
		TeamMembers: nt.Members,
	}, &created)
	var se *StatusError
	if errors.As(err, &se) && (se.Status == http.StatusInternalServerError || se.Status == http.StatusConflict) {
		return domain.Team{}, &domain.NameConflictError{Name: nt.Name}
	}
	if err != nil {
		return domain.Team{}, err
	}
	if created.Name == "" {
		created.Name = nt.Name
		created.Members = nt.Members
	}
	return created, nil
}

type updateTeamRequest struct {
	TeamID        string   `json:"team_id"`
	Score         *int     `json:"score,omitempty"`
	TimeRemaining *int     `json:"time_remaining,omitempty"`
	TeamName      *string  `json:"team_name,omitempty"`
	TeamMembers   []string `json:"team_members,omitempty"`
}

// UpdateTeam sends only the fields set in update.
func (c *Client) UpdateTeam(ctx context.Context, teamID string, update domain.TeamUpdate) error {
	return c.do(ctx, http.MethodPut, "/teams/updateTeam", updateTeamRequest{
		TeamID:        teamID,
		Score:         update.Score,
		TimeRemaining: update.TimeRemaining,
		TeamName:      update.Name,
		TeamMembers:   update.Members,
	}, nil)
}

func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	return c.do(ctx, http.MethodDelete, "/teams/deleteTeam/"+url.PathEscape(teamID), nil, nil)
}

// LoadQuestions fetches one question set from the question bank.
func (c *Client) LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	path := "/questions/getQuestionsByDifficulty?difficulty=" + url.QueryEscape(string(difficulty))
	var questions []domain.Question
	if err := c.do(ctx, http.MethodGet, path, nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("relayapi: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("relayapi: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("relayapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("relayapi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		// createTeam answers with a plain message on some deployments
		if method == http.MethodPost {
			return nil
		}
		return fmt.Errorf("relayapi: parse response: %w", err)
	}
	return nil
}
