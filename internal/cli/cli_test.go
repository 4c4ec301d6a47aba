package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coding-relay-console/internal/app"
	"coding-relay-console/internal/domain"
)

func TestCalcCommand(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"--difficulty", "easy", "--passed", "5"}, "5000"},
		{[]string{"--difficulty", "Medium", "--passed", "3", "--hidden", "yes"}, "4000"},
		{[]string{"--difficulty", "hard", "--passed", "1", "--hidden", "y"}, "1750"},
	}
	for _, tc := range cases {
		cmd := NewCalcCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(tc.args)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("calc %v: %v", tc.args, err)
		}
		if got := strings.TrimSpace(out.String()); got != tc.want {
			t.Fatalf("calc %v: expected %s, got %s", tc.args, tc.want, got)
		}
	}
}

func TestCalcCommandRejectsInvalidInput(t *testing.T) {
	cmd := NewCalcCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--difficulty", "easy", "--passed", "6"})
	err := cmd.Execute()
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadTeamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	content := `
teams:
  - team_name: Null Pointers
    team_members: [Ana, Bo]
  - team_name: Off By One
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	teams, err := readTeamsFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(teams) != 2 || teams[0].Name != "Null Pointers" || len(teams[0].Members) != 2 {
		t.Fatalf("unexpected teams %+v", teams)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("teams: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readTeamsFile(empty); err == nil {
		t.Fatalf("expected error for empty roster file")
	}
}

func TestPrintImportResults(t *testing.T) {
	var out bytes.Buffer
	failed := printImportResults(&out, []app.ImportResult{
		{Name: "Null Pointers", Team: domain.Team{ID: "t1", Name: "Null Pointers"}},
		{Name: "Off By One", Err: errors.New("boom")},
	})
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
	if !strings.Contains(out.String(), "OK   Null Pointers") || !strings.Contains(out.String(), "FAIL Off By One") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
