package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"coding-relay-console/internal/app"
	"coding-relay-console/internal/config"
	"coding-relay-console/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type teamsFile struct {
	Teams []domain.NewTeam `yaml:"teams"`
}

// NewImportTeamsCmd creates every team listed in a YAML roster file.
func NewImportTeamsCmd(configPath *string) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "import-teams <file.yaml>",
		Short: "Create teams from a YAML roster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			teams, err := readTeamsFile(args[0])
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Import.Workers
			}

			logger := newLogger()
			repo, _ := newTeamRepository(cfg, logger)
			roster := app.NewRoster(repo, config.TTLDuration(cfg.Roster.MaxAge, 15*time.Second))
			service := app.NewTeamService(repo, roster, logger)

			results := service.ImportTeams(cmd.Context(), teams, workers)
			failed := printImportResults(cmd.OutOrStdout(), results)
			if failed > 0 {
				return fmt.Errorf("%d of %d teams failed to import", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent create requests (default import.workers or 1)")
	return cmd
}

func readTeamsFile(path string) ([]domain.NewTeam, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file teamsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Teams) == 0 {
		return nil, fmt.Errorf("%s lists no teams", path)
	}
	return file.Teams, nil
}

func printImportResults(w io.Writer, results []app.ImportResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %-30s %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "OK   %-30s %s\n", r.Team.Name, r.Team.ID)
	}
	return failed
}
