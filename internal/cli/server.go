package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coding-relay-console/internal/app"
	"coding-relay-console/internal/config"
	"coding-relay-console/internal/infra/memory"
	pgledger "coding-relay-console/internal/infra/postgres"
	infraredis "coding-relay-console/internal/infra/redis"
	"coding-relay-console/internal/infra/relayapi"
	transport "coding-relay-console/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the console server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the organizer console server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// newTeamRepository returns the remote relay API client, or an in-memory
// demo roster when no base URL is configured.
func newTeamRepository(cfg config.Config, logger *slog.Logger) (app.TeamRepository, *relayapi.Client) {
	if cfg.RelayAPI.BaseURL == "" {
		logger.Warn("relay_api.base_url not set, using in-memory demo roster")
		return memory.NewTeamStore(sampleTeams()...), nil
	}
	client := relayapi.NewClient(cfg.RelayAPI.BaseURL, config.TTLDuration(cfg.RelayAPI.Timeout, 10*time.Second))
	return client, client
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := newLogger()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	teams, client := newTeamRepository(cfg, logger)

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if client != nil {
		loader = client
	}

	redisClient := newRedisClient(cfg)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	inflightTTL := config.TTLDuration(cfg.Scores.InFlightTTL, 30*time.Second)
	if cfg.Scores.InFlightTTL == "" && cfg.Redis.TTL != "" {
		inflightTTL = redisTTL
	}

	var (
		questionRepo  app.QuestionRepository
		guard         app.InFlightGuard
		confirmations app.ConfirmationStore
	)
	if redisClient != nil {
		defer redisClient.Close()
		questionRepo = infraredis.NewQuestionRepository(redisClient, loader, questionTTL)
		guard = infraredis.NewInFlightGuard(redisClient, inflightTTL)
		confirmations = infraredis.NewConfirmationStore(redisClient)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
		guard = memory.NewInFlightGuard()
		confirmations = memory.NewConfirmationStore()
	}

	var ledger app.ScoreLedger = memory.NewScoreLedger()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		ledger = pgledger.NewScoreLedger(pool)
	}

	roster := app.NewRoster(teams, config.TTLDuration(cfg.Roster.MaxAge, 15*time.Second))
	scores := app.NewScoreService(teams, roster, guard, confirmations, ledger,
		config.TTLDuration(cfg.Scores.ConfirmationTTL, 2*time.Minute), logger)
	admin := app.NewTeamService(teams, roster, logger)
	questions := app.NewQuestionService(questionRepo)
	handler := transport.NewHandler(scores, admin, questions, roster, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting relay console", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
