package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"coding-relay-console/internal/app"
	"coding-relay-console/internal/domain"
	"coding-relay-console/internal/infra/memory"
	pgledger "coding-relay-console/internal/infra/postgres"
	pgmigrations "coding-relay-console/internal/infra/postgres/migrations"
	infraredis "coding-relay-console/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestScoreWorkflowsEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateLedger(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	teams := memory.NewTeamStore(
		domain.Team{ID: "t1", Name: "Null Pointers", Members: []string{"Ana", "", "", ""}, Score: 1000},
		domain.Team{ID: "t2", Name: "Off By One", Members: []string{"Cy", "", "", ""}},
	)
	roster := app.NewRoster(teams, time.Minute)
	guard := infraredis.NewInFlightGuard(redisClient, 30*time.Second)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewScoreService(teams, roster, guard,
		infraredis.NewConfirmationStore(redisClient), pgledger.NewScoreLedger(pool), time.Minute, logger)

	result, err := service.AddPoints(ctx, "t2", domain.ScoreSubmission{
		Difficulty:      domain.DifficultyHard,
		TestCasesPassed: 2,
	})
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if result.Score != 4000 {
		t.Fatalf("expected 4000, got %d", result.Score)
	}

	// a held guard blocks a second writer for the same team
	release, err := guard.Acquire(ctx, "t1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	_, err = service.AddPoints(ctx, "t1", domain.ScoreSubmission{Difficulty: domain.DifficultyEasy, TestCasesPassed: 1})
	if !errors.Is(err, domain.ErrOperationInProgress) {
		t.Fatalf("expected operation in progress, got %v", err)
	}
	release()

	c, err := service.RequestOverwrite(ctx, domain.ScoreOverwrite{TeamID: "t1", TotalPoints: 250})
	if err != nil {
		t.Fatalf("request overwrite: %v", err)
	}
	if _, err := service.ConfirmOverwrite(ctx, c.Token); err != nil {
		t.Fatalf("confirm overwrite: %v", err)
	}
	if _, err := service.ConfirmOverwrite(ctx, c.Token); !errors.Is(err, domain.ErrConfirmationNotFound) {
		t.Fatalf("expected used token to be rejected, got %v", err)
	}

	lb, err := roster.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if lb.Entries[0].TeamID != "t2" || lb.Entries[1].Score != 250 {
		t.Fatalf("unexpected leaderboard %+v", lb.Entries)
	}

	history, err := service.History(ctx, "t1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Kind != domain.ScoreChangeOverwrite || history[0].PreviousScore != 1000 {
		t.Fatalf("unexpected t1 history %+v", history)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "relay", "POSTGRES_PASSWORD": "relaypass", "POSTGRES_DB": "relaydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://relay:relaypass@%s:%s/relaydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateLedger(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
