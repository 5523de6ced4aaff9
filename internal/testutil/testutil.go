package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dom/vehicle-reservation/internal/api"
	"github.com/dom/vehicle-reservation/internal/cache"
	"github.com/dom/vehicle-reservation/internal/config"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
	"github.com/dom/vehicle-reservation/internal/repository/memory"
	repoPostgres "github.com/dom/vehicle-reservation/internal/repository/postgres"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/dom/vehicle-reservation/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a PostgreSQL container and migrates every schema. It
// skips under -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_vehicle_reservation"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	testDB.DB = db

	if err := repoPostgres.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := make([]string, 0, len(repoPostgres.Models()))
	for _, m := range repoPostgres.Models() {
		tables = append(tables, m.(interface{ TableName() string }).TableName())
	}

	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if err := tdb.DB.Exec(stmt).Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:           "0", // Random port
		Environment:    "test",
		LogLevel:       "debug",
		AllowedOrigins: []string{"*"},
		MaxDBConns:     5,
		ViewCacheTTL:   time.Minute,
		BcryptCost:     4, // bcrypt.MinCost keeps tests fast
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Bus      *events.Bus
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer serves the full router over the in-memory store.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServer(t, memory.NewRepositories(), nil)
}

// NewPostgresTestServer serves the full router over a fresh postgres
// container. It skips under -short.
func NewPostgresTestServer(t *testing.T) *TestServer {
	t.Helper()
	testDB := NewTestDB(t)
	return newTestServer(t, repoPostgres.NewRepositories(testDB.DB), testDB)
}

func newTestServer(t *testing.T, repos *repository.Repositories, testDB *TestDB) *TestServer {
	cfg := TestConfig()
	log := zap.NewNop()

	bus := events.NewBus(log)
	ctx, cancel := context.WithCancel(context.Background())

	hub := websocket.NewHub(log)
	go hub.Run()
	feed, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("failed to subscribe hub to change events: %v", err)
	}
	go hub.Forward(ctx, feed)

	services := service.NewServices(repos, cfg, bus, cache.Noop{}, log)
	router := api.NewRouter(services, hub, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Bus:      bus,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		cancel()
		hub.Stop()
		bus.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// EventsURL returns the change feed URL, optionally filtered to kinds.
func (ts *TestServer) EventsURL(kinds ...string) string {
	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http")
	url := wsURL + "/api/v1/events"
	if len(kinds) > 0 {
		url += "?kinds=" + strings.Join(kinds, ",")
	}
	return url
}

// NewTestRedis starts a redis container and returns its URL. It skips under
// -short.
func NewTestRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}
	return "redis://" + endpoint + "/0"
}
