package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/accountable/internal/migrations"
	"github.com/magabrotheeeer/accountable/internal/models"
)

const postgresPort = nat.Port("5432/tcp")

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции проекта.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// testDataFactory создаёт тестовые данные напрямую через репозиторий.
type testDataFactory struct {
	storage *Storage
}

func (f *testDataFactory) createUser(t *testing.T, email string, tier models.Tier, calls int, admin bool) models.User {
	t.Helper()
	ctx := context.Background()
	u, err := f.storage.CreateUser(ctx, email, "hash")
	require.NoError(t, err)
	require.NoError(t, f.storage.CreateProfile(ctx, models.Profile{
		ID:             u.ID,
		Email:          email,
		Tier:           tier,
		CallsRemaining: calls,
		IsAdmin:        admin,
	}))
	return u
}

func (f *testDataFactory) createTask(t *testing.T, userID, title string, at time.Time, endAt *time.Time) models.Task {
	t.Helper()
	task, err := f.storage.CreateTask(context.Background(), models.Task{
		UserID:      userID,
		Title:       title,
		ScheduledAt: at,
		EndAt:       endAt,
	})
	require.NoError(t, err)
	return task
}
