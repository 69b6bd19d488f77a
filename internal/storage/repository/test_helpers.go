package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, email, firstName, lastName, passwordHash string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, first_name, last_name, hashed_password)
		VALUES ($1, $2, $3, $4) RETURNING uid`,
		email, firstName, lastName, passwordHash).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateModel создает тестовую запись модели и возвращает её UID
func (f *TestDataFactory) CreateModel(t *testing.T, name, version, urlOrPath, sha256 string,
	createdAt time.Time) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO ai_models (name, version, url_or_path, sha256, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING uid`,
		name, version, urlOrPath, sha256, createdAt).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// MarkModelDeleted помечает запись модели как мягко удалённую
func (f *TestDataFactory) MarkModelDeleted(t *testing.T, uid string) {
	_, err := f.storage.DB.Exec(`UPDATE ai_models
		SET is_deleted = TRUE, deleted_at = now() WHERE uid = $1`, uid)
	require.NoError(t, err)
}

// TestUserData содержит стандартные тестовые данные пользователя
type TestUserData struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// GetTestUserData возвращает стандартные тестовые данные пользователя.
// Email уникален для каждого вызова, чтобы тесты не конфликтовали.
func GetTestUserData() TestUserData {
	return TestUserData{
		Email:        uuid.New().String() + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hashedpassword",
	}
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyUserCount проверяет количество пользователей с данным email
func (v *TestVerification) VerifyUserCount(t *testing.T, email string, want int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = $1", email).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, want, count)
}

// VerifyModelCount проверяет количество записей модели с данным именем
func (v *TestVerification) VerifyModelCount(t *testing.T, name string, want int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM ai_models WHERE name = $1", name).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, want, count)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForAll(
			wait.ForListeningPort(nat.Port("5432/tcp")),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        DROP TABLE IF EXISTS ai_models CASCADE;
        DROP TABLE IF EXISTS users CASCADE;

        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL,
            first_name TEXT,
            last_name TEXT,
            hashed_password TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            deleted_at TIMESTAMPTZ,
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE
        );

        CREATE UNIQUE INDEX idx_users_email_not_deleted
            ON users (email) WHERE NOT is_deleted;

        CREATE TABLE ai_models (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name TEXT NOT NULL,
            version TEXT NOT NULL DEFAULT '0.0.1',
            description TEXT,
            url_or_path TEXT NOT NULL,
            details JSONB NOT NULL DEFAULT '{}',
            sha256 TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            deleted_at TIMESTAMPTZ,
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE
        );

        CREATE UNIQUE INDEX idx_ai_models_name_version_not_deleted
            ON ai_models (name, version) WHERE NOT is_deleted;

        CREATE INDEX idx_ai_models_name ON ai_models (name);
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	}

	return storage, cleanup
}
