package user_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/instagram-backend/internal/user"
)

var testDB *pgxpool.Pool

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestMain connects to the test database only when DB_HOST_TEST is set.
// Repository tests skip without it; service tests always run.
func TestMain(m *testing.M) {
	dbHost := os.Getenv("DB_HOST_TEST")
	if dbHost == "" {
		log.Info().Msg("DB_HOST_TEST is not set, repository tests will be skipped")
		os.Exit(m.Run())
	}

	dbPort := getEnv("DB_PORT_TEST", "5432")
	dbUser := getEnv("DB_USER_TEST", "postgres")
	dbPassword := getEnv("DB_PASSWORD_TEST", "123456")
	dbName := getEnv("DB_NAME_TEST", "instagram_test")
	dbSSLMode := getEnv("DB_SSLMODE_TEST", "disable")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatal().Err(err).Str("host", dbHost).Str("dbname", dbName).Msg("Failed to parse test database config")
	}
	poolConfig.MaxConns = 5

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connectCancel()

	testDB, err = pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		log.Fatal().Err(err).Str("db_host", dbHost).Str("db_port", dbPort).Msg("Failed to connect to test database")
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err = testDB.Ping(pingCtx); err != nil {
		testDB.Close()
		log.Fatal().Err(err).Msg("Failed to ping test database")
	}
	log.Info().Msg("Test Database connection established.")

	exitCode := m.Run()

	testDB.Close()
	os.Exit(exitCode)
}

func newTestRepository(t *testing.T) user.Repository {
	t.Helper()
	if testDB == nil {
		t.Skip("test database is not configured")
	}
	t.Cleanup(func() {
		truncateUsersTable(t, testDB)
	})
	return user.NewRepository(testDB)
}

func truncateUsersTable(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE users RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate users table")
}

func newRecord(username string) *user.User {
	return &user.User{
		FullName:          "Test User",
		Username:          username,
		Email:             username + "@example.com",
		EncryptedPassword: "hashed_password",
	}
}

func TestUserRepository_Save_Insert(t *testing.T) {
	repo := newTestRepository(t)

	saved, err := repo.Save(context.Background(), newRecord("create"))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())
	require.False(t, saved.UpdatedAt.IsZero())
}

func TestUserRepository_Save_EmailExists(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Save(context.Background(), newRecord("first"))
	require.NoError(t, err)

	dup := newRecord("second")
	dup.Email = "first@example.com"

	saved, err := repo.Save(context.Background(), dup)
	require.ErrorIs(t, err, user.ErrEmailExists)
	require.Nil(t, saved)
}

func TestUserRepository_Save_UsernameExists(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Save(context.Background(), newRecord("same"))
	require.NoError(t, err)

	dup := newRecord("same")
	dup.Email = "other@example.com"

	_, err = repo.Save(context.Background(), dup)
	require.ErrorIs(t, err, user.ErrUsernameExists)
}

func TestUserRepository_FindByID(t *testing.T) {
	repo := newTestRepository(t)

	saved, err := repo.Save(context.Background(), newRecord("findme"))
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, found.ID)
	require.Equal(t, "Test User", found.FullName)
	require.Equal(t, "findme", found.Username)
	require.Equal(t, "findme@example.com", found.Email)
	require.Equal(t, "hashed_password", found.EncryptedPassword)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	found, err := repo.FindByID(context.Background(), 999)
	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, found)
}

func TestUserRepository_FindAll(t *testing.T) {
	repo := newTestRepository(t)

	users, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)

	first, err := repo.Save(context.Background(), newRecord("one"))
	require.NoError(t, err)
	second, err := repo.Save(context.Background(), newRecord("two"))
	require.NoError(t, err)

	users, err = repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, first.ID, users[0].ID)
	require.Equal(t, second.ID, users[1].ID)
}

func TestUserRepository_Save_Update(t *testing.T) {
	repo := newTestRepository(t)

	initial, err := repo.Save(context.Background(), newRecord("update"))
	require.NoError(t, err)

	toUpdate := *initial
	toUpdate.FullName = "Updated Name"
	toUpdate.Username = "updated"

	updated, err := repo.Save(context.Background(), &toUpdate)
	require.NoError(t, err)
	require.Equal(t, initial.ID, updated.ID)

	found, err := repo.FindByID(context.Background(), initial.ID)
	require.NoError(t, err)
	require.Equal(t, "Updated Name", found.FullName)
	require.Equal(t, "updated", found.Username)
	require.Equal(t, initial.Email, found.Email)
	require.Equal(t, initial.EncryptedPassword, found.EncryptedPassword)
	require.True(t, found.UpdatedAt.After(found.CreatedAt), "UpdatedAt should be after CreatedAt")
}

func TestUserRepository_Save_UpdateNotFound(t *testing.T) {
	repo := newTestRepository(t)

	ghost := newRecord("ghost")
	ghost.ID = 12345

	_, err := repo.Save(context.Background(), ghost)
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_ExistsAndDelete(t *testing.T) {
	repo := newTestRepository(t)

	saved, err := repo.Save(context.Background(), newRecord("delete"))
	require.NoError(t, err)

	exists, err := repo.ExistsByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.DeleteByID(context.Background(), saved.ID))

	exists, err = repo.ExistsByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.False(t, exists)

	err = repo.DeleteByID(context.Background(), saved.ID)
	require.ErrorIs(t, err, user.ErrNotFound)
}
