package friend_test

import (
	"context"
	"os"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datenknoten/freundebuch/internal/repositories/friend"
	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "freundebuch"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

func createTestUser(t *testing.T, db database.DB) string {
	t.Helper()

	userID := uuid.New().String()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO users (id, email, display_name) VALUES ($1, $2, $3)",
		userID, userID+"@example.test", "Test User")
	require.NoError(t, err)
	return userID
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestFriendRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := friend.NewRepository(db, getTestLogger())

	userID := createTestUser(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, userID, models.CreateFriendRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Description: "met at the analytical engine meetup",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, userID, created.UserID)
	assert.False(t, created.Archived)

	fetched, err := repo.GetByID(ctx, userID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Ada", fetched.FirstName)

	// another user never sees the friend
	other, err := repo.GetByID(ctx, uuid.New().String(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	updated, err := repo.Update(ctx, userID, created.ID, models.UpdateFriendRequest{
		Nickname: strPtr("The Countess"),
		Archived: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "The Countess", updated.Nickname)
	assert.True(t, updated.Archived)

	// archived friends drop out of the active listing
	active, err := repo.ListActive(ctx, userID)
	require.NoError(t, err)
	for _, f := range active {
		assert.NotEqual(t, created.ID, f.ID)
	}

	friends, total, err := repo.List(ctx, userID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, friends, 1)
	assert.Equal(t, created.ID, friends[0].ID)

	deleted, err := repo.Delete(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.GetByID(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// deleting twice is a no-op
	deleted, err = repo.Delete(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFriendRepository_Update_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := friend.NewRepository(db, getTestLogger())

	updated, err := repo.Update(context.Background(), uuid.New().String(), uuid.New().String(), models.UpdateFriendRequest{
		Nickname: strPtr("nobody"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated)
}
