package relationship_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datenknoten/freundebuch/internal/repositories/relationship"
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

func createTestFriend(t *testing.T, db database.DB, userID string, firstName string) string {
	t.Helper()

	friendID := uuid.New().String()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO friends (id, user_id, first_name) VALUES ($1, $2, $3)",
		friendID, userID, firstName)
	require.NoError(t, err)
	return friendID
}

func newEdge(userID string, friendID string, relatedFriendID string, typeID string) *models.Relationship {
	now := time.Now().UTC()
	return &models.Relationship{
		ID:                 uuid.New().String(),
		UserID:             userID,
		FriendID:           friendID,
		RelatedFriendID:    relatedFriendID,
		RelationshipTypeID: typeID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func tripleCount(t *testing.T, db database.DB, rel *models.Relationship) int {
	t.Helper()

	var count int
	err := db.GetContext(context.Background(), &count,
		"SELECT COUNT(*) FROM relationships WHERE user_id = $1 AND friend_id = $2 AND related_friend_id = $3 AND relationship_type_id = $4",
		rel.UserID, rel.FriendID, rel.RelatedFriendID, rel.RelationshipTypeID)
	require.NoError(t, err)
	return count
}

func TestRelationshipRepository_Insert_Duplicate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := relationship.NewRepository(db, getTestLogger())

	userID := createTestUser(t, db)
	ada := createTestFriend(t, db, userID, "Ada")
	grace := createTestFriend(t, db, userID, "Grace")
	ctx := context.Background()

	first := newEdge(userID, ada, grace, "friend_of")
	require.NoError(t, repo.Insert(ctx, first))
	assert.Equal(t, 1, tripleCount(t, db, first))

	// a second row with the same triple gets its own id but hits the unique
	// constraint
	second := newEdge(userID, ada, grace, "friend_of")
	err := repo.Insert(ctx, second)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	assert.Equal(t, 1, tripleCount(t, db, first))

	// the inverse write path swallows the duplicate instead
	require.NoError(t, repo.InsertIgnoreDuplicate(ctx, newEdge(userID, ada, grace, "friend_of")))
	assert.Equal(t, 1, tripleCount(t, db, first))
}

func TestRelationshipRepository_ListByFriend_InTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := relationship.NewRepository(db, getTestLogger())

	userID := createTestUser(t, db)
	ada := createTestFriend(t, db, userID, "Ada")
	grace := createTestFriend(t, db, userID, "Grace")

	txCtx, tx, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(context.Background()) }()

	edge := newEdge(userID, ada, grace, "friend_of")
	require.NoError(t, repo.Insert(txCtx, edge))

	// a read inside the transaction sees the uncommitted row
	items, err := repo.ListByFriend(txCtx, userID, ada)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, edge.ID, items[0].ID)
	assert.Equal(t, "Grace", items[0].RelatedFirstName)
	assert.Equal(t, "Friend", items[0].TypeLabel)

	require.NoError(t, tx.Rollback(context.Background()))

	// after rollback the pooled read sees nothing
	items, err = repo.ListByFriend(context.Background(), userID, ada)
	require.NoError(t, err)
	assert.Empty(t, items)
}
