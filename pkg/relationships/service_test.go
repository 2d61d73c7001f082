package relationships

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datenknoten/freundebuch/pkg/catalog"
	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/models"
)

type fakeTx struct {
	database.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) IsOpen() bool {
	return !t.committed && !t.rolledBack
}

type fakeDB struct {
	database.DB
	tx         *fakeTx
	beginCount int
}

func (d *fakeDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	d.beginCount++
	d.tx = &fakeTx{}
	return ctx, d.tx, nil
}

type deletion struct {
	byID    string
	byValue [3]string
}

type fakeRepo struct {
	inserted        []models.Relationship
	insertedIgnored []models.Relationship
	existing        map[string]models.Relationship
	deletions       []deletion
	deleteAllCount  int64
	updatedNotes    map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		existing:     map[string]models.Relationship{},
		updatedNotes: map[string]string{},
	}
}

func (r *fakeRepo) Insert(ctx context.Context, rel *models.Relationship) error {
	r.inserted = append(r.inserted, *rel)
	return nil
}

func (r *fakeRepo) InsertIgnoreDuplicate(ctx context.Context, rel *models.Relationship) error {
	r.insertedIgnored = append(r.insertedIgnored, *rel)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, userID string, id string) (*models.Relationship, error) {
	rel, ok := r.existing[id]
	if !ok {
		return nil, nil
	}
	return &rel, nil
}

func (r *fakeRepo) ListByFriend(ctx context.Context, userID string, friendID string) ([]models.Relationship, error) {
	var out []models.Relationship
	for _, rel := range r.existing {
		if rel.FriendID == friendID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string) ([]models.Relationship, error) {
	var out []models.Relationship
	for _, rel := range r.existing {
		out = append(out, rel)
	}
	return out, nil
}

func (r *fakeRepo) UpdateNotes(ctx context.Context, userID string, id string, notes string) (bool, error) {
	r.updatedNotes[id] = notes
	_, ok := r.existing[id]
	return ok, nil
}

func (r *fakeRepo) DeleteByID(ctx context.Context, userID string, id string) (bool, error) {
	r.deletions = append(r.deletions, deletion{byID: id})
	_, ok := r.existing[id]
	delete(r.existing, id)
	return ok, nil
}

func (r *fakeRepo) DeleteByValue(ctx context.Context, userID string, friendID string, relatedFriendID string, typeID string) (bool, error) {
	r.deletions = append(r.deletions, deletion{byValue: [3]string{friendID, relatedFriendID, typeID}})
	return true, nil
}

func (r *fakeRepo) DeleteAllForFriend(ctx context.Context, userID string, friendID string) (int64, error) {
	return r.deleteAllCount, nil
}

type fakeFriends struct {
	ids map[string]bool
}

func (f *fakeFriends) GetByID(ctx context.Context, userID string, id string) (*models.Friend, error) {
	if !f.ids[id] {
		return nil, nil
	}
	return &models.Friend{ID: id, UserID: userID}, nil
}

type fakeCache struct {
	invalidations int
}

func (c *fakeCache) Invalidate(ctx context.Context, userID string) {
	c.invalidations++
}

func ptr(s string) *string {
	return &s
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]models.RelationshipType{
		{ID: "parent_of", Category: models.CategoryFamily, Label: "Parent", InverseTypeID: ptr("child_of")},
		{ID: "child_of", Category: models.CategoryFamily, Label: "Child", InverseTypeID: ptr("parent_of")},
		{ID: "friend_of", Category: models.CategorySocial, Label: "Friend", InverseTypeID: ptr("friend_of")},
		{ID: "met_through", Category: models.CategorySocial, Label: "Met through"},
	})
	require.NoError(t, err)
	return cat
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

type fixture struct {
	service *Service
	repo    *fakeRepo
	db      *fakeDB
	cache   *fakeCache
}

func newFixture(t *testing.T, friendIDs ...string) *fixture {
	t.Helper()

	friends := &fakeFriends{ids: map[string]bool{}}
	for _, id := range friendIDs {
		friends.ids[id] = true
	}

	repo := newFakeRepo()
	db := &fakeDB{}
	cache := &fakeCache{}
	emitter := events.NewEmitter(nil, noopLogger())

	return &fixture{
		service: NewService(db, repo, friends, testCatalog(t), emitter, cache, noopLogger()),
		repo:    repo,
		db:      db,
		cache:   cache,
	}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a self relation", func(t *testing.T) {
		f := newFixture(t, "a")

		_, err := f.service.Add(ctx, "user-1", "a", models.CreateRelationshipRequest{
			RelatedFriendID:    "a",
			RelationshipTypeID: "friend_of",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("rejects an unknown relationship type", func(t *testing.T) {
		f := newFixture(t, "a", "b")

		_, err := f.service.Add(ctx, "user-1", "a", models.CreateRelationshipRequest{
			RelatedFriendID:    "b",
			RelationshipTypeID: "nemesis_of",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("returns 404 when the related friend does not exist", func(t *testing.T) {
		f := newFixture(t, "a")

		_, err := f.service.Add(ctx, "user-1", "a", models.CreateRelationshipRequest{
			RelatedFriendID:    "b",
			RelationshipTypeID: "friend_of",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
		assert.Empty(t, f.repo.inserted)
	})

	t.Run("asymmetric type writes the mirrored inverse in one transaction", func(t *testing.T) {
		f := newFixture(t, "a", "b")

		rel, err := f.service.Add(ctx, "user-1", "a", models.CreateRelationshipRequest{
			RelatedFriendID:    "b",
			RelationshipTypeID: "parent_of",
			Notes:              "stepfather",
		})
		require.NoError(t, err)
		require.NotNil(t, rel)

		require.Len(t, f.repo.inserted, 1)
		forward := f.repo.inserted[0]
		assert.Equal(t, "a", forward.FriendID)
		assert.Equal(t, "b", forward.RelatedFriendID)
		assert.Equal(t, "parent_of", forward.RelationshipTypeID)
		assert.Equal(t, "stepfather", forward.Notes)

		require.Len(t, f.repo.insertedIgnored, 1)
		mirrored := f.repo.insertedIgnored[0]
		assert.Equal(t, "b", mirrored.FriendID)
		assert.Equal(t, "a", mirrored.RelatedFriendID)
		assert.Equal(t, "child_of", mirrored.RelationshipTypeID)
		assert.Equal(t, "stepfather", mirrored.Notes)
		assert.NotEqual(t, forward.ID, mirrored.ID)

		require.Equal(t, 1, f.db.beginCount)
		assert.True(t, f.db.tx.committed)
		assert.Equal(t, 1, f.cache.invalidations)
	})

	t.Run("symmetric type mirrors with the same type", func(t *testing.T) {
		f := newFixture(t, "a", "b")

		_, err := f.service.Add(ctx, "user-1", "a", models.CreateRelationshipRequest{
			RelatedFriendID:    "b",
			RelationshipTypeID: "friend_of",
		})
		require.NoError(t, err)

		require.Len(t, f.repo.insertedIgnored, 1)
		assert.Equal(t, "friend_of", f.repo.insertedIgnored[0].RelationshipTypeID)
	})

	t.Run("one-directional type writes only the forward edge", func(t *testing.T) {
		f := newFixture(t, "a", "b")

		_, err := f.service.Add(ctx, "user-1", "a", models.CreateRelationshipRequest{
			RelatedFriendID:    "b",
			RelationshipTypeID: "met_through",
		})
		require.NoError(t, err)

		assert.Len(t, f.repo.inserted, 1)
		assert.Empty(t, f.repo.insertedIgnored)
		assert.True(t, f.db.tx.committed)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the notes of one direction only", func(t *testing.T) {
		f := newFixture(t, "a", "b")
		f.repo.existing["rel-1"] = models.Relationship{
			ID:                 "rel-1",
			UserID:             "user-1",
			FriendID:           "a",
			RelatedFriendID:    "b",
			RelationshipTypeID: "parent_of",
		}

		rel, err := f.service.Update(ctx, "user-1", "a", "rel-1", models.UpdateRelationshipRequest{
			Notes: ptr("updated"),
		})
		require.NoError(t, err)
		require.NotNil(t, rel)
		assert.Equal(t, "updated", rel.Notes)
		assert.Equal(t, "updated", f.repo.updatedNotes["rel-1"])
	})

	t.Run("edge owned by another friend is treated as missing", func(t *testing.T) {
		f := newFixture(t, "a", "b")
		f.repo.existing["rel-1"] = models.Relationship{
			ID:       "rel-1",
			UserID:   "user-1",
			FriendID: "b",
		}

		rel, err := f.service.Update(ctx, "user-1", "a", "rel-1", models.UpdateRelationshipRequest{})
		require.NoError(t, err)
		assert.Nil(t, rel)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the edge and its value-matched inverse", func(t *testing.T) {
		f := newFixture(t, "a", "b")
		f.repo.existing["rel-1"] = models.Relationship{
			ID:                 "rel-1",
			UserID:             "user-1",
			FriendID:           "a",
			RelatedFriendID:    "b",
			RelationshipTypeID: "parent_of",
		}

		removed, err := f.service.Remove(ctx, "user-1", "a", "rel-1")
		require.NoError(t, err)
		require.NotNil(t, removed)
		assert.Equal(t, "rel-1", removed.ID)

		require.Len(t, f.repo.deletions, 2)
		assert.Equal(t, "rel-1", f.repo.deletions[0].byID)
		assert.Equal(t, [3]string{"b", "a", "child_of"}, f.repo.deletions[1].byValue)

		require.Equal(t, 1, f.db.beginCount)
		assert.True(t, f.db.tx.committed)
		assert.Equal(t, 1, f.cache.invalidations)
	})

	t.Run("one-directional edge removes only itself", func(t *testing.T) {
		f := newFixture(t, "a", "b")
		f.repo.existing["rel-1"] = models.Relationship{
			ID:                 "rel-1",
			UserID:             "user-1",
			FriendID:           "a",
			RelatedFriendID:    "b",
			RelationshipTypeID: "met_through",
		}

		removed, err := f.service.Remove(ctx, "user-1", "a", "rel-1")
		require.NoError(t, err)
		require.NotNil(t, removed)
		assert.Len(t, f.repo.deletions, 1)
	})

	t.Run("unknown edge returns nil", func(t *testing.T) {
		f := newFixture(t, "a", "b")

		removed, err := f.service.Remove(ctx, "user-1", "a", "rel-1")
		require.NoError(t, err)
		assert.Nil(t, removed)
		assert.Empty(t, f.repo.deletions)
		assert.Zero(t, f.cache.invalidations)
	})
}

func TestRemoveAllForFriend(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates the cache when edges were removed", func(t *testing.T) {
		f := newFixture(t, "a")
		f.repo.deleteAllCount = 3

		removed, err := f.service.RemoveAllForFriend(ctx, "user-1", "a")
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)
		assert.Equal(t, 1, f.cache.invalidations)
	})

	t.Run("leaves the cache alone when nothing was removed", func(t *testing.T) {
		f := newFixture(t, "a")

		removed, err := f.service.RemoveAllForFriend(ctx, "user-1", "a")
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.Zero(t, f.cache.invalidations)
	})
}

func TestListByFriend(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown friend returns 404", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ListByFriend(ctx, "user-1", "a")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
