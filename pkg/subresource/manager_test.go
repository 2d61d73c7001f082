package subresource

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datenknoten/freundebuch/pkg/database"
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

type fakeStore struct {
	items   map[string]models.PhoneNumber
	calls   []string
	deleted bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]models.PhoneNumber{}, deleted: true}
}

func (s *fakeStore) List(ctx context.Context, userID string, parent models.ParentRef) ([]models.PhoneNumber, error) {
	s.calls = append(s.calls, "list")
	out := make([]models.PhoneNumber, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, userID string, parent models.ParentRef, id string) (*models.PhoneNumber, error) {
	s.calls = append(s.calls, "get")
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *fakeStore) Insert(ctx context.Context, item *models.PhoneNumber) error {
	s.calls = append(s.calls, "insert")
	s.items[item.ID] = *item
	return nil
}

func (s *fakeStore) Update(ctx context.Context, item *models.PhoneNumber) error {
	s.calls = append(s.calls, "update")
	s.items[item.ID] = *item
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, userID string, parent models.ParentRef, id string) (bool, error) {
	s.calls = append(s.calls, "delete")
	return s.deleted, nil
}

func (s *fakeStore) ClearPrimary(ctx context.Context, userID string, parent models.ParentRef, exceptID string) error {
	s.calls = append(s.calls, "clear_primary")
	for id, item := range s.items {
		if id == exceptID {
			continue
		}
		item.IsPrimary = false
		s.items[id] = item
	}
	return nil
}

type fakeParents struct {
	exists bool
}

func (p *fakeParents) Exists(ctx context.Context, userID string, ref models.ParentRef) (bool, error) {
	return p.exists, nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

func newTestManager(store *fakeStore, parents *fakeParents, db *fakeDB) *Manager[models.PhoneNumber] {
	return NewManager(Config[models.PhoneNumber]{
		Category: "phone_number",
		DB:       db,
		Store:    store,
		Parents:  parents,
		Logger:   noopLogger(),
		ID:       func(i *models.PhoneNumber) string { return i.ID },
		IsPrimary: func(i *models.PhoneNumber) bool {
			return i.IsPrimary
		},
	})
}

var testParent = models.ParentRef{Kind: models.ParentKindFriend, ID: "friend-1"}

func TestManagerCreate(t *testing.T) {
	t.Run("missing parent returns 404", func(t *testing.T) {
		store := newFakeStore()
		manager := newTestManager(store, &fakeParents{exists: false}, &fakeDB{})

		_, err := manager.Create(context.Background(), "user-1", testParent, &models.PhoneNumber{ID: "p1"})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
		assert.Empty(t, store.calls)
	})

	t.Run("non-primary item skips the transaction", func(t *testing.T) {
		store := newFakeStore()
		db := &fakeDB{}
		manager := newTestManager(store, &fakeParents{exists: true}, db)

		item := &models.PhoneNumber{ID: "p1", Number: "555-0100"}
		result, err := manager.Create(context.Background(), "user-1", testParent, item)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, []string{"insert"}, store.calls)
		assert.Equal(t, 0, db.beginCount)
	})

	t.Run("primary item clears siblings before the write", func(t *testing.T) {
		store := newFakeStore()
		store.items["p0"] = models.PhoneNumber{ID: "p0", IsPrimary: true}
		db := &fakeDB{}
		manager := newTestManager(store, &fakeParents{exists: true}, db)

		item := &models.PhoneNumber{ID: "p1", Number: "555-0100", IsPrimary: true}
		_, err := manager.Create(context.Background(), "user-1", testParent, item)
		require.NoError(t, err)

		assert.Equal(t, []string{"clear_primary", "insert"}, store.calls)
		require.Equal(t, 1, db.beginCount)
		assert.True(t, db.tx.committed)
		assert.False(t, db.tx.rolledBack)

		// the old primary lost its flag, the new one keeps it
		assert.False(t, store.items["p0"].IsPrimary)
		assert.True(t, store.items["p1"].IsPrimary)
	})
}

func TestManagerUpdate(t *testing.T) {
	t.Run("promoting an item to primary swaps the flag transactionally", func(t *testing.T) {
		store := newFakeStore()
		store.items["p0"] = models.PhoneNumber{ID: "p0", IsPrimary: true}
		store.items["p1"] = models.PhoneNumber{ID: "p1"}
		db := &fakeDB{}
		manager := newTestManager(store, &fakeParents{exists: true}, db)

		item := &models.PhoneNumber{ID: "p1", IsPrimary: true}
		_, err := manager.Update(context.Background(), "user-1", testParent, item)
		require.NoError(t, err)

		assert.Equal(t, []string{"clear_primary", "update"}, store.calls)
		require.Equal(t, 1, db.beginCount)
		assert.True(t, db.tx.committed)
		assert.False(t, store.items["p0"].IsPrimary)
		assert.True(t, store.items["p1"].IsPrimary)
	})

	t.Run("demoting an item never touches siblings", func(t *testing.T) {
		store := newFakeStore()
		store.items["p1"] = models.PhoneNumber{ID: "p1", IsPrimary: true}
		db := &fakeDB{}
		manager := newTestManager(store, &fakeParents{exists: true}, db)

		item := &models.PhoneNumber{ID: "p1", IsPrimary: false}
		_, err := manager.Update(context.Background(), "user-1", testParent, item)
		require.NoError(t, err)

		assert.Equal(t, []string{"update"}, store.calls)
		assert.Equal(t, 0, db.beginCount)
	})
}

func TestManagerDelete(t *testing.T) {
	t.Run("missing parent returns 404", func(t *testing.T) {
		store := newFakeStore()
		manager := newTestManager(store, &fakeParents{exists: false}, &fakeDB{})

		_, err := manager.Delete(context.Background(), "user-1", testParent, "p1")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})

	t.Run("reports whether a row was removed", func(t *testing.T) {
		store := newFakeStore()
		store.deleted = false
		manager := newTestManager(store, &fakeParents{exists: true}, &fakeDB{})

		deleted, err := manager.Delete(context.Background(), "user-1", testParent, "p1")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestManagerWithoutPrimaryConcept(t *testing.T) {
	store := newFakeStore()
	db := &fakeDB{}
	manager := NewManager(Config[models.PhoneNumber]{
		Category: "url",
		DB:       db,
		Store:    store,
		Parents:  &fakeParents{exists: true},
		Logger:   noopLogger(),
		ID:       func(i *models.PhoneNumber) string { return i.ID },
	})

	// IsPrimary is nil, so even a flagged item goes straight through
	item := &models.PhoneNumber{ID: "p1", IsPrimary: true}
	_, err := manager.Create(context.Background(), "user-1", testParent, item)
	require.NoError(t, err)
	assert.Equal(t, []string{"insert"}, store.calls)
	assert.Equal(t, 0, db.beginCount)
}
