package contactfield

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctxutil "github.com/datenknoten/freundebuch/pkg/context"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/subresource"
)

type memoryStore struct {
	items map[string]models.PhoneNumber
	order []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: map[string]models.PhoneNumber{}}
}

func (s *memoryStore) List(ctx context.Context, userID string, parent models.ParentRef) ([]models.PhoneNumber, error) {
	var out []models.PhoneNumber
	for _, id := range s.order {
		item := s.items[id]
		if item.UserID == userID && item.ParentKind == parent.Kind && item.ParentID == parent.ID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memoryStore) GetByID(ctx context.Context, userID string, parent models.ParentRef, id string) (*models.PhoneNumber, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID || item.ParentKind != parent.Kind || item.ParentID != parent.ID {
		return nil, nil
	}
	return &item, nil
}

func (s *memoryStore) Insert(ctx context.Context, item *models.PhoneNumber) error {
	s.items[item.ID] = *item
	s.order = append(s.order, item.ID)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, item *models.PhoneNumber) error {
	s.items[item.ID] = *item
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, userID string, parent models.ParentRef, id string) (bool, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *memoryStore) ClearPrimary(ctx context.Context, userID string, parent models.ParentRef, exceptID string) error {
	for id, item := range s.items {
		if id == exceptID || item.ParentID != parent.ID {
			continue
		}
		item.IsPrimary = false
		s.items[id] = item
	}
	return nil
}

type allowAllParents struct{}

func (allowAllParents) Exists(ctx context.Context, userID string, ref models.ParentRef) (bool, error) {
	return true, nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestHandler(store *memoryStore) *Handler[models.PhoneNumber, models.CreatePhoneNumberRequest, models.UpdatePhoneNumberRequest] {
	manager := subresource.NewManager(subresource.Config[models.PhoneNumber]{
		Category: "phone_number",
		Store:    store,
		Parents:  allowAllParents{},
		Logger:   noopLogger(),
		ID:       func(i *models.PhoneNumber) string { return i.ID },
	})
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreatePhoneNumberRequest) *models.PhoneNumber {
			now := time.Now().UTC()
			return &models.PhoneNumber{
				ID:         uuid.New().String(),
				UserID:     userID,
				ParentKind: parent.Kind,
				ParentID:   parent.ID,
				Number:     req.Number,
				Label:      req.Label,
				IsPrimary:  req.IsPrimary,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		},
		func(item *models.PhoneNumber, req *models.UpdatePhoneNumberRequest) {
			if req.Number != nil {
				item.Number = *req.Number
			}
			if req.Label != nil {
				item.Label = *req.Label
			}
			if req.IsPrimary != nil {
				item.IsPrimary = *req.IsPrimary
			}
		},
	)
}

func request(t *testing.T, method string, target string, body string, userID string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req = req.WithContext(ctxutil.SetUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return c, rec
}

func TestCreate(t *testing.T) {
	t.Run("creates a phone number under a friend", func(t *testing.T) {
		store := newMemoryStore()
		handler := newTestHandler(store)

		c, rec := request(t, http.MethodPost, "/", `{"number": "555-0100", "label": "mobile"}`, "user-1",
			map[string]string{"friendId": "friend-1"})

		require.NoError(t, handler.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.PhoneNumber
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "555-0100", created.Number)
		assert.Equal(t, models.ParentKindFriend, created.ParentKind)
		assert.Equal(t, "friend-1", created.ParentID)
		assert.Len(t, store.items, 1)
	})

	t.Run("missing user id is a 401", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore())

		c, _ := request(t, http.MethodPost, "/", `{"number": "555-0100"}`, "",
			map[string]string{"friendId": "friend-1"})

		err := handler.Create(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, httperror.GetStatusCode(err))
	})

	t.Run("missing parent param is a 400", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore())

		c, _ := request(t, http.MethodPost, "/", `{"number": "555-0100"}`, "user-1", nil)

		err := handler.Create(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("validation failure is a 400", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore())

		c, _ := request(t, http.MethodPost, "/", `{"label": "missing the number"}`, "user-1",
			map[string]string{"friendId": "friend-1"})

		err := handler.Create(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})
}

func TestList(t *testing.T) {
	t.Run("empty list serializes as an empty array", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore())

		c, rec := request(t, http.MethodGet, "/", "", "user-1",
			map[string]string{"friendId": "friend-1"})

		require.NoError(t, handler.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items": []}`, rec.Body.String())
	})

	t.Run("lists only the parent's items", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.Insert(context.Background(), &models.PhoneNumber{
			ID: "p1", UserID: "user-1", ParentKind: models.ParentKindFriend, ParentID: "friend-1", Number: "555-0100",
		}))
		require.NoError(t, store.Insert(context.Background(), &models.PhoneNumber{
			ID: "p2", UserID: "user-1", ParentKind: models.ParentKindFriend, ParentID: "friend-2", Number: "555-0101",
		}))
		handler := newTestHandler(store)

		c, rec := request(t, http.MethodGet, "/", "", "user-1",
			map[string]string{"friendId": "friend-1"})

		require.NoError(t, handler.List(c))

		var body struct {
			Items []models.PhoneNumber `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Items, 1)
		assert.Equal(t, "p1", body.Items[0].ID)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies only the provided fields", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.Insert(context.Background(), &models.PhoneNumber{
			ID: "p1", UserID: "user-1", ParentKind: models.ParentKindFriend, ParentID: "friend-1",
			Number: "555-0100", Label: "mobile",
		}))
		handler := newTestHandler(store)

		c, rec := request(t, http.MethodPut, "/", `{"label": "work"}`, "user-1",
			map[string]string{"friendId": "friend-1", "id": "p1"})

		require.NoError(t, handler.Update(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "555-0100", store.items["p1"].Number)
		assert.Equal(t, "work", store.items["p1"].Label)
	})

	t.Run("unknown item is a 404", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore())

		c, _ := request(t, http.MethodPut, "/", `{"label": "work"}`, "user-1",
			map[string]string{"friendId": "friend-1", "id": "missing"})

		err := handler.Update(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("removes the item", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.Insert(context.Background(), &models.PhoneNumber{
			ID: "p1", UserID: "user-1", ParentKind: models.ParentKindFriend, ParentID: "friend-1",
		}))
		handler := newTestHandler(store)

		c, rec := request(t, http.MethodDelete, "/", "", "user-1",
			map[string]string{"friendId": "friend-1", "id": "p1"})

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, store.items)
	})

	t.Run("unknown item is a 404", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore())

		c, _ := request(t, http.MethodDelete, "/", "", "user-1",
			map[string]string{"friendId": "friend-1", "id": "missing"})

		err := handler.Delete(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
