package subresource

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// Store persists one sub-resource category.
type Store[I any] interface {
	List(ctx context.Context, userID string, parent models.ParentRef) ([]I, error)
	GetByID(ctx context.Context, userID string, parent models.ParentRef, id string) (*I, error)
	Insert(ctx context.Context, item *I) error
	Update(ctx context.Context, item *I) error
	Delete(ctx context.Context, userID string, parent models.ParentRef, id string) (bool, error)

	// ClearPrimary unsets the primary flag on every other row of the parent.
	// Categories without a primary concept implement it as a no-op.
	ClearPrimary(ctx context.Context, userID string, parent models.ParentRef, exceptID string) error
}

// ParentResolver checks that a sub-resource parent exists for the user.
type ParentResolver interface {
	Exists(ctx context.Context, userID string, ref models.ParentRef) (bool, error)
}

// Config wires one category's manager.
type Config[I any] struct {
	Category string
	DB       database.DB
	Store    Store[I]
	Parents  ParentResolver
	Emitter  *events.Emitter
	Logger   ectologger.Logger

	// ID extracts the item's id.
	ID func(*I) string

	// IsPrimary reports whether the item claims the parent's primary slot.
	// Nil for categories without a primary concept.
	IsPrimary func(*I) bool
}

// Manager runs the lifecycle of one contact sub-resource category. All
// categories share the same rules: items live under a friend or collective of
// the requesting user, and at most one item per parent holds the primary
// flag. Claiming the flag clears it from every sibling first, inside the same
// transaction as the write.
type Manager[I any] struct {
	cfg Config[I]
}

func NewManager[I any](cfg Config[I]) *Manager[I] {
	return &Manager[I]{cfg: cfg}
}

func (m *Manager[I]) resolveParent(ctx context.Context, userID string, parent models.ParentRef) error {
	exists, err := m.cfg.Parents.Exists(ctx, userID, parent)
	if err != nil {
		return err
	}
	if !exists {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "%s not found", parent.Kind)
	}
	return nil
}

func (m *Manager[I]) List(ctx context.Context, userID string, parent models.ParentRef) ([]I, error) {
	ctx, span := tracing.StartSpan(ctx, "subresource.Manager.List")
	defer span.End()

	if err := m.resolveParent(ctx, userID, parent); err != nil {
		return nil, err
	}

	return m.cfg.Store.List(ctx, userID, parent)
}

func (m *Manager[I]) Get(ctx context.Context, userID string, parent models.ParentRef, id string) (*I, error) {
	ctx, span := tracing.StartSpan(ctx, "subresource.Manager.Get")
	defer span.End()

	return m.cfg.Store.GetByID(ctx, userID, parent, id)
}

func (m *Manager[I]) Create(ctx context.Context, userID string, parent models.ParentRef, item *I) (*I, error) {
	ctx, span := tracing.StartSpan(ctx, "subresource.Manager.Create")
	defer span.End()

	if err := m.resolveParent(ctx, userID, parent); err != nil {
		return nil, err
	}

	if err := m.write(ctx, userID, parent, item, m.cfg.Store.Insert); err != nil {
		return nil, err
	}

	m.cfg.Emitter.Emit(ctx, events.TypeContactFieldCreated, userID, m.eventPayload(parent, item))
	return item, nil
}

func (m *Manager[I]) Update(ctx context.Context, userID string, parent models.ParentRef, item *I) (*I, error) {
	ctx, span := tracing.StartSpan(ctx, "subresource.Manager.Update")
	defer span.End()

	if err := m.resolveParent(ctx, userID, parent); err != nil {
		return nil, err
	}

	if err := m.write(ctx, userID, parent, item, m.cfg.Store.Update); err != nil {
		return nil, err
	}

	m.cfg.Emitter.Emit(ctx, events.TypeContactFieldUpdated, userID, m.eventPayload(parent, item))
	return item, nil
}

// write persists the item. When the item claims the primary slot, the
// sibling flags are cleared and the write lands in the same transaction, so
// no reader ever observes two primaries.
func (m *Manager[I]) write(ctx context.Context, userID string, parent models.ParentRef, item *I, persist func(context.Context, *I) error) error {
	if m.cfg.IsPrimary == nil || !m.cfg.IsPrimary(item) {
		return persist(ctx, item)
	}

	ctx, tx, err := m.cfg.DB.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := m.cfg.Store.ClearPrimary(ctx, userID, parent, m.cfg.ID(item)); err != nil {
		return err
	}
	if err := persist(ctx, item); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		m.cfg.Logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"category":    m.cfg.Category,
			"user_id":     userID,
			"parent_kind": parent.Kind,
			"parent_id":   parent.ID,
		}).Error("failed to commit primary swap")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	return nil
}

func (m *Manager[I]) Delete(ctx context.Context, userID string, parent models.ParentRef, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "subresource.Manager.Delete")
	defer span.End()

	if err := m.resolveParent(ctx, userID, parent); err != nil {
		return false, err
	}

	deleted, err := m.cfg.Store.Delete(ctx, userID, parent, id)
	if err != nil {
		return false, err
	}

	if deleted {
		m.cfg.Emitter.Emit(ctx, events.TypeContactFieldDeleted, userID, map[string]any{
			"category":   m.cfg.Category,
			"id":         id,
			"parentKind": parent.Kind,
			"parentId":   parent.ID,
		})
	}

	return deleted, nil
}

func (m *Manager[I]) eventPayload(parent models.ParentRef, item *I) map[string]any {
	return map[string]any{
		"category":   m.cfg.Category,
		"id":         m.cfg.ID(item),
		"parentKind": parent.Kind,
		"parentId":   parent.ID,
	}
}
