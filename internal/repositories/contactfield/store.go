package contactfield

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// Store persists one contact sub-resource category. Every category shares the
// same envelope (id, user_id, parent_kind, parent_id, timestamps) so a single
// implementation parameterized over the row type and column set covers all of
// them. Writes go through database.FromContext and join any transaction the
// caller has open.
type Store[I any] struct {
	db      database.DB
	logger  ectologger.Logger
	table   string
	columns []string

	insertQuery string
	updateQuery string

	// primaryColumn is the boolean column cleared when another row becomes the
	// category's primary. Empty for categories without a primary concept.
	primaryColumn string
}

// NewStore builds a store for a category. columns is every persisted column in
// table order; mutable is the subset settable on update.
func NewStore[I any](db database.DB, logger ectologger.Logger, table string, columns []string, mutable []string, primaryColumn string) *Store[I] {
	return &Store[I]{
		db:            db,
		logger:        logger,
		table:         table,
		columns:       columns,
		insertQuery:   buildNamedInsert(table, columns),
		updateQuery:   buildNamedUpdate(table, mutable),
		primaryColumn: primaryColumn,
	}
}

func buildNamedInsert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func buildNamedUpdate(table string, mutable []string) string {
	assignments := make([]string, len(mutable))
	for i, c := range mutable {
		assignments[i] = fmt.Sprintf("%s = :%s", c, c)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND user_id = :user_id AND parent_kind = :parent_kind AND parent_id = :parent_id",
		table, strings.Join(assignments, ", "))
}

func (s *Store[I]) List(ctx context.Context, userID string, parent models.ParentRef) ([]I, error) {
	ctx, span := tracing.StartSpan(ctx, "ContactFieldStore.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(s.columns...)
	sb.From(s.table)
	sb.Where(
		sb.Equal("user_id", userID),
		sb.Equal("parent_kind", string(parent.Kind)),
		sb.Equal("parent_id", parent.ID),
	)
	sb.OrderBy("created_at ASC", "id ASC")

	query, args := sb.Build()

	var items []I
	if err := database.FromContext(ctx, s.db).SelectContext(ctx, &items, query, args...); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":       s.table,
			"user_id":     userID,
			"parent_kind": parent.Kind,
			"parent_id":   parent.ID,
		}).Error("failed to list contact fields")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list %s: %s", s.table, err.Error())
	}

	return items, nil
}

func (s *Store[I]) GetByID(ctx context.Context, userID string, parent models.ParentRef, id string) (*I, error) {
	ctx, span := tracing.StartSpan(ctx, "ContactFieldStore.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(s.columns...)
	sb.From(s.table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
		sb.Equal("parent_kind", string(parent.Kind)),
		sb.Equal("parent_id", parent.ID),
	)

	query, args := sb.Build()

	var item I
	err := database.FromContext(ctx, s.db).GetContext(ctx, &item, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":   s.table,
			"id":      id,
			"user_id": userID,
		}).Error("failed to get contact field")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get %s: %s", s.table, err.Error())
	}

	return &item, nil
}

func (s *Store[I]) Insert(ctx context.Context, item *I) error {
	ctx, span := tracing.StartSpan(ctx, "ContactFieldStore.Insert")
	defer span.End()

	if _, err := database.FromContext(ctx, s.db).NamedExecContext(ctx, s.insertQuery, item); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": s.table,
		}).Error("failed to insert contact field")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert %s: %s", s.table, err.Error())
	}

	return nil
}

func (s *Store[I]) Update(ctx context.Context, item *I) error {
	ctx, span := tracing.StartSpan(ctx, "ContactFieldStore.Update")
	defer span.End()

	if _, err := database.FromContext(ctx, s.db).NamedExecContext(ctx, s.updateQuery, item); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": s.table,
		}).Error("failed to update contact field")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update %s: %s", s.table, err.Error())
	}

	return nil
}

func (s *Store[I]) Delete(ctx context.Context, userID string, parent models.ParentRef, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ContactFieldStore.Delete")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(s.table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
		sb.Equal("parent_kind", string(parent.Kind)),
		sb.Equal("parent_id", parent.ID),
	)

	query, args := sb.Build()

	result, err := database.FromContext(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":   s.table,
			"id":      id,
			"user_id": userID,
		}).Error("failed to delete contact field")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete %s: %s", s.table, err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// ClearPrimary unsets the category's primary flag on every row of the parent
// except exceptID. A no-op for categories without a primary column. Meant to
// run inside the caller's transaction, immediately before the write that sets
// a new primary.
func (s *Store[I]) ClearPrimary(ctx context.Context, userID string, parent models.ParentRef, exceptID string) error {
	if s.primaryColumn == "" {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "ContactFieldStore.ClearPrimary")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update(s.table)
	sb.Set(sb.Assign(s.primaryColumn, false))
	sb.Where(
		sb.Equal("user_id", userID),
		sb.Equal("parent_kind", string(parent.Kind)),
		sb.Equal("parent_id", parent.ID),
		sb.NotEqual("id", exceptID),
		sb.Equal(s.primaryColumn, true),
	)

	query, args := sb.Build()

	if _, err := database.FromContext(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":       s.table,
			"user_id":     userID,
			"parent_kind": parent.Kind,
			"parent_id":   parent.ID,
		}).Error("failed to clear primary flag")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to clear primary flag on %s: %s", s.table, err.Error())
	}

	return nil
}
