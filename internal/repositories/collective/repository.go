package collective

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

const tableName = "collectives"

var columns = []string{"id", "user_id", "name", "kind", "description", "archived", "created_at", "updated_at", "deleted_at"}

// CollectiveRepository defines the interface for collective persistence
type CollectiveRepository interface {
	Create(ctx context.Context, userID string, req models.CreateCollectiveRequest) (*models.Collective, error)
	GetByID(ctx context.Context, userID string, id string) (*models.Collective, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Collective, int, error)
	Update(ctx context.Context, userID string, id string, req models.UpdateCollectiveRequest) (*models.Collective, error)
	Delete(ctx context.Context, userID string, id string) (bool, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Create(ctx context.Context, userID string, req models.CreateCollectiveRequest) (*models.Collective, error) {
	ctx, span := tracing.StartSpan(ctx, "CollectiveRepository.Create")
	defer span.End()

	now := time.Now().UTC()
	id := uuid.New().String()

	sb := database.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "user_id", "name", "kind", "description", "archived", "created_at", "updated_at")
	sb.Values(id, userID, req.Name, req.Kind, req.Description, false, now, now)

	query, args := sb.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to create collective")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create collective: %s", err.Error())
	}

	return r.GetByID(ctx, userID, id)
}

func (r *Repository) GetByID(ctx context.Context, userID string, id string) (*models.Collective, error) {
	ctx, span := tracing.StartSpan(ctx, "CollectiveRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var c models.Collective
	err := r.db.GetContext(ctx, &c, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to get collective by ID")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get collective: %s", err.Error())
	}

	return &c, nil
}

func (r *Repository) List(ctx context.Context, userID string, page, pageSize int) ([]models.Collective, int, error) {
	ctx, span := tracing.StartSpan(ctx, "CollectiveRepository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	countSb.Where(
		countSb.Equal("user_id", userID),
		countSb.IsNull("deleted_at"),
	)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count collectives")
		return nil, 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to count collectives: %s", err.Error())
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Collective
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"page":      page,
			"page_size": pageSize,
		}).Error("failed to list collectives")
		return nil, 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list collectives: %s", err.Error())
	}

	return items, totalCount, nil
}

func (r *Repository) Update(ctx context.Context, userID string, id string, req models.UpdateCollectiveRequest) (*models.Collective, error) {
	ctx, span := tracing.StartSpan(ctx, "CollectiveRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	sb := database.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now().UTC()))

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.Kind != nil {
		sb.SetMore(sb.Assign("kind", *req.Kind))
	}
	if req.Description != nil {
		sb.SetMore(sb.Assign("description", *req.Description))
	}
	if req.Archived != nil {
		sb.SetMore(sb.Assign("archived", *req.Archived))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to update collective")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update collective: %s", err.Error())
	}

	return r.GetByID(ctx, userID, id)
}

func (r *Repository) Delete(ctx context.Context, userID string, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "CollectiveRepository.Delete")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("deleted_at", time.Now().UTC()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to delete collective")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete collective: %s", err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
