package friend

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

const tableName = "friends"

var columns = []string{"id", "user_id", "first_name", "last_name", "nickname", "description", "archived", "created_at", "updated_at", "deleted_at"}

// FriendRepository defines the interface for friend persistence
type FriendRepository interface {
	Create(ctx context.Context, userID string, req models.CreateFriendRequest) (*models.Friend, error)
	GetByID(ctx context.Context, userID string, id string) (*models.Friend, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Friend, int, error)
	ListActive(ctx context.Context, userID string) ([]models.Friend, error)
	Update(ctx context.Context, userID string, id string, req models.UpdateFriendRequest) (*models.Friend, error)
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

func (r *Repository) Create(ctx context.Context, userID string, req models.CreateFriendRequest) (*models.Friend, error) {
	ctx, span := tracing.StartSpan(ctx, "FriendRepository.Create")
	defer span.End()

	now := time.Now().UTC()
	id := uuid.New().String()

	sb := database.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "user_id", "first_name", "last_name", "nickname", "description", "archived", "created_at", "updated_at")
	sb.Values(id, userID, req.FirstName, req.LastName, req.Nickname, req.Description, false, now, now)

	query, args := sb.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to create friend")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create friend: %s", err.Error())
	}

	return r.GetByID(ctx, userID, id)
}

func (r *Repository) GetByID(ctx context.Context, userID string, id string) (*models.Friend, error) {
	ctx, span := tracing.StartSpan(ctx, "FriendRepository.GetByID")
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

	var f models.Friend
	err := r.db.GetContext(ctx, &f, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to get friend by ID")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get friend: %s", err.Error())
	}

	return &f, nil
}

func (r *Repository) List(ctx context.Context, userID string, page, pageSize int) ([]models.Friend, int, error) {
	ctx, span := tracing.StartSpan(ctx, "FriendRepository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count friends")
		return nil, 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to count friends: %s", err.Error())
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("first_name ASC", "last_name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Friend
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"page":      page,
			"page_size": pageSize,
		}).Error("failed to list friends")
		return nil, 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list friends: %s", err.Error())
	}

	return items, totalCount, nil
}

// ListActive returns every friend that should appear in the network
// projection: not deleted and not archived.
func (r *Repository) ListActive(ctx context.Context, userID string) ([]models.Friend, error) {
	ctx, span := tracing.StartSpan(ctx, "FriendRepository.ListActive")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("user_id", userID),
		sb.Equal("archived", false),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("first_name ASC", "last_name ASC")

	query, args := sb.Build()

	var items []models.Friend
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
		}).Error("failed to list active friends")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list active friends: %s", err.Error())
	}

	return items, nil
}

func (r *Repository) Update(ctx context.Context, userID string, id string, req models.UpdateFriendRequest) (*models.Friend, error) {
	ctx, span := tracing.StartSpan(ctx, "FriendRepository.Update")
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

	if req.FirstName != nil {
		sb.SetMore(sb.Assign("first_name", *req.FirstName))
	}
	if req.LastName != nil {
		sb.SetMore(sb.Assign("last_name", *req.LastName))
	}
	if req.Nickname != nil {
		sb.SetMore(sb.Assign("nickname", *req.Nickname))
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
		}).Error("failed to update friend")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update friend: %s", err.Error())
	}

	return r.GetByID(ctx, userID, id)
}

// Delete soft deletes a friend. Relationships that point at the friend are
// removed by the relationships service before this is called.
func (r *Repository) Delete(ctx context.Context, userID string, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "FriendRepository.Delete")
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

	result, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to delete friend")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete friend: %s", err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
