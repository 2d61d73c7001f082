package relationship

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

const tableName = "relationships"

const uniqueViolation = pq.ErrorCode("23505")

var columns = []string{"id", "user_id", "friend_id", "related_friend_id", "relationship_type_id", "notes", "created_at", "updated_at"}

// joinedColumns adds related-friend display fields and type metadata for
// list responses.
var joinedColumns = []string{
	"r.id", "r.user_id", "r.friend_id", "r.related_friend_id", "r.relationship_type_id", "r.notes", "r.created_at", "r.updated_at",
	"f.first_name AS related_first_name",
	"f.last_name AS related_last_name",
	"f.nickname AS related_nickname",
	"rt.label AS type_label",
	"rt.category AS type_category",
}

// RelationshipRepository defines the persistence surface for friend edges.
// Every query runs through database.FromContext so the relationships service
// can pair forward and inverse writes in one transaction and read back its
// own uncommitted rows.
type RelationshipRepository interface {
	Insert(ctx context.Context, rel *models.Relationship) error
	InsertIgnoreDuplicate(ctx context.Context, rel *models.Relationship) error
	GetByID(ctx context.Context, userID string, id string) (*models.Relationship, error)
	ListByFriend(ctx context.Context, userID string, friendID string) ([]models.Relationship, error)
	ListByUser(ctx context.Context, userID string) ([]models.Relationship, error)
	UpdateNotes(ctx context.Context, userID string, id string, notes string) (bool, error)
	DeleteByID(ctx context.Context, userID string, id string) (bool, error)
	DeleteByValue(ctx context.Context, userID string, friendID string, relatedFriendID string, typeID string) (bool, error)
	DeleteAllForFriend(ctx context.Context, userID string, friendID string) (int64, error)
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

// Insert writes a single edge. A duplicate of (user, friend, related friend,
// type) surfaces as a 409.
func (r *Repository) Insert(ctx context.Context, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.Insert")
	defer span.End()

	sb := database.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(rel.ID, rel.UserID, rel.FriendID, rel.RelatedFriendID, rel.RelationshipTypeID, rel.Notes, rel.CreatedAt, rel.UpdatedAt)

	query, args := sb.Build()

	if _, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return httperror.NewHTTPError(http.StatusConflict, "relationship already exists")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        rel.ID,
			"user_id":   rel.UserID,
			"friend_id": rel.FriendID,
		}).Error("failed to insert relationship")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert relationship: %s", err.Error())
	}

	return nil
}

// InsertIgnoreDuplicate writes an edge and silently skips rows that already
// exist. Used for the inverse half of a pair, which may legitimately be
// present already.
func (r *Repository) InsertIgnoreDuplicate(ctx context.Context, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.InsertIgnoreDuplicate")
	defer span.End()

	sb := database.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(rel.ID, rel.UserID, rel.FriendID, rel.RelatedFriendID, rel.RelationshipTypeID, rel.Notes, rel.CreatedAt, rel.UpdatedAt)
	sb.OnConflictDoNothing()

	query, args := sb.Build()

	if _, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        rel.ID,
			"user_id":   rel.UserID,
			"friend_id": rel.FriendID,
		}).Error("failed to insert inverse relationship")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert inverse relationship: %s", err.Error())
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID string, id string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
	)

	query, args := sb.Build()

	var rel models.Relationship
	err := database.FromContext(ctx, r.db).GetContext(ctx, &rel, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to get relationship")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get relationship: %s", err.Error())
	}

	return &rel, nil
}

func (r *Repository) ListByFriend(ctx context.Context, userID string, friendID string) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.ListByFriend")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(joinedColumns...)
	sb.From(tableName + " r")
	sb.Join("friends f", "f.id = r.related_friend_id")
	sb.Join("relationship_types rt", "rt.id = r.relationship_type_id")
	sb.Where(
		sb.Equal("r.user_id", userID),
		sb.Equal("r.friend_id", friendID),
	)
	sb.OrderBy("rt.category ASC", "rt.label ASC", "f.first_name ASC")

	query, args := sb.Build()

	var items []models.Relationship
	if err := database.FromContext(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"friend_id": friendID,
		}).Error("failed to list relationships for friend")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list relationships: %s", err.Error())
	}

	return items, nil
}

// ListByUser returns every edge the user owns, with type metadata joined in.
// Feeds the network projection.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.ListByUser")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(joinedColumns...)
	sb.From(tableName + " r")
	sb.Join("friends f", "f.id = r.related_friend_id")
	sb.Join("relationship_types rt", "rt.id = r.relationship_type_id")
	sb.Where(
		sb.Equal("r.user_id", userID),
	)
	sb.OrderBy("r.created_at ASC")

	query, args := sb.Build()

	var items []models.Relationship
	if err := database.FromContext(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
		}).Error("failed to list relationships for user")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list relationships: %s", err.Error())
	}

	return items, nil
}

func (r *Repository) UpdateNotes(ctx context.Context, userID string, id string, notes string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.UpdateNotes")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("notes", notes))
	sb.SetMore(sb.Assign("updated_at", time.Now().UTC()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
	)

	query, args := sb.Build()

	result, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to update relationship notes")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update relationship: %s", err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

func (r *Repository) DeleteByID(ctx context.Context, userID string, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.DeleteByID")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
	)

	query, args := sb.Build()

	result, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":      id,
			"user_id": userID,
		}).Error("failed to delete relationship")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete relationship: %s", err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// DeleteByValue removes the edge matching the full value triple. The inverse
// half of a pair has its own row id, so it is found by value, not by id.
func (r *Repository) DeleteByValue(ctx context.Context, userID string, friendID string, relatedFriendID string, typeID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.DeleteByValue")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("user_id", userID),
		sb.Equal("friend_id", friendID),
		sb.Equal("related_friend_id", relatedFriendID),
		sb.Equal("relationship_type_id", typeID),
	)

	query, args := sb.Build()

	result, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":           userID,
			"friend_id":         friendID,
			"related_friend_id": relatedFriendID,
		}).Error("failed to delete inverse relationship")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete inverse relationship: %s", err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// DeleteAllForFriend removes every edge touching the friend, in either
// direction. Called when a friend is deleted.
func (r *Repository) DeleteAllForFriend(ctx context.Context, userID string, friendID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.DeleteAllForFriend")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("user_id", userID),
		sb.Or(
			sb.Equal("friend_id", friendID),
			sb.Equal("related_friend_id", friendID),
		),
	)

	query, args := sb.Build()

	result, err := database.FromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"friend_id": friendID,
		}).Error("failed to delete relationships for friend")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete relationships: %s", err.Error())
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}
