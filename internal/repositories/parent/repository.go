package parent

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// Repository resolves sub-resource parents. Friends and collectives are both
// valid parents; a soft-deleted parent does not exist for this purpose, an
// archived one still does.
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

func (r *Repository) Exists(ctx context.Context, userID string, ref models.ParentRef) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ParentRepository.Exists")
	defer span.End()

	var table string
	switch ref.Kind {
	case models.ParentKindFriend:
		table = "friends"
	case models.ParentKindCollective:
		table = "collectives"
	default:
		return false, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown parent kind: %s", ref.Kind)
	}

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)
	sb.Where(
		sb.Equal("id", ref.ID),
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var count int
	if err := database.FromContext(ctx, r.db).GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_kind": ref.Kind,
			"parent_id":   ref.ID,
			"user_id":     userID,
		}).Error("failed to resolve parent")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to resolve parent: %s", err.Error())
	}

	return count > 0, nil
}
