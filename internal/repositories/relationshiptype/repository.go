package relationshiptype

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

const tableName = "relationship_types"

// Repository reads the relationship type catalog. The catalog is seeded by
// migration and global to all users, so there is no user scoping and no write
// path here.
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

func (r *Repository) List(ctx context.Context) ([]models.RelationshipType, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipTypeRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id", "category", "label", "inverse_type_id")
	sb.From(tableName)
	sb.OrderBy("category ASC", "label ASC")

	query, args := sb.Build()

	var items []models.RelationshipType
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list relationship types")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list relationship types: %s", err.Error())
	}

	return items, nil
}
