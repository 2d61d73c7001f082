package relationships

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/datenknoten/freundebuch/internal/repositories/relationship"
	"github.com/datenknoten/freundebuch/pkg/catalog"
	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// FriendResolver checks that a friend exists for the user.
type FriendResolver interface {
	GetByID(ctx context.Context, userID string, id string) (*models.Friend, error)
}

// CacheInvalidator drops cached network projections after edges change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Service keeps friend-to-friend edges bidirectionally consistent. Whenever a
// relationship's type has an inverse, the forward and inverse rows are written
// and removed together in one transaction, so the pair can never half-exist.
type Service struct {
	db      database.DB
	repo    relationship.RelationshipRepository
	friends FriendResolver
	catalog *catalog.Catalog
	emitter *events.Emitter
	cache   CacheInvalidator
	logger  ectologger.Logger
}

func NewService(
	db database.DB,
	repo relationship.RelationshipRepository,
	friends FriendResolver,
	cat *catalog.Catalog,
	emitter *events.Emitter,
	cache CacheInvalidator,
	logger ectologger.Logger,
) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		friends: friends,
		catalog: cat,
		emitter: emitter,
		cache:   cache,
		logger:  logger,
	}
}

// Add creates the edge and, when the type has an inverse, its mirrored
// counterpart. The forward insert is strict and surfaces duplicates as a 409;
// the inverse insert tolerates an already-present row.
func (s *Service) Add(ctx context.Context, userID string, friendID string, req models.CreateRelationshipRequest) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Add")
	defer span.End()

	if friendID == req.RelatedFriendID {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "cannot relate a friend to themselves")
	}

	relType, ok := s.catalog.Get(req.RelationshipTypeID)
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown relationship type: %s", req.RelationshipTypeID)
	}

	if err := s.resolveFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}
	if err := s.resolveFriend(ctx, userID, req.RelatedFriendID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	forward := &models.Relationship{
		ID:                 uuid.New().String(),
		UserID:             userID,
		FriendID:           friendID,
		RelatedFriendID:    req.RelatedFriendID,
		RelationshipTypeID: relType.ID,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := s.repo.Insert(ctx, forward); err != nil {
		return nil, err
	}

	inverse, _ := s.catalog.Inverse(relType.ID)
	if inverse != nil {
		mirrored := &models.Relationship{
			ID:                 uuid.New().String(),
			UserID:             userID,
			FriendID:           req.RelatedFriendID,
			RelatedFriendID:    friendID,
			RelationshipTypeID: inverse.ID,
			Notes:              req.Notes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.repo.InsertIgnoreDuplicate(ctx, mirrored); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"friend_id": friendID,
		}).Error("failed to commit relationship pair")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	s.emitter.Emit(ctx, events.TypeRelationshipAdded, userID, relationshipPayload(forward))
	s.cache.Invalidate(ctx, userID)

	return forward, nil
}

// Update changes the notes on a single edge. Notes are an annotation of one
// direction, so the inverse row is left alone.
func (s *Service) Update(ctx context.Context, userID string, friendID string, id string, req models.UpdateRelationshipRequest) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Update")
	defer span.End()

	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FriendID != friendID {
		return nil, nil
	}

	if req.Notes != nil {
		if _, err := s.repo.UpdateNotes(ctx, userID, id, *req.Notes); err != nil {
			return nil, err
		}
		existing.Notes = *req.Notes
	}

	s.emitter.Emit(ctx, events.TypeRelationshipUpdated, userID, relationshipPayload(existing))

	return existing, nil
}

// Remove deletes the edge and its inverse counterpart in one transaction. The
// inverse row has its own id, so it is matched by value: same pair of friends
// reversed, inverse type. Returns the removed edge, or nil when it did not
// exist.
func (s *Service) Remove(ctx context.Context, userID string, friendID string, id string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.Remove")
	defer span.End()

	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FriendID != friendID {
		return nil, nil
	}

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	deleted, err := s.repo.DeleteByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	inverse, _ := s.catalog.Inverse(existing.RelationshipTypeID)
	if inverse != nil {
		if _, err := s.repo.DeleteByValue(ctx, userID, existing.RelatedFriendID, existing.FriendID, inverse.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
			"id":      id,
		}).Error("failed to commit relationship removal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	if !deleted {
		return nil, nil
	}

	s.emitter.Emit(ctx, events.TypeRelationshipRemoved, userID, relationshipPayload(existing))
	s.cache.Invalidate(ctx, userID)

	return existing, nil
}

// RemoveAllForFriend drops every edge touching the friend, in both
// directions. Joins the caller's transaction, so a friend deletion takes its
// edges with it atomically.
func (s *Service) RemoveAllForFriend(ctx context.Context, userID string, friendID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.RemoveAllForFriend")
	defer span.End()

	removed, err := s.repo.DeleteAllForFriend(ctx, userID, friendID)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.cache.Invalidate(ctx, userID)
	}

	return removed, nil
}

func (s *Service) ListByFriend(ctx context.Context, userID string, friendID string) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationships.Service.ListByFriend")
	defer span.End()

	if err := s.resolveFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}

	return s.repo.ListByFriend(ctx, userID, friendID)
}

func (s *Service) resolveFriend(ctx context.Context, userID string, friendID string) error {
	f, err := s.friends.GetByID(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if f == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "friend not found: %s", friendID)
	}
	return nil
}

func relationshipPayload(rel *models.Relationship) map[string]any {
	return map[string]any{
		"id":                 rel.ID,
		"friendId":           rel.FriendID,
		"relatedFriendId":    rel.RelatedFriendID,
		"relationshipTypeId": rel.RelationshipTypeID,
	}
}
