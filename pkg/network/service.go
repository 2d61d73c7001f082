package network

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// FriendLister supplies the projection's node set.
type FriendLister interface {
	ListActive(ctx context.Context, userID string) ([]models.Friend, error)
}

// RelationshipLister supplies the projection's edge set.
type RelationshipLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Relationship, error)
}

// Cache is the optional read-through cache in front of the projection.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service builds the user's network projection: every non-archived friend as
// a node, every relationship whose endpoints are both in the node set as a
// link. Edges touching an archived or deleted friend stay in the database but
// drop out of the projection.
type Service struct {
	friends FriendLister
	rels    RelationshipLister
	cache   Cache
	ttl     time.Duration
	logger  ectologger.Logger
}

// NewService builds the projection service. cache may be nil, which disables
// caching entirely.
func NewService(friends FriendLister, rels RelationshipLister, cache Cache, ttl time.Duration, logger ectologger.Logger) *Service {
	return &Service{
		friends: friends,
		rels:    rels,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

func cacheKey(userID string) string {
	return "network:" + userID
}

func (s *Service) Graph(ctx context.Context, userID string) (*models.NetworkGraph, error) {
	ctx, span := tracing.StartSpan(ctx, "network.Service.Graph")
	defer span.End()

	if s.cache != nil {
		if cached, ok := s.lookupCache(ctx, userID); ok {
			return cached, nil
		}
	}

	graph, err := s.build(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.storeCache(ctx, userID, graph)
	}

	return graph, nil
}

func (s *Service) build(ctx context.Context, userID string) (*models.NetworkGraph, error) {
	friends, err := s.friends.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	nodes := ectolinq.Map(friends, func(f models.Friend) models.NetworkNode {
		return models.NetworkNode{
			ID:    f.ID,
			Label: f.DisplayName(),
		}
	})

	nodeSet := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		nodeSet[n.ID] = struct{}{}
	}

	rels, err := s.rels.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	links := make([]models.NetworkLink, 0, len(rels))
	for _, rel := range rels {
		if _, ok := nodeSet[rel.FriendID]; !ok {
			continue
		}
		if _, ok := nodeSet[rel.RelatedFriendID]; !ok {
			continue
		}
		links = append(links, models.NetworkLink{
			ID:       rel.ID,
			Source:   rel.FriendID,
			Target:   rel.RelatedFriendID,
			TypeID:   rel.RelationshipTypeID,
			Label:    rel.TypeLabel,
			Category: rel.TypeCategory,
		})
	}

	return &models.NetworkGraph{
		Nodes: nodes,
		Links: links,
	}, nil
}

// Invalidate drops the cached projection. Called after any write that changes
// nodes or edges; a cache failure here is logged and swallowed because the
// projection is rebuilt from the database on the next read anyway.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
		}).Warn("failed to invalidate network cache")
	}
}

func (s *Service) lookupCache(ctx context.Context, userID string) (*models.NetworkGraph, bool) {
	value, ok, err := s.cache.Get(ctx, cacheKey(userID))
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
		}).Warn("network cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var graph models.NetworkGraph
	if err := json.Unmarshal([]byte(value), &graph); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
		}).Warn("network cache entry is corrupt")
		return nil, false
	}

	return &graph, true
}

func (s *Service) storeCache(ctx context.Context, userID string, graph *models.NetworkGraph) {
	value, err := json.Marshal(graph)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey(userID), string(value), s.ttl); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": userID,
		}).Warn("network cache write failed")
	}
}
