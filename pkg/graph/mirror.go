package graph

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// Mirror replicates friends and relationship edges into the graph database.
// The relational store stays the source of truth; the mirror is best effort
// and a nil *Mirror (mirroring disabled) is safe to call.
type Mirror struct {
	client *Client
	logger ectologger.Logger
}

func NewMirror(client *Client, logger ectologger.Logger) *Mirror {
	return &Mirror{
		client: client,
		logger: logger,
	}
}

func (m *Mirror) enabled() bool {
	return m != nil && m.client != nil
}

// UpsertFriend merges the friend node with its current display name.
func (m *Mirror) UpsertFriend(ctx context.Context, f *models.Friend) {
	if !m.enabled() {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.UpsertFriend")
	defer span.End()

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (f:Friend {id: $id, userId: $userId})
			SET f.name = $name, f.archived = $archived
		`, map[string]any{
			"id":       f.ID,
			"userId":   f.UserID,
			"name":     f.DisplayName(),
			"archived": f.Archived,
		})
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"friend_id": f.ID,
			"user_id":   f.UserID,
		}).Warn("failed to mirror friend node")
	}
}

// DeleteFriend removes the friend node and every edge attached to it.
func (m *Mirror) DeleteFriend(ctx context.Context, userID string, friendID string) {
	if !m.enabled() {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.DeleteFriend")
	defer span.End()

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (f:Friend {id: $id, userId: $userId})
			DETACH DELETE f
		`, map[string]any{
			"id":     friendID,
			"userId": userID,
		})
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"friend_id": friendID,
			"user_id":   userID,
		}).Warn("failed to mirror friend deletion")
	}
}

// UpsertRelationship merges the directed RELATES_TO edge for one row. The
// relationshipId property is only written when the row id is known; the
// inverse half of a pair has its own row id that the write path never loads,
// so its edge carries none.
func (m *Mirror) UpsertRelationship(ctx context.Context, rel *models.Relationship) {
	if !m.enabled() {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.UpsertRelationship")
	defer span.End()

	query := `
		MATCH (a:Friend {id: $fromId, userId: $userId})
		MATCH (b:Friend {id: $toId, userId: $userId})
		MERGE (a)-[r:RELATES_TO {typeId: $typeId}]->(b)
	`
	params := map[string]any{
		"fromId": rel.FriendID,
		"toId":   rel.RelatedFriendID,
		"userId": rel.UserID,
		"typeId": rel.RelationshipTypeID,
	}
	if rel.ID != "" {
		query += "SET r.relationshipId = $relationshipId"
		params["relationshipId"] = rel.ID
	}

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"relationship_id": rel.ID,
			"user_id":         rel.UserID,
		}).Warn("failed to mirror relationship edge")
	}
}

// DeleteRelationship removes the directed edge matching the row's value
// triple, and the inverse edge when an inverse type id is given.
func (m *Mirror) DeleteRelationship(ctx context.Context, rel *models.Relationship, inverseTypeID string) {
	if !m.enabled() {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "graph.Mirror.DeleteRelationship")
	defer span.End()

	_, err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (a:Friend {id: $fromId, userId: $userId})-[r:RELATES_TO {typeId: $typeId}]->(b:Friend {id: $toId, userId: $userId})
			DELETE r
		`, map[string]any{
			"fromId": rel.FriendID,
			"toId":   rel.RelatedFriendID,
			"userId": rel.UserID,
			"typeId": rel.RelationshipTypeID,
		})
		if err != nil {
			return nil, err
		}
		if inverseTypeID == "" {
			return result, nil
		}
		return tx.Run(ctx, `
			MATCH (a:Friend {id: $fromId, userId: $userId})-[r:RELATES_TO {typeId: $typeId}]->(b:Friend {id: $toId, userId: $userId})
			DELETE r
		`, map[string]any{
			"fromId": rel.RelatedFriendID,
			"toId":   rel.FriendID,
			"userId": rel.UserID,
			"typeId": inverseTypeID,
		})
	})
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"relationship_id": rel.ID,
			"user_id":         rel.UserID,
		}).Warn("failed to mirror relationship removal")
	}
}
