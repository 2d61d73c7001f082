package models

import "time"

// Relationship is a directed edge between two friends of the same user.
// Every relationship whose type has an inverse is stored twice, once in each
// direction; the two rows are kept in sync inside a single transaction.
type Relationship struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"userId" db:"user_id"`
	FriendID           string    `json:"friendId" db:"friend_id"`
	RelatedFriendID    string    `json:"relatedFriendId" db:"related_friend_id"`
	RelationshipTypeID string    `json:"relationshipTypeId" db:"relationship_type_id"`
	Notes              string    `json:"notes" db:"notes"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`

	// Joined display fields, populated on list queries.
	RelatedFirstName string `json:"relatedFirstName,omitempty" db:"related_first_name"`
	RelatedLastName  string `json:"relatedLastName,omitempty" db:"related_last_name"`
	RelatedNickname  string `json:"relatedNickname,omitempty" db:"related_nickname"`
	TypeLabel        string `json:"typeLabel,omitempty" db:"type_label"`
	TypeCategory     string `json:"typeCategory,omitempty" db:"type_category"`
}

type CreateRelationshipRequest struct {
	RelatedFriendID    string `json:"relatedFriendId" validate:"required,uuid4"`
	RelationshipTypeID string `json:"relationshipTypeId" validate:"required"`
	Notes              string `json:"notes" validate:"max=5000"`
}

type UpdateRelationshipRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}
