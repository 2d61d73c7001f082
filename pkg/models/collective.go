package models

import "time"

// Collective is a group the user tracks (a household, a company, a club).
// Collectives carry the same contact sub-resources as friends but never
// participate in friend-to-friend relationships.
type Collective struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Kind        string     `json:"kind" db:"kind"`
	Description string     `json:"description" db:"description"`
	Archived    bool       `json:"archived" db:"archived"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

type CreateCollectiveRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Kind        string `json:"kind" validate:"max=100"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateCollectiveRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Kind        *string `json:"kind,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Archived    *bool   `json:"archived,omitempty"`
}
