package models

import "time"

// Friend is a person in the user's book. Friends soft delete and can be
// archived; archived friends keep their data but drop out of the network
// projection.
type Friend struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Nickname    string     `json:"nickname" db:"nickname"`
	Description string     `json:"description" db:"description"`
	Archived    bool       `json:"archived" db:"archived"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// DisplayName prefers the nickname when one is set.
func (f Friend) DisplayName() string {
	if f.Nickname != "" {
		return f.Nickname
	}
	if f.LastName == "" {
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}

type CreateFriendRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=200"`
	LastName    string `json:"lastName" validate:"max=200"`
	Nickname    string `json:"nickname" validate:"max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateFriendRequest struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,max=200"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,max=200"`
	Nickname    *string `json:"nickname,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Archived    *bool   `json:"archived,omitempty"`
}
