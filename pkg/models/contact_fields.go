package models

import "time"

// ParentKind distinguishes which entity a contact sub-resource hangs off.
type ParentKind string

const (
	ParentKindFriend     ParentKind = "friend"
	ParentKindCollective ParentKind = "collective"
)

// ParentRef identifies the owning entity of a contact sub-resource.
type ParentRef struct {
	Kind ParentKind
	ID   string
}

type PhoneNumber struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	ParentKind ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID   string     `json:"parentId" db:"parent_id"`
	Number     string     `json:"number" db:"number"`
	Label      string     `json:"label" db:"label"`
	IsPrimary  bool       `json:"isPrimary" db:"is_primary"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreatePhoneNumberRequest struct {
	Number    string `json:"number" validate:"required,max=50"`
	Label     string `json:"label" validate:"max=100"`
	IsPrimary bool   `json:"isPrimary"`
}

type UpdatePhoneNumberRequest struct {
	Number    *string `json:"number,omitempty" validate:"omitempty,max=50"`
	Label     *string `json:"label,omitempty" validate:"omitempty,max=100"`
	IsPrimary *bool   `json:"isPrimary,omitempty"`
}

type EmailAddress struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	ParentKind ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID   string     `json:"parentId" db:"parent_id"`
	Address    string     `json:"address" db:"address"`
	Label      string     `json:"label" db:"label"`
	IsPrimary  bool       `json:"isPrimary" db:"is_primary"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateEmailAddressRequest struct {
	Address   string `json:"address" validate:"required,email,max=320"`
	Label     string `json:"label" validate:"max=100"`
	IsPrimary bool   `json:"isPrimary"`
}

type UpdateEmailAddressRequest struct {
	Address   *string `json:"address,omitempty" validate:"omitempty,email,max=320"`
	Label     *string `json:"label,omitempty" validate:"omitempty,max=100"`
	IsPrimary *bool   `json:"isPrimary,omitempty"`
}

type PostalAddress struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	ParentKind ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID   string     `json:"parentId" db:"parent_id"`
	Line1      string     `json:"line1" db:"line1"`
	Line2      string     `json:"line2" db:"line2"`
	City       string     `json:"city" db:"city"`
	Region     string     `json:"region" db:"region"`
	PostalCode string     `json:"postalCode" db:"postal_code"`
	Country    string     `json:"country" db:"country"`
	Label      string     `json:"label" db:"label"`
	IsPrimary  bool       `json:"isPrimary" db:"is_primary"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreatePostalAddressRequest struct {
	Line1      string `json:"line1" validate:"max=300"`
	Line2      string `json:"line2" validate:"max=300"`
	City       string `json:"city" validate:"max=200"`
	Region     string `json:"region" validate:"max=200"`
	PostalCode string `json:"postalCode" validate:"max=50"`
	Country    string `json:"country" validate:"max=100"`
	Label      string `json:"label" validate:"max=100"`
	IsPrimary  bool   `json:"isPrimary"`
}

type UpdatePostalAddressRequest struct {
	Line1      *string `json:"line1,omitempty" validate:"omitempty,max=300"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=300"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=200"`
	Region     *string `json:"region,omitempty" validate:"omitempty,max=200"`
	PostalCode *string `json:"postalCode,omitempty" validate:"omitempty,max=50"`
	Country    *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Label      *string `json:"label,omitempty" validate:"omitempty,max=100"`
	IsPrimary  *bool   `json:"isPrimary,omitempty"`
}

type URL struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	ParentKind ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID   string     `json:"parentId" db:"parent_id"`
	URL        string     `json:"url" db:"url"`
	Label      string     `json:"label" db:"label"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateURLRequest struct {
	URL   string `json:"url" validate:"required,url,max=2000"`
	Label string `json:"label" validate:"max=100"`
}

type UpdateURLRequest struct {
	URL   *string `json:"url,omitempty" validate:"omitempty,url,max=2000"`
	Label *string `json:"label,omitempty" validate:"omitempty,max=100"`
}

type SocialProfile struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	ParentKind ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID   string     `json:"parentId" db:"parent_id"`
	Platform   string     `json:"platform" db:"platform"`
	Handle     string     `json:"handle" db:"handle"`
	ProfileURL string     `json:"profileUrl" db:"profile_url"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateSocialProfileRequest struct {
	Platform   string `json:"platform" validate:"required,max=100"`
	Handle     string `json:"handle" validate:"required,max=200"`
	ProfileURL string `json:"profileUrl" validate:"omitempty,url,max=2000"`
}

type UpdateSocialProfileRequest struct {
	Platform   *string `json:"platform,omitempty" validate:"omitempty,max=100"`
	Handle     *string `json:"handle,omitempty" validate:"omitempty,max=200"`
	ProfileURL *string `json:"profileUrl,omitempty" validate:"omitempty,url,max=2000"`
}

type SignificantDate struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"userId" db:"user_id"`
	ParentKind     ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID       string     `json:"parentId" db:"parent_id"`
	Label          string     `json:"label" db:"label"`
	HappenedOn     time.Time  `json:"happenedOn" db:"happened_on"`
	RecursAnnually bool       `json:"recursAnnually" db:"recurs_annually"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateSignificantDateRequest struct {
	Label          string    `json:"label" validate:"required,max=200"`
	HappenedOn     time.Time `json:"happenedOn" validate:"required"`
	RecursAnnually bool      `json:"recursAnnually"`
}

type UpdateSignificantDateRequest struct {
	Label          *string    `json:"label,omitempty" validate:"omitempty,max=200"`
	HappenedOn     *time.Time `json:"happenedOn,omitempty"`
	RecursAnnually *bool      `json:"recursAnnually,omitempty"`
}

// CareerEntry tracks where a friend works or worked. IsCurrent plays the same
// role is_primary does for the other categories: at most one current entry
// per parent.
type CareerEntry struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"userId" db:"user_id"`
	ParentKind   ParentKind `json:"parentKind" db:"parent_kind"`
	ParentID     string     `json:"parentId" db:"parent_id"`
	Organization string     `json:"organization" db:"organization"`
	Title        string     `json:"title" db:"title"`
	StartedOn    *time.Time `json:"startedOn,omitempty" db:"started_on"`
	EndedOn      *time.Time `json:"endedOn,omitempty" db:"ended_on"`
	IsCurrent    bool       `json:"isCurrent" db:"is_current"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateCareerEntryRequest struct {
	Organization string     `json:"organization" validate:"required,max=300"`
	Title        string     `json:"title" validate:"max=200"`
	StartedOn    *time.Time `json:"startedOn,omitempty"`
	EndedOn      *time.Time `json:"endedOn,omitempty"`
	IsCurrent    bool       `json:"isCurrent"`
}

type UpdateCareerEntryRequest struct {
	Organization *string    `json:"organization,omitempty" validate:"omitempty,max=300"`
	Title        *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	StartedOn    *time.Time `json:"startedOn,omitempty"`
	EndedOn      *time.Time `json:"endedOn,omitempty"`
	IsCurrent    *bool      `json:"isCurrent,omitempty"`
}
