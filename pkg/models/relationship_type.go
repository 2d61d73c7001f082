package models

// RelationshipCategory groups relationship types in the catalog.
type RelationshipCategory string

const (
	CategoryFamily       RelationshipCategory = "family"
	CategoryProfessional RelationshipCategory = "professional"
	CategorySocial       RelationshipCategory = "social"
)

// RelationshipType is a catalog entry. InverseTypeID is nil for
// one-directional types and equals ID for symmetric ones.
type RelationshipType struct {
	ID            string               `json:"id" db:"id"`
	Category      RelationshipCategory `json:"category" db:"category"`
	Label         string               `json:"label" db:"label"`
	InverseTypeID *string              `json:"inverseTypeId,omitempty" db:"inverse_type_id"`
}

// IsSymmetric reports whether the type is its own inverse.
func (rt RelationshipType) IsSymmetric() bool {
	return rt.InverseTypeID != nil && *rt.InverseTypeID == rt.ID
}
