package catalog

import (
	"context"
	"fmt"

	"github.com/datenknoten/freundebuch/pkg/models"
)

// Loader is the read side the catalog is built from.
type Loader interface {
	List(ctx context.Context) ([]models.RelationshipType, error)
}

// Catalog is the static relationship type catalog, loaded once at startup.
// Lookups after that never touch the database.
type Catalog struct {
	types   map[string]models.RelationshipType
	ordered []models.RelationshipType
}

// Load reads the catalog from the repository and validates that every inverse
// reference resolves.
func Load(ctx context.Context, loader Loader) (*Catalog, error) {
	types, err := loader.List(ctx)
	if err != nil {
		return nil, err
	}
	return New(types)
}

func New(types []models.RelationshipType) (*Catalog, error) {
	c := &Catalog{
		types:   make(map[string]models.RelationshipType, len(types)),
		ordered: types,
	}
	for _, rt := range types {
		c.types[rt.ID] = rt
	}

	for _, rt := range types {
		if rt.InverseTypeID == nil {
			continue
		}
		inverse, ok := c.types[*rt.InverseTypeID]
		if !ok {
			return nil, fmt.Errorf("relationship type %q references unknown inverse %q", rt.ID, *rt.InverseTypeID)
		}
		// The inverse of the inverse must point back, or the pair drifts
		// apart when edges are synchronized.
		if inverse.InverseTypeID == nil || *inverse.InverseTypeID != rt.ID {
			return nil, fmt.Errorf("relationship types %q and %q are not mutual inverses", rt.ID, inverse.ID)
		}
	}

	return c, nil
}

// Get returns the type by id.
func (c *Catalog) Get(id string) (models.RelationshipType, bool) {
	rt, ok := c.types[id]
	return rt, ok
}

// Inverse returns the inverse type of id, or nil when the type is
// one-directional. The second return reports whether id itself exists.
func (c *Catalog) Inverse(id string) (*models.RelationshipType, bool) {
	rt, ok := c.types[id]
	if !ok {
		return nil, false
	}
	if rt.InverseTypeID == nil {
		return nil, true
	}
	inverse := c.types[*rt.InverseTypeID]
	return &inverse, true
}

// All returns every type in catalog order.
func (c *Catalog) All() []models.RelationshipType {
	return c.ordered
}

// Grouped returns the catalog bucketed by category, preserving catalog order
// within each bucket.
func (c *Catalog) Grouped() map[models.RelationshipCategory][]models.RelationshipType {
	grouped := make(map[models.RelationshipCategory][]models.RelationshipType)
	for _, rt := range c.ordered {
		grouped[rt.Category] = append(grouped[rt.Category], rt)
	}
	return grouped
}
