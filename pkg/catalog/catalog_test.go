package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datenknoten/freundebuch/pkg/models"
)

func ptr(s string) *string {
	return &s
}

func testTypes() []models.RelationshipType {
	return []models.RelationshipType{
		{ID: "parent_of", Category: models.CategoryFamily, Label: "Parent", InverseTypeID: ptr("child_of")},
		{ID: "child_of", Category: models.CategoryFamily, Label: "Child", InverseTypeID: ptr("parent_of")},
		{ID: "sibling_of", Category: models.CategoryFamily, Label: "Sibling", InverseTypeID: ptr("sibling_of")},
		{ID: "colleague_of", Category: models.CategoryProfessional, Label: "Colleague", InverseTypeID: ptr("colleague_of")},
		{ID: "met_through", Category: models.CategorySocial, Label: "Met through"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		types   []models.RelationshipType
		wantErr string
	}{
		{
			name:  "valid catalog",
			types: testTypes(),
		},
		{
			name: "unknown inverse",
			types: []models.RelationshipType{
				{ID: "parent_of", Category: models.CategoryFamily, Label: "Parent", InverseTypeID: ptr("missing")},
			},
			wantErr: "unknown inverse",
		},
		{
			name: "inverse does not point back",
			types: []models.RelationshipType{
				{ID: "parent_of", Category: models.CategoryFamily, Label: "Parent", InverseTypeID: ptr("child_of")},
				{ID: "child_of", Category: models.CategoryFamily, Label: "Child"},
			},
			wantErr: "not mutual inverses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.types)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c.All(), len(tt.types))
		})
	}
}

func TestInverse(t *testing.T) {
	c, err := New(testTypes())
	require.NoError(t, err)

	t.Run("asymmetric pair", func(t *testing.T) {
		inverse, ok := c.Inverse("parent_of")
		require.True(t, ok)
		require.NotNil(t, inverse)
		assert.Equal(t, "child_of", inverse.ID)
	})

	t.Run("symmetric type is its own inverse", func(t *testing.T) {
		inverse, ok := c.Inverse("sibling_of")
		require.True(t, ok)
		require.NotNil(t, inverse)
		assert.Equal(t, "sibling_of", inverse.ID)
		assert.True(t, inverse.IsSymmetric())
	})

	t.Run("one-directional type has no inverse", func(t *testing.T) {
		inverse, ok := c.Inverse("met_through")
		require.True(t, ok)
		assert.Nil(t, inverse)
	})

	t.Run("unknown type", func(t *testing.T) {
		inverse, ok := c.Inverse("nope")
		assert.False(t, ok)
		assert.Nil(t, inverse)
	})
}

func TestGrouped(t *testing.T) {
	c, err := New(testTypes())
	require.NoError(t, err)

	grouped := c.Grouped()
	assert.Len(t, grouped[models.CategoryFamily], 3)
	assert.Len(t, grouped[models.CategoryProfessional], 1)
	assert.Len(t, grouped[models.CategorySocial], 1)

	// catalog order is preserved within a bucket
	family := grouped[models.CategoryFamily]
	assert.Equal(t, "parent_of", family[0].ID)
	assert.Equal(t, "child_of", family[1].ID)
	assert.Equal(t, "sibling_of", family[2].ID)
}

func TestGet(t *testing.T) {
	c, err := New(testTypes())
	require.NoError(t, err)

	rt, ok := c.Get("colleague_of")
	require.True(t, ok)
	assert.Equal(t, models.CategoryProfessional, rt.Category)

	_, ok = c.Get("unknown")
	assert.False(t, ok)
}
