package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(entries []CatalogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestCatalogSelect(t *testing.T) {
	c := DefaultCatalog()

	t.Run("very low mood", func(t *testing.T) {
		assert.Equal(t, []string{"breathing", "water", "music"}, ids(c.Select(1, 5, 3)))
		all := ids(c.Select(1, 5, 0))
		assert.Contains(t, all, "reach-out")
		assert.NotContains(t, all, "gratitude")
		assert.NotContains(t, all, "walk")
	})

	t.Run("mild dip", func(t *testing.T) {
		all := ids(c.Select(4, 4.5, 0))
		assert.Equal(t, []string{"breathing", "water", "gratitude", "music", "walk"}, all)
	})
}

func TestNewCatalogRejectsBadConditions(t *testing.T) {
	_, err := NewCatalog([]CatalogEntry{{ID: "bad", When: "mood >"}})
	assert.Error(t, err)

	_, err = NewCatalog([]CatalogEntry{{ID: "not-bool", When: "mood + 1"}})
	assert.Error(t, err)

	_, err = NewCatalog([]CatalogEntry{{ID: "unknown-var", When: "energy > 2"}})
	assert.Error(t, err)

	c, err := NewCatalog([]CatalogEntry{{ID: "ok", When: "deficit > 0.0 && mood < 5"}})
	require.NoError(t, err)
	assert.Len(t, c.Select(3, 4, 0), 1)
	assert.Empty(t, c.Select(6, 7, 0))
}
