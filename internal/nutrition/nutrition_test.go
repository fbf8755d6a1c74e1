package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("DirectMatch", func(t *testing.T) {
		t.Parallel()
		infos := Lookup("kitkat")

		require.NotNil(t, infos)
		assert.Len(t, infos, 4)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, Lookup("KitKat"))
		assert.NotNil(t, Lookup("COFFEE CRISP"))
	})

	t.Run("BrandPrefixStripped", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, Lookup("Nestlé Aero"))
		assert.NotNil(t, Lookup("nestle smarties"))
	})

	t.Run("PartialMatchEitherDirection", func(t *testing.T) {
		t.Parallel()
		// Query contains the key.
		assert.NotNil(t, Lookup("kitkat chunky bar"))
		// Key contains the query.
		assert.NotNil(t, Lookup("quality"))
	})

	t.Run("Unknown", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, Lookup("completely unknown product"))
	})
}

func TestFormatContext(t *testing.T) {
	t.Parallel()

	t.Run("IncludesFacts", func(t *testing.T) {
		t.Parallel()
		infos := Lookup("coffee crisp")
		require.NotNil(t, infos)

		text := FormatContext("Coffee Crisp", infos)

		assert.Contains(t, text, `NUTRITIONAL INFORMATION FOR "COFFEE CRISP"`)
		assert.Contains(t, text, "COFFEE CRISP Chocolate Bar")
		assert.Contains(t, text, "Serving Size: 50g")
		assert.Contains(t, text, "Calories: 260 per serving")
		assert.Contains(t, text, "Protein: 3g")
		assert.Contains(t, text, "Total Fat: 12g")
		assert.Contains(t, text, "Saturated Fat: 7g")
	})

	t.Run("IncludesSubVariants", func(t *testing.T) {
		t.Parallel()
		infos := Lookup("kitkat")
		require.NotNil(t, infos)

		text := FormatContext("KitKat", infos)

		assert.Contains(t, text, "Sub-variants within KITKAT Christmas Holiday Advent Calendar")
		assert.Contains(t, text, "KitKat Santa")
	})
}
