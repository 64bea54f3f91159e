package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemax/internal/catalog"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Attack on Titan", "attack-on-titan"},
		{"multiplication sign folds to x", "SPY×FAMILY", "spyxfamily"},
		{"punctuation collapses", "Re:ZERO -Starting Life in Another World-", "re-zero-starting-life-in-another-world"},
		{"consecutive separators collapse", "Fate/stay night: Heaven's Feel", "fate-stay-night-heaven-s-feel"},
		{"leading and trailing junk trimmed", "!!Bleach!!", "bleach"},
		{"digits survive", "Mob Psycho 100", "mob-psycho-100"},
		{"empty title", "", ""},
		{"only punctuation", "!?~", ""},
		{"non-latin drops out", "鬼滅の刃", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Slugify(tt.title))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	titles := []string{"Attack on Titan", "SPY×FAMILY", "Mob Psycho 100", "Re:ZERO"}
	for _, title := range titles {
		once := catalog.Slugify(title)
		assert.Equal(t, once, catalog.Slugify(once), "slugifying %q twice must not change it", title)
	}
}

func TestParseIDSlug(t *testing.T) {
	t.Run("id and slug", func(t *testing.T) {
		id, slug, err := catalog.ParseIDSlug("101922-spyxfamily")
		require.NoError(t, err)
		assert.Equal(t, 101922, id)
		assert.Equal(t, "spyxfamily", slug)
	})

	t.Run("slug keeps its own hyphens", func(t *testing.T) {
		id, slug, err := catalog.ParseIDSlug("16498-attack-on-titan")
		require.NoError(t, err)
		assert.Equal(t, 16498, id)
		assert.Equal(t, "attack-on-titan", slug)
	})

	t.Run("bare id has empty slug", func(t *testing.T) {
		id, slug, err := catalog.ParseIDSlug("27205")
		require.NoError(t, err)
		assert.Equal(t, 27205, id)
		assert.Equal(t, "", slug)
	})

	t.Run("trailing hyphen has empty slug", func(t *testing.T) {
		id, slug, err := catalog.ParseIDSlug("27205-")
		require.NoError(t, err)
		assert.Equal(t, 27205, id)
		assert.Equal(t, "", slug)
	})

	t.Run("non-numeric id is not found", func(t *testing.T) {
		_, _, err := catalog.ParseIDSlug("abc-def")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})

	t.Run("negative id is not found", func(t *testing.T) {
		_, _, err := catalog.ParseIDSlug("-5-title")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})

	t.Run("zero id is not found", func(t *testing.T) {
		_, _, err := catalog.ParseIDSlug("0-title")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})

	t.Run("empty segment is not found", func(t *testing.T) {
		_, _, err := catalog.ParseIDSlug("")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})
}
