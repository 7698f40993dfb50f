package services

import (
	"testing"
	"verba/internal/db"
	"verba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueSlugFirstUseKeepsBase(t *testing.T) {
	setupTestDB(t)

	slug, err := UniqueSlug(db.DB, &models.Tag{}, "Go Generics")
	require.NoError(t, err)
	assert.Equal(t, "go-generics", slug)
}

func TestUniqueSlugDisambiguatesCollision(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, db.DB.Create(&models.Tag{Name: "Go", Slug: "go"}).Error)

	slug, err := UniqueSlug(db.DB, &models.Tag{}, "Go")
	require.NoError(t, err)
	assert.NotEqual(t, "go", slug)
	assert.Contains(t, slug, "go-")
}

func TestUniqueSlugEmptySourceFallsBackToRandom(t *testing.T) {
	setupTestDB(t)

	slug, err := UniqueSlug(db.DB, &models.Tag{}, "???")
	require.NoError(t, err)
	assert.Len(t, slug, 8)
}

func TestUniqueSlugSurvivesManyCollidingInserts(t *testing.T) {
	setupTestDB(t)

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		slug, err := UniqueSlug(db.DB, &models.Tag{}, "Same Title Every Time")
		require.NoError(t, err)
		require.False(t, seen[slug], "slug %q issued twice", slug)
		seen[slug] = true

		require.NoError(t, db.DB.Create(&models.Tag{Name: slug, Slug: slug}).Error)
	}
}
