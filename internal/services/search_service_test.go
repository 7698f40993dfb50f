package services

import (
	"os"
	"testing"
	"verba/internal/db"
	"verba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSearchEmptyQuery(t *testing.T) {
	setupFixture(t)
	svc := NewSearchService()

	articles, total, err := svc.Articles("   ", 1)
	require.NoError(t, err)
	assert.Nil(t, articles)
	assert.Zero(t, total)
}

func TestSearchTitleRanksAboveBody(t *testing.T) {
	f := setupFixture(t)
	svc := NewSearchService()

	inTitle := createTestArticle(t, f.User, f.Category, "Kubernetes in production")
	inBody := models.Article{
		Title:            "Weekly notes",
		ShortDescription: "assorted links",
		FullDescription:  "mostly about kubernetes upgrades",
		AuthorID:         f.User.ID,
		CategoryID:       f.Category.ID,
	}
	require.NoError(t, NewArticleService().Create(&inBody))

	articles, total, err := svc.Articles("kubernetes", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, articles, 2)
	assert.Equal(t, inTitle.ID, articles[0].ID, "title match outranks body match")
	assert.Equal(t, inBody.ID, articles[1].ID)
}

func TestSearchSkipsDraftsAndMisses(t *testing.T) {
	f := setupFixture(t)
	svc := NewSearchService()

	draft := createTestArticle(t, f.User, f.Category, "Kubernetes draft")
	require.NoError(t, db.DB.Model(&models.Article{}).Where("id = ?", draft.ID).
		Update("status", models.StatusDraft).Error)

	articles, total, err := svc.Articles("kubernetes", 1)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, articles)

	articles, total, err = svc.Articles("no such thing anywhere", 1)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, articles)
}

func TestSearchPagination(t *testing.T) {
	f := setupFixture(t)
	svc := NewSearchService()

	for i := 0; i < SearchPerPage+3; i++ {
		createTestArticle(t, f.User, f.Category, "Kubernetes note "+string(rune('a'+i)))
	}

	pageOne, total, err := svc.Articles("kubernetes", 1)
	require.NoError(t, err)
	assert.EqualValues(t, SearchPerPage+3, total)
	assert.Len(t, pageOne, SearchPerPage)

	pageTwo, _, err := svc.Articles("kubernetes", 2)
	require.NoError(t, err)
	assert.Len(t, pageTwo, 3)
}

// TestSearchRankingPostgres exercises the real ts_rank query. It needs a
// postgres database and is skipped unless TEST_DATABASE_URL is set; all
// writes happen inside a transaction that is rolled back.
func TestSearchRankingPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	g, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))

	tx := g.Begin()
	require.NoError(t, tx.Error)

	prev := db.DB
	db.DB = tx
	t.Cleanup(func() {
		tx.Rollback()
		db.DB = prev
		if sqlDB, err := g.DB(); err == nil {
			sqlDB.Close()
		}
	})

	user, _, err := NewProfileService().CreateUser("searcher", "searcher@example.com", "password123")
	require.NoError(t, err)
	category := createTestCategory(t, "Search corpus")

	inTitle := createTestArticle(t, user, category, "Kubernetes in production")

	// Repeated mentions keep the weight-B rank above the 0.3 cutoff
	inBody := models.Article{
		Title:            "Weekly notes",
		ShortDescription: "kubernetes kubernetes",
		FullDescription:  "more kubernetes, kubernetes everywhere",
		AuthorID:         user.ID,
		CategoryID:       category.ID,
	}
	require.NoError(t, NewArticleService().Create(&inBody))

	// A single body mention ranks below the cutoff and is excluded
	faint := models.Article{
		Title:            "Release digest",
		ShortDescription: "assorted links",
		FullDescription:  "one aside about kubernetes and many other things entirely unrelated",
		AuthorID:         user.ID,
		CategoryID:       category.ID,
	}
	require.NoError(t, NewArticleService().Create(&faint))

	miss := createTestArticle(t, user, category, "Gardening for beginners")

	articles, total, err := NewSearchService().Articles("kubernetes", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, articles, 2)
	assert.Equal(t, inTitle.ID, articles[0].ID, "title match outranks body match")
	assert.Equal(t, inBody.ID, articles[1].ID)
	for _, a := range articles {
		assert.NotEqual(t, miss.ID, a.ID)
		assert.NotEqual(t, faint.ID, a.ID)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	f := setupFixture(t)
	svc := NewSearchService()

	createTestArticle(t, f.User, f.Category, "PostgreSQL tuning")

	articles, total, err := svc.Articles("pOsTgReSQL", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, articles, 1)
}
