package services

import (
	"fmt"
	"strings"
	"testing"
	"verba/internal/db"
	"verba/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package-level handle for a fresh in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database: shared across the pool's connections,
	// isolated between tests.
	name := strings.NewReplacer("/", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Migrate(g))

	prev := db.DB
	db.DB = g
	t.Cleanup(func() {
		sqlDB, _ := g.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		db.DB = prev
	})

	// Sentinel account, normally created by the production seed
	sentinel := models.User{
		ID:       models.DeletedUserID,
		Username: "deleted",
		Email:    "deleted@localhost",
		Password: "!",
	}
	require.NoError(t, g.Create(&sentinel).Error)
	require.NoError(t, g.Create(&models.Profile{UserID: sentinel.ID, Slug: "deleted"}).Error)

	return g
}

func createTestUser(t *testing.T, name string) (*models.User, *models.Profile) {
	t.Helper()

	user, profile, err := NewProfileService().CreateUser(name, name+"@example.com", "password123")
	require.NoError(t, err)
	user.IsActive = true
	require.NoError(t, db.DB.Save(user).Error)
	return user, profile
}

func createTestCategory(t *testing.T, title string) *models.Category {
	t.Helper()

	category := models.Category{Title: title}
	require.NoError(t, NewCategoryService().Create(&category, nil))
	return &category
}

func createTestArticle(t *testing.T, author *models.User, category *models.Category, title string) *models.Article {
	t.Helper()

	article := models.Article{
		Title:            title,
		ShortDescription: "short text for " + title,
		FullDescription:  "full text for " + title,
		AuthorID:         author.ID,
		CategoryID:       category.ID,
	}
	require.NoError(t, NewArticleService().Create(&article))
	return &article
}

// fixture builds the minimal world most service tests need.
type fixture struct {
	User     *models.User
	Profile  *models.Profile
	Category *models.Category
	Article  *models.Article
}

func setupFixture(t *testing.T) fixture {
	t.Helper()
	setupTestDB(t)

	user, profile := createTestUser(t, "alice")
	category := createTestCategory(t, "Technology")
	article := createTestArticle(t, user, category, "First article")
	return fixture{User: user, Profile: profile, Category: category, Article: article}
}

// uniqueIP hands out distinct client addresses for rating tests.
var ipCounter int

func nextIP() string {
	ipCounter++
	return fmt.Sprintf("10.0.%d.%d", ipCounter/256, ipCounter%256)
}
