package db

import (
	"log"
	"os"
	"verba/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=verba port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seed()
}

// Migrate creates the schema. Exposed separately so tests can run it against
// their own database handle.
func Migrate(g *gorm.DB) error {
	return g.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.ProfileFollow{},
		&models.Category{},
		&models.Tag{},
		&models.Article{},
		&models.Comment{},
		&models.Rating{},
		&models.Feedback{},
		&models.ViewCount{},
	)
}

func seed() {
	// The sentinel author has to exist before anything references it
	var count int64
	DB.Model(&models.User{}).Where("id = ?", models.DeletedUserID).Count(&count)
	if count == 0 {
		deleted := models.User{
			ID:       models.DeletedUserID,
			Username: "deleted",
			Email:    "deleted@localhost",
			Password: "!", // never a valid bcrypt hash, the account cannot log in
			IsActive: false,
		}
		if err := DB.Create(&deleted).Error; err != nil {
			log.Printf("Failed to create sentinel user: %v", err)
		} else {
			profile := models.Profile{UserID: deleted.ID, Slug: "deleted"}
			if err := DB.Create(&profile).Error; err != nil {
				log.Printf("Failed to create sentinel profile: %v", err)
			}
		}
	}

	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}

	// A starter forest so the site is navigable before an operator adds more
	categories := []models.Category{
		{Title: "Technology", Slug: "technology", Description: "Articles about software and hardware"},
		{Title: "Life", Slug: "life", Description: "Everyday notes and experience"},
		{Title: "Projects", Slug: "projects", Description: "Things built by the community"},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Title, err)
		}
	}
	log.Println("Initial categories created successfully")
}
