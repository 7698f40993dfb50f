package services

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
	"verba/internal/db"
	"verba/internal/models"
)

// Backup serializes the durable tables into a timestamped JSON file under
// dir and returns its path. View counts are append-only traffic data and are
// deliberately left out of the snapshot.
func Backup(dir string) (string, error) {
	if dir == "" {
		dir = "backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dump := make(map[string]interface{}, 9)

	var users []models.User
	if err := db.DB.Find(&users).Error; err != nil {
		return "", err
	}
	dump["users"] = users

	var profiles []models.Profile
	if err := db.DB.Find(&profiles).Error; err != nil {
		return "", err
	}
	dump["profiles"] = profiles

	var follows []models.ProfileFollow
	if err := db.DB.Find(&follows).Error; err != nil {
		return "", err
	}
	dump["profile_follows"] = follows

	var categories []models.Category
	if err := db.DB.Find(&categories).Error; err != nil {
		return "", err
	}
	dump["categories"] = categories

	var tags []models.Tag
	if err := db.DB.Find(&tags).Error; err != nil {
		return "", err
	}
	dump["tags"] = tags

	var articles []models.Article
	if err := db.DB.Preload("Tags").Find(&articles).Error; err != nil {
		return "", err
	}
	dump["articles"] = articles

	var comments []models.Comment
	if err := db.DB.Find(&comments).Error; err != nil {
		return "", err
	}
	dump["comments"] = comments

	var ratings []models.Rating
	if err := db.DB.Find(&ratings).Error; err != nil {
		return "", err
	}
	dump["ratings"] = ratings

	var feedback []models.Feedback
	if err := db.DB.Find(&feedback).Error; err != nil {
		return "", err
	}
	dump["feedback"] = feedback

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", err
	}

	name := time.Now().Format("database-2006-01-02-15-04-05.json")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	log.Printf("database backup written to %s (%d bytes)", path, len(data))
	return path, nil
}

// StartBackupSchedule enqueues a backup job on a fixed interval.
func StartBackupSchedule(d *Dispatcher, interval time.Duration, dir string) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			d.Enqueue(BackupJob{Dir: dir})
		}
	}()
}
