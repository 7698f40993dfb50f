package services

import (
	"errors"
	"verba/internal/db"
	"verba/internal/models"

	"gorm.io/gorm"
)

// Rating transition results, returned to the handler so it can answer the
// AJAX call without a second query.
const (
	RatingCreated = "created"
	RatingUpdated = "updated"
	RatingDeleted = "deleted"
)

// RatingService is the at-most-one-rating-per-(article, ip) state machine.
type RatingService struct{}

func NewRatingService() *RatingService {
	return &RatingService{}
}

// Apply runs one transition for the (article, ip) key:
//
//	absent            -> rated(value)   "created"
//	rated(value)      -> absent         "deleted"  (toggle off)
//	rated(other)      -> rated(value)   "updated"  (created_at kept)
//
// userID is informational only and never part of the key. The storage
// layer's unique index is the real guard: when a concurrent request wins the
// create, the unique violation is treated as "someone else just created it"
// and the transition is retried as an update.
func (s *RatingService) Apply(articleID uint, ip string, value int, userID *uint) (string, int, error) {
	if value != 1 && value != -1 {
		return "", 0, models.ValidationError{"value": "value must be 1 or -1"}
	}
	if ip == "" {
		return "", 0, models.ValidationError{"ip_address": "client address is required"}
	}

	var article models.Article
	if err := db.DB.First(&article, articleID).Error; err != nil {
		return "", 0, models.ErrNotFound
	}

	status, err := s.transition(articleID, ip, value, userID)
	if err != nil {
		return "", 0, err
	}

	sum, err := NewArticleService().SumRating(articleID)
	if err != nil {
		return "", 0, err
	}
	return status, sum, nil
}

func (s *RatingService) transition(articleID uint, ip string, value int, userID *uint) (string, error) {
	var existing models.Rating
	err := db.DB.Where("article_id = ? AND ip_address = ?", articleID, ip).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		rating := models.Rating{
			ArticleID: articleID,
			IPAddress: ip,
			Value:     value,
			UserID:    userID,
		}
		createErr := db.DB.Create(&rating).Error
		if createErr == nil {
			return RatingCreated, nil
		}
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// Lost the check-then-act race: the row exists now, so the
			// transition resolves as an update of that row.
			return s.overwrite(articleID, ip, value, userID)
		}
		return "", createErr
	}
	if err != nil {
		return "", err
	}

	if existing.Value == value {
		// Same value toggles the rating off
		if err := db.DB.Delete(&existing).Error; err != nil {
			return "", err
		}
		return RatingDeleted, nil
	}

	return s.overwrite(articleID, ip, value, userID)
}

// overwrite flips value and user in place, keeping created_at.
func (s *RatingService) overwrite(articleID uint, ip string, value int, userID *uint) (string, error) {
	err := db.DB.Model(&models.Rating{}).
		Where("article_id = ? AND ip_address = ?", articleID, ip).
		Updates(map[string]interface{}{"value": value, "user_id": userID}).Error
	if err != nil {
		return "", err
	}
	return RatingUpdated, nil
}
