package services

import (
	"errors"
	"strings"
	"verba/internal/db"
	"verba/internal/models"
	"verba/internal/utils"

	"gorm.io/gorm"
)

// ProfileService owns user+profile lifecycle and the follow graph. A profile
// is created at exactly one place — CreateUser — in the same transaction as
// its user, so "every user has exactly one profile" holds by construction.
type ProfileService struct{}

func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// CreateUser registers an inactive user and its profile as one transaction.
// The account stays inactive until the activation email is confirmed.
func (s *ProfileService) CreateUser(username, email, password string) (*models.User, *models.Profile, error) {
	errs := models.ValidationError{}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		errs["username"] = "username must not be empty"
	}
	if !strings.Contains(email, "@") {
		errs["email"] = "enter a valid email address"
	}
	if len(password) < 6 {
		errs["password"] = "password must be at least 6 characters"
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsActive: false,
	}
	var profile models.Profile

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ValidationError{"email": "email is already registered"}
			}
			return err
		}

		slug, err := UniqueSlug(tx, &models.Profile{}, username)
		if err != nil {
			return err
		}
		profile = models.Profile{UserID: user.ID, Slug: slug}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, &profile, nil
}

// SaveUser writes user and profile changes in lockstep, one transaction.
func (s *ProfileService) SaveUser(user *models.User, profile *models.Profile) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		if profile.Slug == "" {
			slug, err := UniqueSlug(tx, &models.Profile{}, user.Username)
			if err != nil {
				return err
			}
			profile.Slug = slug
		}
		return tx.Save(profile).Error
	})
}

// DeleteUser hard-deletes the account. Authored articles survive under the
// sentinel author, updater references are nulled, everything personal goes.
func (s *ProfileService) DeleteUser(userID uint) error {
	if userID == models.DeletedUserID {
		return models.ValidationError{"user": "the sentinel account cannot be deleted"}
	}
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return models.ErrNotFound
		}

		if err := tx.Model(&models.Article{}).Where("author_id = ?", userID).
			Update("author_id", models.DeletedUserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Article{}).Where("updater_id = ?", userID).
			Update("updater_id", nil).Error; err != nil {
			return err
		}

		var profile models.Profile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err == nil {
			if err := tx.Where("follower_id = ? OR following_id = ?", profile.ID, profile.ID).
				Delete(&models.ProfileFollow{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("author_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Rating{}).Where("user_id = ?", userID).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// BySlug loads a profile with its user for the profile page.
func (s *ProfileService) BySlug(slug string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.DB.Preload("User").Where("slug = ?", slug).First(&profile).Error; err != nil {
		return nil, models.ErrNotFound
	}
	return &profile, nil
}

// ByUserID loads the profile that belongs to a user.
func (s *ProfileService) ByUserID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := db.DB.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, models.ErrNotFound
	}
	return &profile, nil
}

// ToggleFollow flips the actor->target edge. The edge is directional and
// never mirrored; the unique index resolves races the same defensive way the
// rating engine does.
func (s *ProfileService) ToggleFollow(actorID, targetID uint) (followed bool, err error) {
	if actorID == targetID {
		return false, models.ErrSelfFollow
	}

	var target models.Profile
	if err := db.DB.First(&target, targetID).Error; err != nil {
		return false, models.ErrNotFound
	}

	res := db.DB.Where("follower_id = ? AND following_id = ?", actorID, targetID).
		Delete(&models.ProfileFollow{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil // edge removed
	}

	edge := models.ProfileFollow{FollowerID: actorID, FollowingID: targetID}
	if err := db.DB.Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent toggle won the insert; the requested end state
			// ("followed") holds either way.
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// Followers lists profiles following p.
func (s *ProfileService) Followers(profileID uint) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.DB.
		Joins("JOIN profile_follows pf ON pf.follower_id = profiles.id AND pf.following_id = ?", profileID).
		Preload("User").
		Find(&profiles).Error
	return profiles, err
}

// Following lists profiles p follows.
func (s *ProfileService) Following(profileID uint) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.DB.
		Joins("JOIN profile_follows pf ON pf.following_id = profiles.id AND pf.follower_id = ?", profileID).
		Preload("User").
		Find(&profiles).Error
	return profiles, err
}

// IsFollowing reports whether the actor->target edge exists.
func (s *ProfileService) IsFollowing(actorID, targetID uint) (bool, error) {
	var count int64
	err := db.DB.Model(&models.ProfileFollow{}).
		Where("follower_id = ? AND following_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}
