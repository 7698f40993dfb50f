package services

import (
	"verba/internal/models"
	"verba/internal/utils"

	"gorm.io/gorm"
)

// suffixLen keeps disambiguated slugs short while leaving enough room that
// retries practically never run out.
const suffixLen = 4

const maxSlugAttempts = 20

// UniqueSlug derives a slug for model's table from source and disambiguates
// collisions with a random suffix. It is a default-fill operation: callers
// invoke it only when no explicit slug was supplied. The existence check here
// is advisory — create paths still retry on a unique violation, so concurrent
// first saves cannot slip a duplicate through.
func UniqueSlug(tx *gorm.DB, model interface{}, source string) (string, error) {
	base := utils.Slugify(source)
	if base == "" {
		base = utils.RandString(8)
	}

	candidate := base
	for i := 0; i < maxSlugAttempts; i++ {
		var count int64
		if err := tx.Model(model).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + utils.RandString(suffixLen)
	}
	return "", models.ValidationError{"slug": "could not derive a unique slug"}
}
