package models

import (
	"time"
)

// DeletedUserID is the sentinel account seeded at migration time. Articles
// whose author is removed are reassigned to it instead of being deleted.
const DeletedUserID uint = 1

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	IsActive  bool      `gorm:"default:false" json:"is_active"` // false until email confirmed
	IsStaff   bool      `gorm:"default:false" json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt for hard delete

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}
