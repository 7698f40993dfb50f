package models

import (
	"fmt"
	"time"
)

// Profile is created together with its User (one transaction, single call
// site) and re-saved whenever the user is saved.
type Profile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Slug      string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Avatar    string     `json:"avatar"` // stored image path, optional
	Bio       string     `gorm:"size:500" json:"bio"`
	BirthDate *time.Time `json:"birth_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GetAvatar returns the uploaded avatar or a deterministic generated one.
func (p *Profile) GetAvatar() string {
	if p.Avatar != "" {
		return p.Avatar
	}
	return fmt.Sprintf("https://ui-avatars.com/api/?size=150&background=random&name=%s", p.Slug)
}

// AbsoluteURL is the public profile page path.
func (p *Profile) AbsoluteURL() string {
	return "/profile/" + p.Slug
}

// ProfileFollow is one directed edge of the follow graph: follower follows
// following. Edges are never mirrored.
type ProfileFollow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;index;uniqueIndex:idx_follow_edge" json:"follower_id"`
	Follower    Profile   `gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"follower"`
	FollowingID uint      `gorm:"not null;index;uniqueIndex:idx_follow_edge" json:"following_id"`
	Following   Profile   `gorm:"foreignKey:FollowingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}
