package models

import (
	"time"
)

// Rating is at most one row per (article, ip_address). User is informational
// only: an anonymous vote followed by a logged-in re-vote from the same IP
// updates the same row.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_article_ip" json:"article_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user"`
	Value     int       `gorm:"not null;index:idx_ratings_browse,priority:2" json:"value"` // 1 or -1
	IPAddress string    `gorm:"size:45;not null;uniqueIndex:idx_article_ip" json:"ip_address"`
	CreatedAt time.Time `gorm:"index:idx_ratings_browse,priority:1,sort:desc" json:"created_at"`
}
