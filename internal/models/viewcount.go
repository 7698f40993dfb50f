package models

import (
	"time"
)

// ViewCount is an append-only view log. Deduplication, if any, is a
// record-time policy in the view service, never a storage constraint.
type ViewCount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	Article   Article   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article"`
	IPAddress string    `gorm:"size:45;not null" json:"ip_address"`
	ViewedOn  time.Time `gorm:"autoCreateTime;index" json:"viewed_on"`
}
