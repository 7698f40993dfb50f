package models

import (
	"time"
)

// Category is a node of a forest: ParentID nil means root. Deleting a parent
// cascades to its subtree; articles reference categories with RESTRICT, so a
// subtree with attached articles cannot be removed.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:255" json:"slug"` // blank until first save
	Description string    `gorm:"type:text" json:"description"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	Parent      *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled by the tree queries, not stored
	Depth int `gorm:"-" json:"depth"`
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
