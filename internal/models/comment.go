package models

import (
	"time"
)

// MaxCommentLen bounds comment content length.
const MaxCommentLen = 3000

// Comment forms a per-article forest: Parent must belong to the same
// article. Deleting a parent deletes its replies, deleting the article
// deletes the whole scoped tree.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	Article   Article   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Content   string    `gorm:"size:3000;not null" json:"content"`
	Status    string    `gorm:"size:10;default:'published';index:idx_comments_listing,priority:2" json:"status"`
	ParentID  *uint     `gorm:"index:idx_comments_listing,priority:3" json:"parent_id"` // Nullable for top-level comments
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	CreatedAt time.Time `gorm:"index:idx_comments_listing,priority:1,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Nesting depth for rendering indentation, filled by ListTree
	Depth int `gorm:"-" json:"depth"`
}

// IsReply reports whether the comment is a child node.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
