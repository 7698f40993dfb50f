package models

import (
	"time"
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

type Article struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Slug             string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	ShortDescription string    `gorm:"size:500;not null" json:"short_description"`
	FullDescription  string    `gorm:"type:text;not null" json:"full_description"`
	Thumbnail        string    `json:"thumbnail"` // stored image path, optional
	ThumbnailHash    string    `gorm:"size:64" json:"-"` // sha256 of the stored thumbnail content
	Status           string    `gorm:"size:10;default:'published';index:idx_articles_listing,priority:3" json:"status"`
	Fixed            bool      `gorm:"default:false;index:idx_articles_listing,priority:1,sort:desc" json:"fixed"`
	CreatedAt        time.Time `gorm:"index:idx_articles_listing,priority:2,sort:desc" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	AuthorID         uint      `gorm:"not null;index;default:1" json:"author_id"`
	Author           User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET DEFAULT;" json:"author"`
	UpdaterID        *uint     `json:"updater_id"`
	Updater          *User     `gorm:"foreignKey:UpdaterID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"updater"`
	CategoryID       uint      `gorm:"not null;index" json:"category_id"`
	Category         Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Tags             []Tag     `gorm:"many2many:article_tags;" json:"tags"`
	Ratings          []Rating  `gorm:"constraint:OnDelete:CASCADE;" json:"ratings"`

	// Filled by the similar-articles query, no column of its own
	SharedTags int `gorm:"->;-:migration" json:"shared_tags,omitempty"`
}

// SumRating recomputes the tally from the prefetched rating rows.
func (a *Article) SumRating() int {
	sum := 0
	for _, r := range a.Ratings {
		sum += r.Value
	}
	return sum
}

func (a *Article) AbsoluteURL() string {
	return "/articles/" + a.Slug
}

// Tag is a free-form label attached to articles (many-to-many).
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:100;not null" json:"slug"`

	// Filled by PopularTags, no column of its own
	NumTimes int `gorm:"->;-:migration" json:"num_times,omitempty"`
}
