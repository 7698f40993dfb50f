package services

import (
	"sort"
	"strings"
	"verba/internal/db"
	"verba/internal/models"

	"gorm.io/gorm"
)

// CommentService manages the per-article comment forests.
type CommentService struct{}

func NewCommentService() *CommentService {
	return &CommentService{}
}

// Create adds a comment, optionally as a reply. A parent from a different
// article is rejected outright.
func (s *CommentService) Create(articleID, authorID uint, content string, parentID *uint) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ValidationError{"content": "comment must not be empty"}
	}
	if len(content) > models.MaxCommentLen {
		return nil, models.ValidationError{"content": "comment is too long"}
	}

	var article models.Article
	if err := db.DB.First(&article, articleID).Error; err != nil {
		return nil, models.ErrNotFound
	}

	if parentID != nil {
		var parent models.Comment
		if err := db.DB.First(&parent, *parentID).Error; err != nil {
			return nil, models.ErrNotFound
		}
		if parent.ArticleID != articleID {
			return nil, models.ErrCrossArticleParent
		}
	}

	comment := models.Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Content:   content,
		Status:    models.StatusPublished,
		ParentID:  parentID,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	// Reload with the author and profile for the AJAX response
	if err := db.DB.Preload("Author").Preload("Author.Profile").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTree returns the article's published comments flattened for rendering:
// newest first at every level, Depth annotated for indentation.
func (s *CommentService) ListTree(articleID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Preload("Author").Preload("Author.Profile").
		Where("article_id = ? AND status = ?", articleID, models.StatusPublished).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return FlattenThread(comments), nil
}

// Delete removes the comment and its whole reply subtree. Only the comment's
// author may delete it. The sweep is explicit so the cascade does not depend
// on database-level foreign key enforcement.
func (s *CommentService) Delete(commentID, actorID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			return models.ErrNotFound
		}
		if comment.AuthorID != actorID {
			return models.ErrNotOwner
		}

		ids := []uint{commentID}
		frontier := []uint{commentID}
		for len(frontier) > 0 {
			var next []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
				return err
			}
			ids = append(ids, next...)
			frontier = next
		}

		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
}

// LatestPublished feeds the sidebar widget with the newest comments across
// all articles.
func (s *CommentService) LatestPublished(count int) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Preload("Author").Preload("Article").
		Where("status = ?", models.StatusPublished).
		Order("created_at DESC").
		Limit(count).
		Find(&comments).Error
	return comments, err
}

// FlattenThread orders a flat comment set as a rendered thread: top-level
// comments newest first, each directly followed by its reply subtree, every
// level newest first, Depth filled in. Pure function over already-loaded rows.
func FlattenThread(comments []models.Comment) []models.Comment {
	children := make(map[uint][]models.Comment)
	var roots []models.Comment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	newestFirst := func(list []models.Comment) {
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	}
	newestFirst(roots)

	out := make([]models.Comment, 0, len(comments))
	var walk func(node models.Comment, depth int)
	walk = func(node models.Comment, depth int) {
		node.Depth = depth
		out = append(out, node)
		kids := children[node.ID]
		newestFirst(kids)
		for _, k := range kids {
			walk(k, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}
