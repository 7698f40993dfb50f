package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"verba/internal/db"
	"verba/internal/models"

	"gorm.io/gorm"
)

// ArticlesPerPage matches the public listing pages.
const ArticlesPerPage = 3

// SimilarLimit caps the similar-articles widget.
const SimilarLimit = 6

// ArticleService owns the article aggregate: curated read projections,
// slug-filling writes and the thumbnail normalization hook.
type ArticleService struct {
	// normalizeThumbnail runs synchronously in the save path whenever the
	// thumbnail content actually changed since load. The real recompression
	// pipeline is an external collaborator; tests inject a recorder.
	normalizeThumbnail func(path string) error
}

func NewArticleService() *ArticleService {
	return &ArticleService{}
}

// NewArticleServiceWithNormalizer wires a thumbnail normalizer into the save
// path.
func NewArticleServiceWithNormalizer(normalize func(path string) error) *ArticleService {
	return &ArticleService{normalizeThumbnail: normalize}
}

// ListPublished returns one page of published articles, pinned first then
// newest, with author, category and rating rows resolved for the list render.
func (s *ArticleService) ListPublished(page int) ([]models.Article, int64, error) {
	return s.listPage(db.DB.Model(&models.Article{}).Where("status = ?", models.StatusPublished), page)
}

// ListByCategory filters the published listing to one category.
func (s *ArticleService) ListByCategory(slug string, page int) ([]models.Article, int64, error) {
	var category models.Category
	if err := db.DB.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, 0, models.ErrNotFound
	}
	q := db.DB.Model(&models.Article{}).
		Where("status = ? AND category_id = ?", models.StatusPublished, category.ID)
	return s.listPage(q, page)
}

// ListByTag filters the published listing to articles carrying the tag.
func (s *ArticleService) ListByTag(slug string, page int) ([]models.Article, int64, error) {
	var tag models.Tag
	if err := db.DB.Where("slug = ?", slug).First(&tag).Error; err != nil {
		return nil, 0, models.ErrNotFound
	}
	q := db.DB.Model(&models.Article{}).
		Joins("JOIN article_tags ON article_tags.article_id = articles.id AND article_tags.tag_id = ?", tag.ID).
		Where("articles.status = ?", models.StatusPublished)
	return s.listPage(q, page)
}

func (s *ArticleService) listPage(q *gorm.DB, page int) ([]models.Article, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	err := q.Preload("Author").Preload("Category").Preload("Ratings").
		Order("fixed DESC, created_at DESC").
		Limit(ArticlesPerPage).
		Offset((page - 1) * ArticlesPerPage).
		Find(&articles).Error
	return articles, total, err
}

// DetailPublished loads everything one detail render needs: the article with
// author, category, tags and ratings, plus the flattened comment thread.
func (s *ArticleService) DetailPublished(slug string) (*models.Article, []models.Comment, error) {
	var article models.Article
	err := db.DB.Preload("Author").Preload("Author.Profile").
		Preload("Category").Preload("Tags").Preload("Ratings").
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		First(&article).Error
	if err != nil {
		return nil, nil, models.ErrNotFound
	}

	comments, err := NewCommentService().ListTree(article.ID)
	if err != nil {
		return nil, nil, err
	}
	return &article, comments, nil
}

// Create validates and saves a new article, deriving a slug from the title
// when none was supplied. A unique-violation on the slug is resolved by
// drawing a fresh disambiguator, never by failing the request.
func (s *ArticleService) Create(article *models.Article) error {
	if err := validateArticle(article); err != nil {
		return err
	}
	if article.Status == "" {
		article.Status = models.StatusPublished
	}

	explicitSlug := article.Slug != ""
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if article.Slug == "" {
			slug, err := UniqueSlug(db.DB, &models.Article{}, article.Title)
			if err != nil {
				return err
			}
			article.Slug = slug
		}

		err := db.DB.Create(article).Error
		if err == nil {
			return s.syncThumbnail(article)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if explicitSlug {
				return models.ValidationError{"slug": "this slug is already taken"}
			}
			// Lost a race for the slug, draw another one
			article.Slug = ""
			continue
		}
		return err
	}
	return models.ValidationError{"slug": "could not derive a unique slug"}
}

// Update saves changes, records the updater and re-runs the thumbnail side
// effect only when the image content is different from what was persisted.
func (s *ArticleService) Update(article *models.Article, updaterID uint) error {
	if err := validateArticle(article); err != nil {
		return err
	}
	if article.Slug == "" {
		slug, err := UniqueSlug(db.DB, &models.Article{}, article.Title)
		if err != nil {
			return err
		}
		article.Slug = slug
	}
	article.UpdaterID = &updaterID

	if err := db.DB.Save(article).Error; err != nil {
		return err
	}
	return s.syncThumbnail(article)
}

// Delete removes the article with its comments, ratings and view rows. The
// sweep is explicit inside one transaction so it does not depend on
// database-level cascade enforcement.
func (s *ArticleService) Delete(id uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, id).Error; err != nil {
			return models.ErrNotFound
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ViewCount{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&article).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
}

// BySlug loads one article regardless of status (edit/delete flows).
func (s *ArticleService) BySlug(slug string) (*models.Article, error) {
	var article models.Article
	if err := db.DB.Preload("Category").Preload("Tags").Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, models.ErrNotFound
	}
	return &article, nil
}

// SumRating recomputes the tally from the rating rows on demand. Articles
// carry few ratings, so the scan is cheaper than keeping a counter honest.
func (s *ArticleService) SumRating(articleID uint) (int, error) {
	var sum *int
	err := db.DB.Model(&models.Rating{}).Where("article_id = ?", articleID).
		Select("SUM(value)").Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// Similar finds published articles sharing at least one tag, most shared
// tags first, newer first among equals, capped to SimilarLimit.
func (s *ArticleService) Similar(articleID uint) ([]models.Article, error) {
	var articles []models.Article
	err := db.DB.Raw(`
		SELECT a.*, COUNT(at2.tag_id) AS shared_tags
		FROM articles a
		JOIN article_tags at2 ON at2.article_id = a.id
		WHERE at2.tag_id IN (SELECT tag_id FROM article_tags WHERE article_id = ?)
		  AND a.id <> ?
		  AND a.status = ?
		GROUP BY a.id
		ORDER BY shared_tags DESC, a.created_at DESC
		LIMIT ?`,
		articleID, articleID, models.StatusPublished, SimilarLimit,
	).Scan(&articles).Error
	return articles, err
}

// SetTags replaces the article's tag set, creating missing tags on the fly.
func (s *ArticleService) SetTags(article *models.Article, names []string) error {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		var tag models.Tag
		err := db.DB.Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slug, serr := UniqueSlug(db.DB, &models.Tag{}, name)
			if serr != nil {
				return serr
			}
			tag = models.Tag{Name: name, Slug: slug}
			if err = db.DB.Create(&tag).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	return db.DB.Model(article).Association("Tags").Replace(tags)
}

// PopularTags lists tags by how many articles carry them, busiest first.
func (s *ArticleService) PopularTags() ([]models.Tag, error) {
	var tags []models.Tag
	err := db.DB.Raw(`
		SELECT t.*, COUNT(at.article_id) AS num_times
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		GROUP BY t.id
		ORDER BY num_times DESC`).Scan(&tags).Error
	return tags, err
}

// syncThumbnail compares the persisted content hash against the file on disk
// and runs the normalization hook only when the bytes actually changed, so
// saves that do not touch the image never recompress it.
func (s *ArticleService) syncThumbnail(article *models.Article) error {
	if article.Thumbnail == "" {
		return nil
	}

	content, err := os.ReadFile(article.Thumbnail)
	if err != nil {
		// Missing file is not a save failure; the hash stays as-is
		return nil
	}
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	if hash == article.ThumbnailHash {
		return nil
	}

	if s.normalizeThumbnail != nil {
		if err := s.normalizeThumbnail(article.Thumbnail); err != nil {
			return err
		}
	}

	article.ThumbnailHash = hash
	return db.DB.Model(&models.Article{}).Where("id = ?", article.ID).
		Update("thumbnail_hash", hash).Error
}

func validateArticle(article *models.Article) error {
	errs := models.ValidationError{}
	if strings.TrimSpace(article.Title) == "" {
		errs["title"] = "title must not be empty"
	}
	if strings.TrimSpace(article.ShortDescription) == "" {
		errs["short_description"] = "short description must not be empty"
	}
	if strings.TrimSpace(article.FullDescription) == "" {
		errs["full_description"] = "full description must not be empty"
	}
	if article.CategoryID == 0 {
		errs["category"] = "category is required"
	}
	if article.Status != "" && article.Status != models.StatusPublished && article.Status != models.StatusDraft {
		errs["status"] = "status must be published or draft"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
