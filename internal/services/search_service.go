package services

import (
	"strings"
	"verba/internal/db"
	"verba/internal/models"
)

// SearchPerPage matches the /search/ page size.
const SearchPerPage = 10

// MinSearchRank is the normalized relevance cutoff: anything scoring below
// it is dropped from the results.
const MinSearchRank = 0.3

// SearchService ranks published articles against a query, title weighted
// above body.
type SearchService struct{}

func NewSearchService() *SearchService {
	return &SearchService{}
}

// Articles returns one page of ranked matches. An empty query or a query
// matching nothing yields an empty page, never an error.
func (s *SearchService) Articles(query string, page int) ([]models.Article, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, nil
	}
	if page < 1 {
		page = 1
	}

	if db.DB.Dialector.Name() == "postgres" {
		return s.rankedPostgres(query, page)
	}
	return s.rankedFallback(query, page)
}

// rankedPostgres runs a weighted full-text query: title carries weight A,
// the descriptions weight B, normalized ts_rank filtered at MinSearchRank.
func (s *SearchService) rankedPostgres(query string, page int) ([]models.Article, int64, error) {
	matchSQL := `
		SELECT a.id,
		       ts_rank(
		           setweight(to_tsvector('simple', a.title), 'A') ||
		           setweight(to_tsvector('simple', a.short_description || ' ' || a.full_description), 'B'),
		           plainto_tsquery('simple', ?)
		       ) AS rank
		FROM articles a
		WHERE a.status = ?`

	var total int64
	err := db.DB.Raw(
		"SELECT COUNT(*) FROM ("+matchSQL+") m WHERE m.rank > ?",
		query, models.StatusPublished, MinSearchRank,
	).Scan(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var ids []uint
	err = db.DB.Raw(
		"SELECT m.id FROM ("+matchSQL+") m WHERE m.rank > ? ORDER BY m.rank DESC LIMIT ? OFFSET ?",
		query, models.StatusPublished, MinSearchRank, SearchPerPage, (page-1)*SearchPerPage,
	).Scan(&ids).Error
	if err != nil || len(ids) == 0 {
		return nil, total, err
	}

	articles, err := s.loadOrdered(ids)
	return articles, total, err
}

// rankedFallback is the dialect-neutral approximation used outside postgres
// (notably the sqlite test databases): title matches rank above body
// matches, newest first within a band, misses below the cutoff are gone by
// construction.
func (s *SearchService) rankedFallback(query string, page int) ([]models.Article, int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	base := `
		SELECT a.id,
		       CASE WHEN LOWER(a.title) LIKE ? THEN 1.0 ELSE 0.4 END AS rank
		FROM articles a
		WHERE a.status = ?
		  AND (LOWER(a.title) LIKE ? OR LOWER(a.short_description) LIKE ? OR LOWER(a.full_description) LIKE ?)`

	var total int64
	err := db.DB.Raw("SELECT COUNT(*) FROM ("+base+") m", pattern, models.StatusPublished, pattern, pattern, pattern).
		Scan(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var ids []uint
	err = db.DB.Raw(
		"SELECT m.id FROM ("+base+") m JOIN articles a2 ON a2.id = m.id ORDER BY m.rank DESC, a2.created_at DESC LIMIT ? OFFSET ?",
		pattern, models.StatusPublished, pattern, pattern, pattern, SearchPerPage, (page-1)*SearchPerPage,
	).Scan(&ids).Error
	if err != nil || len(ids) == 0 {
		return nil, total, err
	}

	articles, err := s.loadOrdered(ids)
	return articles, total, err
}

// loadOrdered fetches full rows and restores the ranked order.
func (s *SearchService) loadOrdered(ids []uint) ([]models.Article, error) {
	var rows []models.Article
	err := db.DB.Preload("Author").Preload("Category").Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Article, len(rows))
	for _, a := range rows {
		byID[a.ID] = a
	}
	ordered := make([]models.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}
