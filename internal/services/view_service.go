package services

import (
	"context"
	"fmt"
	"os"
	"time"
	"verba/internal/cache"
	"verba/internal/db"
	"verba/internal/models"
	"verba/internal/utils"
)

// PopularLimit caps the popular-articles widget.
const PopularLimit = 10

// PopularArticle pairs an article with its recent view counts.
type PopularArticle struct {
	Article    models.Article
	WeekViews  int64
	TodayViews int64
}

// ViewService appends view rows and ranks articles by recent traffic.
// Deduplication is a record-time policy: within the configured window a
// repeat view from the same address is not recorded. The window is zero
// (off) unless VIEW_DEDUP_WINDOW is set to a duration.
type ViewService struct {
	dedupWindow time.Duration
}

func NewViewService() *ViewService {
	window := time.Duration(0)
	if raw := os.Getenv("VIEW_DEDUP_WINDOW"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			window = d
		}
	}
	return &ViewService{dedupWindow: window}
}

// NewViewServiceWithWindow is the test constructor.
func NewViewServiceWithWindow(window time.Duration) *ViewService {
	return &ViewService{dedupWindow: window}
}

// Record logs one view of an article. Returns true when a row was written,
// false when the dedup window suppressed it.
func (s *ViewService) Record(articleID uint, ip string) (bool, error) {
	if s.dedupWindow > 0 && s.seenRecently(articleID, ip) {
		return false, nil
	}

	view := models.ViewCount{ArticleID: articleID, IPAddress: ip}
	if err := db.DB.Create(&view).Error; err != nil {
		return false, err
	}
	return true, nil
}

// seenRecently consults redis when configured, else the process-local LRU.
// Marking and checking happen in one step so concurrent views race at most
// one extra row, never a lost one.
func (s *ViewService) seenRecently(articleID uint, ip string) bool {
	key := fmt.Sprintf("viewed:%d:%s", articleID, ip)

	if cache.Available() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		set, err := cache.SetNX(ctx, key, s.dedupWindow)
		if err == nil {
			return !set
		}
		// redis hiccup: fall through to the local cache
	}

	local := utils.GetCache()
	if local.Get(key) != nil {
		return true
	}
	local.Set(key, true, s.dedupWindow)
	return false
}

// Popular ranks articles by views over the last 7 days, ties broken by views
// since local midnight, top 10.
func (s *ViewService) Popular() ([]PopularArticle, error) {
	weekAgo := time.Now().AddDate(0, 0, -7)
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	type row struct {
		ArticleID  uint
		WeekViews  int64
		TodayViews int64
	}
	var rows []row
	err := db.DB.Raw(`
		SELECT v.article_id AS article_id,
		       COUNT(*) AS week_views,
		       SUM(CASE WHEN v.viewed_on >= ? THEN 1 ELSE 0 END) AS today_views
		FROM view_counts v
		JOIN articles a ON a.id = v.article_id AND a.status = ?
		WHERE v.viewed_on >= ?
		GROUP BY v.article_id
		ORDER BY week_views DESC, today_views DESC
		LIMIT ?`,
		midnight, models.StatusPublished, weekAgo, PopularLimit,
	).Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ArticleID)
	}
	var articles []models.Article
	if err := db.DB.Preload("Author").Preload("Category").Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	popular := make([]PopularArticle, 0, len(rows))
	for _, r := range rows {
		a, ok := byID[r.ArticleID]
		if !ok {
			continue
		}
		popular = append(popular, PopularArticle{Article: a, WeekViews: r.WeekViews, TodayViews: r.TodayViews})
	}
	return popular, nil
}
