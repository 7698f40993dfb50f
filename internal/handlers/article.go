package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"verba/internal/db"
	"verba/internal/middleware"
	"verba/internal/models"
	"verba/internal/services"
	"verba/internal/utils"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articles   *services.ArticleService
	categories *services.CategoryService
	comments   *services.CommentService
	views      *services.ViewService
	search     *services.SearchService
}

func NewArticleHandler() *ArticleHandler {
	return &ArticleHandler{
		articles:   services.NewArticleService(),
		categories: services.NewCategoryService(),
		comments:   services.NewCommentService(),
		views:      services.NewViewService(),
		search:     services.NewSearchService(),
	}
}

// RequireOwner is the single ownership gate for article mutation. Non-owners
// are bounced to the home page with a flash, never shown the form.
func RequireOwner(c *gin.Context, article *models.Article) bool {
	user := middleware.CurrentUser(c)
	if user == nil || article.AuthorID != user.ID {
		Flash(c, "You are not the author of this article.")
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return false
	}
	return true
}

// sidebarTTL bounds how stale the shared widgets can get.
const sidebarTTL = 2 * time.Minute

type sidebarWidgets struct {
	Categories      []models.Category
	PopularTags     []models.Tag
	LatestComments  []models.Comment
	PopularArticles []services.PopularArticle
}

// sidebar collects the widgets shared by every listing and detail page,
// cached briefly so the four widget queries do not run on every request.
func (h *ArticleHandler) sidebar(data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}

	store := utils.GetCache()
	w, ok := store.Get("sidebar:widgets").(sidebarWidgets)
	if !ok {
		var categories []models.Category
		db.DB.Find(&categories)
		w.Categories = services.BuildForest(categories)

		if tags, err := h.articles.PopularTags(); err == nil {
			w.PopularTags = tags
		}
		if latest, err := h.comments.LatestPublished(5); err == nil {
			w.LatestComments = latest
		}
		if popular, err := h.views.Popular(); err == nil {
			w.PopularArticles = popular
		}
		store.Set("sidebar:widgets", w, sidebarTTL)
	}

	data["Categories"] = w.Categories
	data["PopularTags"] = w.PopularTags
	data["LatestComments"] = w.LatestComments
	data["PopularArticles"] = w.PopularArticles
	return data
}

func (h *ArticleHandler) List(c *gin.Context) {
	page := pageParam(c)
	articles, total, err := h.articles.ListPublished(page)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}

	Render(c, http.StatusOK, "articles/list.html", h.sidebar(gin.H{
		"Title":       "Home",
		"Articles":    articles,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, services.ArticlesPerPage),
	}))
}

func (h *ArticleHandler) ListByCategory(c *gin.Context) {
	slug := c.Param("slug")
	category, err := h.categories.BySlug(slug)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Category does not exist.")
		return
	}

	page := pageParam(c)
	articles, total, err := h.articles.ListByCategory(slug, page)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}

	Render(c, http.StatusOK, "articles/list.html", h.sidebar(gin.H{
		"Title":       category.Title,
		"Category":    category,
		"Articles":    articles,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, services.ArticlesPerPage),
	}))
}

func (h *ArticleHandler) ListByTag(c *gin.Context) {
	slug := c.Param("slug")
	page := pageParam(c)
	articles, total, err := h.articles.ListByTag(slug, page)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Tag does not exist.")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}

	Render(c, http.StatusOK, "articles/list.html", h.sidebar(gin.H{
		"Title":       "Tag: " + slug,
		"Tag":         slug,
		"Articles":    articles,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, services.ArticlesPerPage),
	}))
}

func (h *ArticleHandler) Search(c *gin.Context) {
	query := c.Query("do")
	page := pageParam(c)

	articles, total, err := h.search.Articles(query, page)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Search failed.")
		return
	}

	Render(c, http.StatusOK, "articles/search.html", h.sidebar(gin.H{
		"Title":       "Search: " + query,
		"Query":       query,
		"Articles":    articles,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, services.SearchPerPage),
	}))
}

func (h *ArticleHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	article, comments, err := h.articles.DetailPublished(slug)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Article does not exist.")
		return
	}

	// A failed view write never breaks the page
	h.views.Record(article.ID, c.ClientIP())

	similar, _ := h.articles.Similar(article.ID)
	sum, _ := h.articles.SumRating(article.ID)

	Render(c, http.StatusOK, "articles/detail.html", h.sidebar(gin.H{
		"Title":       article.Title,
		"Article":     article,
		"ContentHTML": utils.RenderMarkdown(article.FullDescription),
		"Comments":    comments,
		"Similar":     similar,
		"RatingSum":   sum,
	}))
}

func (h *ArticleHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "articles/create.html", h.sidebar(gin.H{
		"Title": "New article",
	}))
}

func (h *ArticleHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	article := models.Article{
		Title:            c.PostForm("title"),
		Slug:             c.PostForm("slug"),
		ShortDescription: c.PostForm("short_description"),
		FullDescription:  c.PostForm("full_description"),
		Thumbnail:        c.PostForm("thumbnail"),
		Status:           c.PostForm("status"),
		CategoryID:       utils.StringToUint(c.PostForm("category_id")),
		AuthorID:         user.ID,
	}

	if err := h.articles.Create(&article); err != nil {
		if verr, ok := models.AsValidation(err); ok {
			Render(c, http.StatusBadRequest, "articles/create.html", h.sidebar(gin.H{
				"Title":   "New article",
				"Errors":  verr,
				"Article": article,
			}))
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not save the article.")
		return
	}

	if names := splitTags(c.PostForm("tags")); len(names) > 0 {
		if err := h.articles.SetTags(&article, names); err != nil {
			RenderError(c, http.StatusInternalServerError, "Could not save the tags.")
			return
		}
	}

	c.Redirect(http.StatusFound, article.AbsoluteURL())
}

func (h *ArticleHandler) ShowUpdate(c *gin.Context) {
	article, err := h.articles.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "Article does not exist.")
		return
	}
	if !RequireOwner(c, article) {
		return
	}

	Render(c, http.StatusOK, "articles/update.html", h.sidebar(gin.H{
		"Title":   "Edit: " + article.Title,
		"Article": article,
	}))
}

func (h *ArticleHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	article, err := h.articles.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "Article does not exist.")
		return
	}
	if !RequireOwner(c, article) {
		return
	}

	article.Title = c.PostForm("title")
	article.ShortDescription = c.PostForm("short_description")
	article.FullDescription = c.PostForm("full_description")
	article.Thumbnail = c.PostForm("thumbnail")
	if status := c.PostForm("status"); status != "" {
		article.Status = status
	}
	if id := utils.StringToUint(c.PostForm("category_id")); id != 0 {
		article.CategoryID = id
	}

	if err := h.articles.Update(article, user.ID); err != nil {
		if verr, ok := models.AsValidation(err); ok {
			Render(c, http.StatusBadRequest, "articles/update.html", h.sidebar(gin.H{
				"Title":   "Edit: " + article.Title,
				"Errors":  verr,
				"Article": article,
			}))
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not save the article.")
		return
	}

	if tags := c.PostForm("tags"); tags != "" {
		if err := h.articles.SetTags(article, splitTags(tags)); err != nil {
			RenderError(c, http.StatusInternalServerError, "Could not save the tags.")
			return
		}
	}

	c.Redirect(http.StatusFound, article.AbsoluteURL())
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	article, err := h.articles.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "Article does not exist.")
		return
	}
	if !RequireOwner(c, article) {
		return
	}

	if err := h.articles.Delete(article.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not delete the article.")
		return
	}

	Flash(c, "Article deleted.")
	c.Redirect(http.StatusFound, "/")
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
