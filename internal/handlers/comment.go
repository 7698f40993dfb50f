package handlers

import (
	"errors"
	"net/http"
	"verba/internal/db"
	"verba/internal/middleware"
	"verba/internal/models"
	"verba/internal/services"
	"verba/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
	articles *services.ArticleService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		comments: services.NewCommentService(),
		articles: services.NewArticleService(),
	}
}

// Create posts a comment. The comment form on the article page submits via
// fetch, so the AJAX path answers with the rendered-comment payload; the
// plain form fallback redirects back to the article.
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		if isAjax(c) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You must be logged in to comment."})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	articleID := utils.StringToUint(c.PostForm("article"))
	content := c.PostForm("content")

	var parentID *uint
	if raw := c.PostForm("parent"); raw != "" {
		id := utils.StringToUint(raw)
		if id != 0 {
			parentID = &id
		}
	}

	comment, err := h.comments.Create(articleID, user.ID, content, parentID)
	if err != nil {
		h.fail(c, err)
		return
	}

	if isAjax(c) {
		profileURL := ""
		avatar := ""
		if comment.Author.Profile != nil {
			profileURL = comment.Author.Profile.AbsoluteURL()
			avatar = comment.Author.Profile.GetAvatar()
		}
		c.JSON(http.StatusOK, gin.H{
			"id":               comment.ID,
			"is_child":         comment.IsReply(),
			"parent_id":        comment.ParentID,
			"author":           comment.Author.Username,
			"avatar":           avatar,
			"get_absolute_url": profileURL,
			"time_create":      comment.CreatedAt.Format("2006-01-02 15:04"),
			"content":          comment.Content,
		})
		return
	}

	h.redirectToArticle(c, articleID)
}

// Delete removes the actor's own comment together with its reply subtree.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	commentID := utils.StringToUint(c.Param("id"))

	err := h.comments.Delete(commentID, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotOwner) {
			c.Status(http.StatusForbidden)
			return
		}
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (h *CommentHandler) fail(c *gin.Context, err error) {
	message := "Could not post the comment."
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrCrossArticleParent):
		message = "The article or parent comment does not exist."
		code = http.StatusBadRequest
	default:
		if verr, ok := models.AsValidation(err); ok {
			message = verr.Error()
			code = http.StatusBadRequest
		}
	}

	if isAjax(c) {
		c.JSON(code, gin.H{"error": message})
		return
	}
	Flash(c, message)
	c.Redirect(http.StatusFound, "/")
}

func (h *CommentHandler) redirectToArticle(c *gin.Context, articleID uint) {
	var article models.Article
	if err := db.DB.First(&article, articleID).Error; err == nil {
		c.Redirect(http.StatusFound, article.AbsoluteURL())
		return
	}
	c.Redirect(http.StatusFound, "/")
}
