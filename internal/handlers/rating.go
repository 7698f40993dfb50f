package handlers

import (
	"errors"
	"net/http"
	"verba/internal/middleware"
	"verba/internal/models"
	"verba/internal/services"
	"verba/internal/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratings *services.RatingService
}

func NewRatingHandler() *RatingHandler {
	return &RatingHandler{ratings: services.NewRatingService()}
}

// Apply runs one rating toggle for the caller's address and answers the
// page's fetch call with the transition and the fresh sum.
func (h *RatingHandler) Apply(c *gin.Context) {
	articleID := utils.StringToUint(c.PostForm("article_id"))
	value := utils.StringToInt(c.PostForm("value"))

	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
	}

	status, sum, err := h.ratings.Apply(articleID, c.ClientIP(), value, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article does not exist"})
			return
		}
		if verr, ok := models.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply the rating"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"rating_sum": sum,
	})
}
