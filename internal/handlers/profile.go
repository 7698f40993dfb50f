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

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{profiles: services.NewProfileService()}
}

func (h *ProfileHandler) Detail(c *gin.Context) {
	profile, err := h.profiles.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "Profile does not exist.")
		return
	}

	followers, _ := h.profiles.Followers(profile.ID)
	following, _ := h.profiles.Following(profile.ID)

	var articles []models.Article
	db.DB.Preload("Author").Preload("Category").
		Where("author_id = ? AND status = ?", profile.UserID, models.StatusPublished).
		Order("fixed DESC, created_at DESC").
		Find(&articles)

	isFollowing := false
	if user := middleware.CurrentUser(c); user != nil && user.ID != profile.UserID {
		if actor, err := h.profiles.ByUserID(user.ID); err == nil {
			isFollowing, _ = h.profiles.IsFollowing(actor.ID, profile.ID)
		}
	}

	Render(c, http.StatusOK, "profiles/detail.html", gin.H{
		"Title":       profile.User.Username,
		"Profile":     profile,
		"Articles":    articles,
		"Followers":   followers,
		"Following":   following,
		"IsFollowing": isFollowing,
	})
}

func (h *ProfileHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	profile, err := h.profiles.ByUserID(user.ID)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Profile does not exist.")
		return
	}

	Render(c, http.StatusOK, "profiles/edit.html", gin.H{
		"Title":   "Edit profile",
		"Profile": profile,
	})
}

// Edit saves user and profile changes in one transaction.
func (h *ProfileHandler) Edit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	profile, err := h.profiles.ByUserID(user.ID)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Profile does not exist.")
		return
	}

	if username := strings.TrimSpace(c.PostForm("username")); username != "" {
		user.Username = username
	}
	profile.Bio = c.PostForm("bio")
	profile.Avatar = c.PostForm("avatar")
	if raw := c.PostForm("birth_date"); raw != "" {
		if birth, perr := time.Parse("2006-01-02", raw); perr == nil {
			profile.BirthDate = &birth
		}
	}

	if err := h.profiles.SaveUser(user, profile); err != nil {
		Render(c, http.StatusBadRequest, "profiles/edit.html", gin.H{
			"Title":   "Edit profile",
			"Profile": profile,
			"Error":   "Could not save the profile.",
		})
		return
	}

	Flash(c, "Profile saved.")
	c.Redirect(http.StatusFound, profile.AbsoluteURL())
}

// Follow toggles the caller's edge towards the target profile and answers
// the page's fetch call with the new state.
func (h *ProfileHandler) Follow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must be logged in to follow."})
		return
	}

	target, err := h.profiles.BySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile does not exist"})
		return
	}
	actor, err := h.profiles.ByUserID(user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile does not exist"})
		return
	}

	followed, err := h.profiles.ToggleFollow(actor.ID, target.ID)
	if err != nil {
		if errors.Is(err, models.ErrSelfFollow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot follow yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle the follow"})
		return
	}

	status := "followed"
	message := "Unfollow"
	if !followed {
		status = "unfollowed"
		message = "Follow"
	}

	c.JSON(http.StatusOK, gin.H{
		"username": actor.User.Username,
		"slug":     actor.Slug,
		"avatar":   actor.GetAvatar(),
		"message":  message,
		"status":   status,
	})
}
