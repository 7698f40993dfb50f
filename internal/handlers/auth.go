package handlers

import (
	"net/http"
	"verba/internal/db"
	"verba/internal/middleware"
	"verba/internal/models"
	"verba/internal/services"
	"verba/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	profiles   *services.ProfileService
	mail       *services.MailService
	dispatcher *services.Dispatcher
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		profiles:   services.NewProfileService(),
		mail:       services.NewMailService(),
		dispatcher: services.GetDispatcher(),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

// Register creates an inactive account and queues the activation email. The
// account stays unusable until the emailed link is confirmed.
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, _, err := h.profiles.CreateUser(username, email, password)
	if err != nil {
		if verr, ok := models.AsValidation(err); ok {
			Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
				"Errors":   verr,
				"Username": username,
				"Email":    email,
			})
			return
		}
		RenderError(c, http.StatusInternalServerError, "Registration failed.")
		return
	}

	h.dispatcher.Enqueue(services.ActivationEmailJob{UserID: user.ID, Mail: h.mail})

	c.Redirect(http.StatusFound, "/email-confirmation-sent")
}

// Confirm handles the emailed activation link. Any failure, a bad token, an
// unknown user, an expired link, lands on the same "failed" page.
func (h *AuthHandler) Confirm(c *gin.Context) {
	uid := utils.StringToUint(c.Param("uid"))
	token := c.Param("token")

	var user models.User
	if err := db.DB.First(&user, uid).Error; err != nil {
		c.Redirect(http.StatusFound, "/email-confirmation-failed")
		return
	}
	if err := services.CheckUserToken(&user, services.TokenActivation, token); err != nil {
		c.Redirect(http.StatusFound, "/email-confirmation-failed")
		return
	}

	if !user.IsActive {
		user.IsActive = true
		if err := db.DB.Save(&user).Error; err != nil {
			c.Redirect(http.StatusFound, "/email-confirmation-failed")
			return
		}
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/email-confirmed")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Wrong email or password.", "Email": email})
		return
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Wrong email or password.", "Email": email})
		return
	}
	if !user.IsActive {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Confirm your email address first.", "Email": email})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowPasswordChange(c *gin.Context) {
	Render(c, http.StatusOK, "auth/password_change.html", nil)
}

// PasswordChange swaps the password for a logged-in user. The old password
// is required; a successful change also invalidates outstanding email tokens
// because they are keyed on the hash.
func (h *AuthHandler) PasswordChange(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")

	if !utils.CheckPasswordHash(oldPassword, user.Password) {
		Render(c, http.StatusBadRequest, "auth/password_change.html", gin.H{"Error": "The current password is wrong."})
		return
	}
	if len(newPassword) < 6 {
		Render(c, http.StatusBadRequest, "auth/password_change.html", gin.H{"Error": "The new password must be at least 6 characters."})
		return
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not change the password.")
		return
	}
	user.Password = hash
	if err := db.DB.Save(user).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not change the password.")
		return
	}

	Flash(c, "Password changed.")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowPasswordReset(c *gin.Context) {
	Render(c, http.StatusOK, "auth/password_reset.html", nil)
}

// PasswordReset queues the reset email. The response never reveals whether
// the address has an account.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	email := c.PostForm("email")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err == nil {
		h.dispatcher.Enqueue(services.PasswordResetEmailJob{UserID: user.ID, Mail: h.mail})
	}

	Render(c, http.StatusOK, "auth/password_reset.html", gin.H{
		"Success": "If the address has an account, a reset link is on its way.",
	})
}

// ShowPasswordResetConfirm validates the emailed link before showing the
// new-password form.
func (h *AuthHandler) ShowPasswordResetConfirm(c *gin.Context) {
	if _, err := h.resetUser(c); err != nil {
		RenderError(c, http.StatusForbidden, "The reset link is invalid or expired.")
		return
	}
	Render(c, http.StatusOK, "auth/password_reset_confirm.html", gin.H{
		"UID":   c.Param("uid"),
		"Token": c.Param("token"),
	})
}

// PasswordResetConfirm sets the new password. The token dies with the old
// hash, so the link is single-use.
func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	user, err := h.resetUser(c)
	if err != nil {
		RenderError(c, http.StatusForbidden, "The reset link is invalid or expired.")
		return
	}

	newPassword := c.PostForm("new_password")
	if len(newPassword) < 6 {
		Render(c, http.StatusBadRequest, "auth/password_reset_confirm.html", gin.H{
			"Error": "The new password must be at least 6 characters.",
			"UID":   c.Param("uid"),
			"Token": c.Param("token"),
		})
		return
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not reset the password.")
		return
	}
	user.Password = hash
	if err := db.DB.Save(user).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not reset the password.")
		return
	}

	Flash(c, "Password reset. You can log in now.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) resetUser(c *gin.Context) (*models.User, error) {
	uid := utils.StringToUint(c.Param("uid"))
	token := c.Param("token")

	var user models.User
	if err := db.DB.First(&user, uid).Error; err != nil {
		return nil, services.ErrBadToken
	}
	if err := services.CheckUserToken(&user, services.TokenPasswordReset, token); err != nil {
		return nil, err
	}
	return &user, nil
}

// Static confirmation pages.

func (h *AuthHandler) EmailConfirmationSent(c *gin.Context) {
	Render(c, http.StatusOK, "auth/email_confirmation_sent.html", nil)
}

func (h *AuthHandler) EmailConfirmed(c *gin.Context) {
	Render(c, http.StatusOK, "auth/email_confirmed.html", nil)
}

func (h *AuthHandler) EmailConfirmationFailed(c *gin.Context) {
	Render(c, http.StatusOK, "auth/email_confirmation_failed.html", nil)
}
