package handlers

import (
	"net/http"
	"strings"
	"verba/internal/db"
	"verba/internal/middleware"
	"verba/internal/models"
	"verba/internal/services"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	mail       *services.MailService
	dispatcher *services.Dispatcher
}

func NewFeedbackHandler() *FeedbackHandler {
	return &FeedbackHandler{
		mail:       services.NewMailService(),
		dispatcher: services.GetDispatcher(),
	}
}

func (h *FeedbackHandler) Show(c *gin.Context) {
	Render(c, http.StatusOK, "feedback.html", gin.H{"Title": "Contact"})
}

// Create stores the submission and queues the operator notification; the
// visitor never waits on SMTP.
func (h *FeedbackHandler) Create(c *gin.Context) {
	subject := strings.TrimSpace(c.PostForm("subject"))
	email := strings.TrimSpace(c.PostForm("email"))
	content := strings.TrimSpace(c.PostForm("content"))

	errs := models.ValidationError{}
	if subject == "" {
		errs["subject"] = "subject must not be empty"
	}
	if !strings.Contains(email, "@") {
		errs["email"] = "enter a valid email address"
	}
	if content == "" {
		errs["content"] = "message must not be empty"
	}
	if len(errs) > 0 {
		Render(c, http.StatusBadRequest, "feedback.html", gin.H{
			"Title":   "Contact",
			"Errors":  errs,
			"Subject": subject,
			"Email":   email,
			"Content": content,
		})
		return
	}

	feedback := models.Feedback{
		Subject:   subject,
		Email:     email,
		Content:   content,
		IPAddress: c.ClientIP(),
	}
	if user := middleware.CurrentUser(c); user != nil {
		feedback.UserID = &user.ID
	}

	if err := db.DB.Create(&feedback).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not send the message.")
		return
	}

	h.dispatcher.Enqueue(services.ContactEmailJob{
		Subject: subject,
		Email:   email,
		Content: content,
		IP:      feedback.IPAddress,
		UserID:  feedback.UserID,
		Mail:    h.mail,
	})

	Flash(c, "Thanks, your message has been sent.")
	c.Redirect(http.StatusFound, "/")
}
