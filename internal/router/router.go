package router

import (
	"net/http"
	"verba/internal/handlers"
	"verba/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	articleHandler := handlers.NewArticleHandler()
	commentHandler := handlers.NewCommentHandler()
	ratingHandler := handlers.NewRatingHandler()
	profileHandler := handlers.NewProfileHandler()
	authHandler := handlers.NewAuthHandler()
	feedbackHandler := handlers.NewFeedbackHandler()

	// Public routes
	r.GET("/", articleHandler.List)
	r.GET("/articles/:slug", articleHandler.Detail)
	r.GET("/category/:slug", articleHandler.ListByCategory)
	r.GET("/tag/:slug", articleHandler.ListByTag)
	r.GET("/search/", articleHandler.Search)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	r.GET("/confirm/:uid/:token", authHandler.Confirm)
	r.GET("/email-confirmation-sent", authHandler.EmailConfirmationSent)
	r.GET("/email-confirmed", authHandler.EmailConfirmed)
	r.GET("/email-confirmation-failed", authHandler.EmailConfirmationFailed)

	r.GET("/password-reset", authHandler.ShowPasswordReset)
	r.POST("/password-reset", authHandler.PasswordReset)
	r.GET("/password-reset/:uid/:token", authHandler.ShowPasswordResetConfirm)
	r.POST("/password-reset/:uid/:token", authHandler.PasswordResetConfirm)

	r.GET("/profile/:slug", profileHandler.Detail)
	r.GET("/feedback", feedbackHandler.Show)
	r.POST("/feedback", feedbackHandler.Create)

	// The rating and comment endpoints check the session themselves: ratings
	// are keyed on the client address and work for anonymous visitors too.
	r.POST("/ratings/", ratingHandler.Apply)
	r.POST("/comments/", commentHandler.Create)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/articles/create", articleHandler.ShowCreate)
		authorized.POST("/articles/create", articleHandler.Create)
		authorized.GET("/articles/:slug/update", articleHandler.ShowUpdate)
		authorized.POST("/articles/:slug/update", articleHandler.Update)
		authorized.POST("/articles/:slug/delete", articleHandler.Delete)

		authorized.DELETE("/comments/:id", commentHandler.Delete)

		authorized.GET("/profile/edit", profileHandler.ShowEdit)
		authorized.POST("/profile/edit", profileHandler.Edit)
		authorized.POST("/profile/:slug/follow/", profileHandler.Follow)

		authorized.GET("/password-change", authHandler.ShowPasswordChange)
		authorized.POST("/password-change", authHandler.PasswordChange)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "The page you asked for does not exist.")
	})
}
