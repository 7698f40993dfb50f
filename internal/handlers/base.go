package handlers

import (
	"net/http"
	"strconv"
	"verba/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Render injects common variables like 'current user' and the one-shot flash
// message before handing off to the template.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}

	session := sessions.Default(c)
	if flash := session.Get("flash"); flash != nil {
		obj["Flash"] = flash
		session.Delete("flash")
		session.Save()
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the shared error page with a status-specific title.
func RenderError(c *gin.Context, code int, message string) {
	title := "Error"
	switch code {
	case http.StatusForbidden:
		title = "Access denied"
	case http.StatusNotFound:
		title = "Page not found"
	case http.StatusInternalServerError:
		title = "Server error"
	}
	Render(c, code, "error.html", gin.H{
		"Title": title,
		"Error": message,
	})
}

// Flash stores a one-shot message shown on the next rendered page.
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.Set("flash", message)
	session.Save()
}

// isAjax reports whether the request came from the site's fetch helpers.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// pageParam parses ?page=, defaulting to 1.
func pageParam(c *gin.Context) int {
	if p := c.Query("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// totalPages never reports less than one page.
func totalPages(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages == 0 {
		pages = 1
	}
	return pages
}
