package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"verba/internal/db"
	"verba/internal/middleware"
	"verba/internal/models"
	"verba/internal/services"
	"verba/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter builds a minimal engine carrying only the JSON endpoints, so
// the tests run without the HTML template tree.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", name)
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))

	prev := db.DB
	db.DB = g
	t.Cleanup(func() {
		sqlDB, _ := g.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		db.DB = prev
	})

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("error.html").Parse(`{{.Title}}: {{.Error}}`)))
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("verba_session", store))
	r.Use(middleware.LoadUser())

	ratingHandler := NewRatingHandler()
	commentHandler := NewCommentHandler()
	profileHandler := NewProfileHandler()
	articleHandler := NewArticleHandler()

	r.POST("/ratings/", ratingHandler.Apply)
	r.POST("/comments/", commentHandler.Create)
	r.POST("/profile/:slug/follow/", profileHandler.Follow)

	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	authorized.POST("/articles/create", articleHandler.Create)

	// Test-only login endpoint to obtain a session cookie
	r.GET("/test-login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set("user_id", utils.StringToUint(c.Param("id")))
		session.Save()
		c.Status(http.StatusOK)
	})

	return r
}

func createUser(t *testing.T, name string) (*models.User, *models.Profile) {
	t.Helper()
	user, profile, err := services.NewProfileService().CreateUser(name, name+"@example.com", "password123")
	require.NoError(t, err)
	user.IsActive = true
	require.NoError(t, db.DB.Save(user).Error)
	return user, profile
}

func createArticle(t *testing.T, author *models.User) *models.Article {
	t.Helper()
	category := models.Category{Title: "Tech"}
	require.NoError(t, services.NewCategoryService().Create(&category, nil))
	article := models.Article{
		Title:            "An article",
		ShortDescription: "short",
		FullDescription:  "full",
		AuthorID:         author.ID,
		CategoryID:       category.ID,
	}
	require.NoError(t, services.NewArticleService().Create(&article))
	return &article
}

// login returns the session cookie for the user.
func login(t *testing.T, r *gin.Engine, userID uint) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/test-login/%d", userID), nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0].Name + "=" + cookies[0].Value
}

// postForm fires a form POST, optionally with a session cookie and the AJAX
// marker header.
func postForm(r *gin.Engine, path string, form url.Values, sessionCookie string, ajax bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.7:4711"
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	r.ServeHTTP(w, req)
	return w
}
