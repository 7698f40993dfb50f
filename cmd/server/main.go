package main

import (
	"fmt"
	"html/template"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"
	"verba/internal/cache"
	"verba/internal/db"
	"verba/internal/middleware"
	"verba/internal/router"
	"verba/internal/services"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Shared cache (optional, view dedup degrades to process-local)
	cache.Init(os.Getenv("REDIS_ADDR"))

	// Background job queue
	dispatcher := services.GetDispatcher()

	// Scheduled database backups
	if raw := os.Getenv("BACKUP_INTERVAL"); raw != "" {
		if interval, err := time.ParseDuration(raw); err == nil {
			services.StartBackupSchedule(dispatcher, interval, os.Getenv("BACKUP_DIR"))
		} else {
			log.Printf("ignoring invalid BACKUP_INTERVAL %q: %v", raw, err)
		}
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("verba_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")
	r.Static("/media", "./web/media")

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Verba server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"gt": func(a, b int) bool {
			return a > b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"indent": func(depth int) int {
			return depth * 24
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)
	r.AddFromFilesFuncs("auth/password_change.html", funcMap, assemble(templatesDir+"/views/auth/password_change.html")...)
	r.AddFromFilesFuncs("auth/password_reset.html", funcMap, assemble(templatesDir+"/views/auth/password_reset.html")...)
	r.AddFromFilesFuncs("auth/password_reset_confirm.html", funcMap, assemble(templatesDir+"/views/auth/password_reset_confirm.html")...)
	r.AddFromFilesFuncs("auth/email_confirmation_sent.html", funcMap, assemble(templatesDir+"/views/auth/email_confirmation_sent.html")...)
	r.AddFromFilesFuncs("auth/email_confirmed.html", funcMap, assemble(templatesDir+"/views/auth/email_confirmed.html")...)
	r.AddFromFilesFuncs("auth/email_confirmation_failed.html", funcMap, assemble(templatesDir+"/views/auth/email_confirmation_failed.html")...)

	// Articles
	r.AddFromFilesFuncs("articles/list.html", funcMap, assemble(templatesDir+"/views/articles/list.html")...)
	r.AddFromFilesFuncs("articles/detail.html", funcMap, assemble(templatesDir+"/views/articles/detail.html")...)
	r.AddFromFilesFuncs("articles/create.html", funcMap, assemble(templatesDir+"/views/articles/create.html")...)
	r.AddFromFilesFuncs("articles/update.html", funcMap, assemble(templatesDir+"/views/articles/update.html")...)
	r.AddFromFilesFuncs("articles/search.html", funcMap, assemble(templatesDir+"/views/articles/search.html")...)

	// Profiles
	r.AddFromFilesFuncs("profiles/detail.html", funcMap, assemble(templatesDir+"/views/profiles/detail.html")...)
	r.AddFromFilesFuncs("profiles/edit.html", funcMap, assemble(templatesDir+"/views/profiles/edit.html")...)

	// Feedback
	r.AddFromFilesFuncs("feedback.html", funcMap, assemble(templatesDir+"/views/feedback.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
