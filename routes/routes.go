package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photoshare/handlers"
	"photoshare/middleware"
	"photoshare/session"
)

type Options struct {
	CORSOrigins  []string
	LoginLimiter *middleware.IPRateLimiter
	// ImageDir, when set, is served under /images for the disk backend.
	ImageDir string
}

func SetupRouter(h *handlers.Handler, sessions *session.Manager, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.Metrics())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/images", "/metrics"})))

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.ImageDir != "" {
		router.Static("/images", opts.ImageDir)
	}

	// Public routes (no session required)
	login := []gin.HandlerFunc{h.Login}
	if opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit("login", opts.LoginLimiter)}, login...)
	}
	router.POST("/admin/login", login...)
	router.POST("/user", h.Register)

	protected := router.Group("/")
	protected.Use(middleware.SessionAuth(sessions))

	protected.POST("/admin/logout", h.Logout)

	protected.GET("/user/list", h.ListUsers)
	protected.GET("/user/current", h.CurrentUser)
	protected.GET("/user/:id", h.GetUser)
	protected.DELETE("/user/:id", h.DeleteUser)

	protected.GET("/photosOfUser/:id", h.PhotosOfUser)
	protected.DELETE("/photosOfUser/:id", h.DeletePhotosOfUser)
	protected.POST("/photos/new", h.UploadPhoto)
	protected.DELETE("/photos/:photo_id", h.DeletePhoto)

	protected.POST("/commentsOfPhoto/:photo_id", h.AddComment)
	protected.DELETE("/comments/:photo_id/:comment_id", h.DeleteComment)
	protected.GET("/mentionsOfUser/:id", h.MentionsOfUser)

	protected.POST("/favorites/add/:photo_id", h.AddFavorite)
	protected.DELETE("/favorites/remove/:photo_id", h.RemoveFavorite)
	protected.GET("/favorites", h.ListFavorites)

	return router
}
