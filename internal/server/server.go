package server

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/config"
	"github.com/gatherly/gatherly/internal/cache"
	"github.com/gatherly/gatherly/internal/handlers"
	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/store"
)

const categoryCacheTTL = time.Minute

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	log := config.NewLogger(cfg)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	redisClient := cache.NewRedisClient()
	if redisClient == nil {
		log.Warn("redis unavailable, category caching disabled")
	}
	categoryCache := cache.New(redisClient, categoryCacheTTL)

	events := store.NewEventStore(db, log)
	categories := store.NewCategoryStore(db, categoryCache, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	setupRoutes(r, db, events, categories)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("server listening")
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, events *store.EventStore, categories *store.CategoryStore) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.StoreMiddleware(events, categories))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:slug", handlers.GetEvent)
		}

		categoryPublic := public.Group("/categories")
		{
			categoryPublic.GET("", handlers.ListCategories)
			categoryPublic.GET("/top", handlers.TopCategories)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.PUT("/:id", handlers.UpdateEvent)
			eventProtected.DELETE("/:id", handlers.DeleteEvent)
			eventProtected.POST("/:id/register", handlers.RegisterForEvent)
			eventProtected.DELETE("/:id/register", handlers.UnregisterFromEvent)
		}

		protected.GET("/me", handlers.GetProfile)
		protected.GET("/me/events", handlers.ListMyEvents)

		admin := protected.Group("/categories")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("", handlers.CreateCategory)
		}
	}
}
