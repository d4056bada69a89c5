// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	"pawfeed/internal/cache"
	"pawfeed/internal/config"
	"pawfeed/internal/database"
	"pawfeed/internal/featureflags"
	"pawfeed/internal/identity"
	"pawfeed/internal/media"
	"pawfeed/internal/middleware"
	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/repository"
	"pawfeed/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	communityRepo repository.CommunityRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager
	uploader     media.Uploader

	feedService       *service.FeedService
	engagementService *service.EngagementService
	commentService    *service.CommentService
	moderationService *service.ModerationService
	postService       *service.PostService
	communityService  *service.CommunityService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:        cfg,
		db:            db,
		redis:         redisClient,
		postRepo:      repository.NewPostRepository(db),
		commentRepo:   repository.NewCommentRepository(db),
		communityRepo: repository.NewCommunityRepository(db),
		featureFlags:  featureflags.NewManager(cfg.FeatureFlags),
	}
	if cfg.MediaDir != "" {
		s.uploader = media.NewDirUploader(cfg.MediaDir)
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
	}

	provider := identity.ContextProvider{}
	s.feedService = service.NewFeedService(s.postRepo)
	s.engagementService = service.NewEngagementService(s.postRepo, s.notifier)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, provider, s.notifier)
	s.moderationService = service.NewModerationService(s.postRepo, s.commentRepo, provider, s.notifier)
	s.postService = service.NewPostService(s.postRepo, s.notifier)
	s.communityService = service.NewCommunityService(s.communityRepo)

	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	s.app = s.buildApp()
	return s, nil
}

func (s *Server) buildApp() *fiber.App {
	app := fiber.New()

	prom := middleware.InitMetrics("pawfeed")
	prom.RegisterAt(app, "/metrics")

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogging())
	app.Use(prom.Middleware)
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api")

	api.Get("/feed", middleware.AuthOptional, s.handleFeedPage)
	api.Get("/posts/:id", middleware.AuthOptional, s.handleGetPost)

	writeLimit := middleware.RateLimit(s.redis, 30, time.Minute, "feed_write")

	api.Post("/posts", middleware.AuthRequired, writeLimit, s.handleCreatePost)
	api.Delete("/posts/:id", middleware.AuthRequired, s.handleDeletePost)
	api.Post("/posts/:id/like", middleware.AuthRequired, writeLimit, s.handleToggleLike)
	api.Get("/posts/:id/liked", middleware.AuthRequired, s.handleHasLiked)
	api.Post("/posts/:id/share", middleware.AuthRequired, writeLimit, s.handleShare)
	api.Post("/posts/:id/flag", middleware.AuthRequired, writeLimit, s.handleFlagPost)
	api.Post("/posts/:id/resolve", middleware.AuthRequired, s.handleResolvePost)

	api.Get("/posts/:id/comments", middleware.AuthOptional, s.handleListComments)
	api.Post("/posts/:id/comments", middleware.AuthRequired, writeLimit, s.handleCreateComment)
	api.Delete("/comments/:id", middleware.AuthRequired, s.handleDeleteComment)
	api.Post("/comments/:id/flag", middleware.AuthRequired, writeLimit, s.handleFlagComment)
	api.Post("/comments/:id/resolve", middleware.AuthRequired, s.handleResolveComment)

	api.Get("/moderation/questions", middleware.AuthRequired, s.handlePendingQuestions)

	api.Get("/flags", middleware.AuthOptional, s.handleFeatureFlags)

	api.Post("/uploads", middleware.AuthRequired, writeLimit, s.handleUploadMedia)
	if dir, ok := s.uploader.(*media.DirUploader); ok {
		app.Static("/media", dir.Dir())
	}

	api.Post("/communities", middleware.AuthRequired, writeLimit, s.handleCreateCommunity)
	api.Get("/communities/:id", middleware.AuthOptional, s.handleGetCommunity)
	api.Post("/communities/:id/join", middleware.AuthRequired, s.handleJoinCommunity)
	api.Post("/communities/:id/leave", middleware.AuthRequired, s.handleLeaveCommunity)

	s.registerWebSocket(app)
	return app
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hub wiring and serves until Shutdown.
func (s *Server) Start() error {
	if s.hub != nil && s.notifier != nil {
		go s.hub.Run(s.shutdownCtx, s.notifier)
	}
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the hub pump and the HTTP listener.
func (s *Server) Shutdown() error {
	s.shutdownFn()
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

// actor returns the authenticated identity; handlers behind AuthRequired
// always find one.
func actor(c *fiber.Ctx) identity.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func respondErr(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, err)
}
