// Package server contains the HTTP handlers and routing for the feed API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "potluck/docs" // swagger docs
	"potluck/internal/cache"
	"potluck/internal/config"
	"potluck/internal/database"
	"potluck/internal/middleware"
	"potluck/internal/models"
	"potluck/internal/repository"
	"potluck/internal/service"
	"potluck/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Per-route limits, enforced through Redis outside development and test.
var (
	signupRule  = middleware.RateRule{Name: "signup", Limit: 5, Window: 10 * time.Minute, Policy: middleware.FailClosed}
	loginRule   = middleware.RateRule{Name: "login", Limit: 10, Window: 5 * time.Minute, Policy: middleware.FailClosed}
	postRule    = middleware.RateRule{Name: "create_post", Limit: 10, Window: time.Minute}
	commentRule = middleware.RateRule{Name: "create_comment", Limit: 30, Window: time.Minute}
	likeRule    = middleware.RateRule{Name: "toggle_like", Limit: 60, Window: time.Minute}
	shareRule   = middleware.RateRule{Name: "share", Limit: 30, Window: time.Minute}
	uploadRule  = middleware.RateRule{Name: "upload", Limit: 10, Window: time.Minute}
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	limiter        *middleware.RateLimiter
	postService    *service.PostService
	commentService *service.CommentService
	shareService   *service.ShareService
	uploadService  *service.UploadService
	authService    *service.AuthService
}

// NewServer connects to the database and Redis and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; rate limiting then fails open and token revocation
// is not enforced.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	postRepo := repository.NewPostRepository(db)
	store := storage.NewLocalStore(cfg.UploadDir, cfg.UploadPublicURL)
	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("potluck-api"),
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		postService:    service.NewPostService(postRepo, repository.NewLikeRepository(db)),
		commentService: service.NewCommentService(repository.NewCommentRepository(db), postRepo),
		shareService:   service.NewShareService(repository.NewShareRepository(db), postRepo),
		uploadService:  service.NewUploadService(store, cfg.UploadMaxSizeKB),
		authService: service.NewAuthService(repository.NewUserRepository(db),
			cache.NewRevocations(redisClient), cfg.JWTSecret, ttl),
	}, nil
}

// App builds the Fiber application with middleware and routes. It is built
// once; later calls return the same app.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Potluck API",
		BodyLimit:    (s.config.UploadMaxSizeKB + 512) * 1024,
		ErrorHandler: s.handleError,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// handleError renders errors that escape handlers, including Fiber's own
// routing errors, in the response envelope.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		var appErr error
		switch fe.Code {
		case fiber.StatusNotFound:
			appErr = &models.AppError{Code: models.CodeNotFound, Message: "Resource not found"}
		case fiber.StatusRequestEntityTooLarge:
			appErr = models.NewValidationError("Request body too large")
		default:
			return c.Status(fe.Code).JSON(models.Response{Success: false, Message: fe.Message})
		}
		return respondError(c, appErr)
	}
	return respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Coarse per-IP ceiling kept in process memory.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return respondError(c, models.NewRateLimitError("Too many requests, please try again later"))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if s.config.UploadDir != "" {
		app.Static("/media", s.config.UploadDir)
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", s.limiter.Handler(signupRule), s.Signup)
	auth.Post("/login", s.limiter.Handler(loginRule), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	api.Get("/users/me", s.AuthRequired(), s.GetMe)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.AuthRequired(), s.limiter.Handler(postRule), s.CreatePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Patch("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	api.Post("/likes", s.AuthRequired(), s.limiter.Handler(likeRule), s.ToggleLike)

	comments := api.Group("/comments", s.AuthRequired())
	comments.Post("/", s.limiter.Handler(commentRule), s.CreateComment)
	comments.Delete("/:id", s.DeleteComment)

	api.Post("/shares", s.AuthRequired(), s.limiter.Handler(shareRule), s.SharePost)

	uploads := api.Group("/uploads", s.AuthRequired())
	uploads.Post("/images", s.limiter.Handler(uploadRule), s.UploadImage)
	uploads.Delete("/images", s.DeleteImage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, overall := fiber.StatusOK, "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes the
// database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if replica := database.GetReadDB(); replica != nil {
		if sqlDB, err := replica.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
