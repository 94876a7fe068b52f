// Package server contains the HTTP handlers and wiring for the feed API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"socialfeed/internal/auth"
	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/repository"
	"socialfeed/internal/service"
	"socialfeed/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// Multipart overhead allowed on top of the image size limit.
const formOverheadBytes = 1 << 20

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	fs             afero.Fs
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.TokenManager
	uploads        *storage.UploadStore

	userService     *service.UserService
	postService     *service.PostService
	reactionService *service.ReactionService
	commentService  *service.CommentService
}

// NewServerWithDeps creates a Server using already-initialized dependencies
// (see bootstrap.InitRuntime). redisClient may be nil; per-route rate limits
// then fail open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, fs afero.Fs) (*Server, error) {
	uploads, err := storage.NewUploadStore(fs, cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		fs:             fs,
		promMiddleware: middleware.InitMetrics("socialfeed-api"),
		tokens:         tokens,
		uploads:        uploads,
	}
	server.userService = service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.BcryptCost), tokens)
	server.postService = service.NewPostService(postRepo, uploads).WithLogger(middleware.Logger)
	server.reactionService = service.NewReactionService(reactionRepo, postRepo)
	server.commentService = service.NewCommentService(commentRepo, postRepo)

	return server, nil
}

// App returns the configured Fiber app, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "Social Feed API",
		BodyLimit:    int(s.uploads.MaxBytes()) + formOverheadBytes,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Copies request and trace ids into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Uploaded images are embedded by the SPA from another origin.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// The SPA calls the bare paths; its dev proxy uses /api.
	s.mountAPI(app)
	s.mountAPI(app.Group("/api"))
}

func (s *Server) mountAPI(r fiber.Router) {
	requireAuth := middleware.AuthRequired(s.tokens)
	// Public reads still tag request logs with the caller when a token is sent.
	optionalAuth := middleware.OptionalAuth(s.tokens)

	r.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	r.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	r.Get("/posts", optionalAuth, s.GetPosts)
	r.Post("/post", requireAuth, s.CreatePost)
	// Specific /post/:id/* routes before the generic one.
	r.Get("/post/:id/comments", optionalAuth, s.GetComments)
	r.Get("/post/:id/reaction", requireAuth, s.GetMyReaction)
	r.Get("/post/:id", optionalAuth, s.GetPost)

	r.Post("/like/:postId", requireAuth, s.LikePost)
	r.Post("/dislike/:postId", requireAuth, s.DislikePost)
	r.Get("/likes/:postId", optionalAuth, s.GetReactionCounts)

	r.Post("/comment", requireAuth, s.CreateComment)

	r.Use("/uploads", filesystem.New(filesystem.Config{
		Root:   afero.NewHttpFs(s.fs).Dir(s.uploads.Dir()),
		MaxAge: 3600,
	}))
}

// errorHandler renders errors that escape handlers, including Fiber's own
// (unknown route, body too large).
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := ""
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = models.CodeNotFound
		case fe.Code == fiber.StatusRequestEntityTooLarge, fe.Code == fiber.StatusBadRequest:
			code = models.CodeValidation
		case fe.Code >= fiber.StatusInternalServerError:
			code = models.CodeInternal
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
