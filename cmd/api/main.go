// @title Votist API
// @version 1.0
// @description Quiz-gated polls, likes and comment threads.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_SESSION_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "votist/cmd/api/docs"
	"votist/internal/adapter"
	"votist/internal/adapter/identity"
	"votist/internal/cache"
	"votist/internal/config"
	"votist/internal/database"
	"votist/internal/domain"
	"votist/internal/handler"
	"votist/internal/logger"
	"votist/internal/middleware"
	"votist/internal/repository"
	"votist/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)

		err := c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		}
		if user, ok := middleware.CurrentUser(c); ok {
			fields = append(fields, zap.String("user_id", user.ID))
		}
		logger.Get().Info("HTTP Request", fields...)

		return err
	}
}

// newProfileProvider builds the provider profile lookup, cached in Redis when
// Redis is configured. It returns nil when no provider API is configured.
func newProfileProvider(ctx context.Context, cfg *config.Config) domain.ProfileProvider {
	appLogger := logger.Get()
	if cfg.Identity.APIBaseURL == "" {
		appLogger.Info("Identity provider API not configured, using token claims only")
		return nil
	}
	client, err := identity.NewHTTPProfileProvider(cfg.Identity.APIBaseURL, cfg.Identity.APISecretKey, 5*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to create profile provider", zap.Error(err))
	}
	if cfg.Redis.Address == "" {
		return client
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, profile lookups are not cached", zap.Error(err))
		return client
	}
	appLogger.Info("Successfully connected to Redis")
	return identity.NewCachedProfileProvider(client, adapter.NewRedisCacheAdapter(redisClient), cfg.Identity.ProfileCacheTTL)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.NewSQLXPostgresDB(ctx, cfg.GetDSN(), cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if cfg.DB.AutoSchema {
		if err := database.EnsureSchema(ctx, db); err != nil {
			appLogger.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	// Repositories
	txManager := repository.NewTransactionManagerAdapter(db)
	userRepo := repository.NewSQLXUserRepository(db)
	quizRepo := repository.NewQuizDatabaseAdapter(db)
	progressRepo := repository.NewSQLXProgressRepository(db)
	postRepo := repository.NewSQLXPostRepository(db)
	voteRepo := repository.NewSQLXVoteRepository(db)
	likeRepo := repository.NewSQLXLikeRepository(db)
	commentRepo := repository.NewSQLXCommentRepository(db)

	// Identity
	verifier, err := service.NewTokenVerifier(cfg.Identity)
	if err != nil {
		appLogger.Fatal("Failed to create token verifier", zap.Error(err))
	}
	resolver := service.NewIdentityResolver(userRepo, newProfileProvider(ctx, cfg))

	// Services
	clock := service.SystemClock()
	gateService := service.NewGateService(quizRepo, progressRepo)
	progressService := service.NewProgressService(quizRepo, progressRepo, txManager, clock)
	quizService := service.NewQuizService(quizRepo, txManager)
	userService := service.NewUserService(userRepo, resolver, progressService)
	postService := service.NewPostService(postRepo, quizRepo, voteRepo, likeRepo, gateService, txManager)
	voteService := service.NewVoteService(postRepo, voteRepo, gateService, txManager, clock)
	likeService := service.NewLikeService(postRepo, commentRepo, likeRepo, gateService, txManager, clock)
	commentService := service.NewCommentService(postRepo, commentRepo, likeRepo, gateService, clock)
	appLogger.Info("Services initialized")

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	quizHandler := handler.NewQuizHandler(quizService, progressService)
	postHandler := handler.NewPostHandler(postService, voteService, likeService, commentService)
	commentHandler := handler.NewCommentHandler(commentService, likeService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + requestIDHeader,
		ExposeHeaders: requestIDHeader,
		MaxAge:        300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return domain.NewInternalError("database unavailable", err)
		}
		return c.SendString("ok")
	})

	protected := middleware.Protected(verifier, resolver)
	optional := middleware.OptionalAuth(verifier, resolver)
	admin := middleware.RequireAdmin()
	limiter := middleware.WriteLimiter(cfg.RateLimit)
	vm := middleware.NewValidationMiddleware()
	validID := vm.ValidateIDParam()

	api := app.Group("/api")

	users := api.Group("/users", protected)
	users.Post("/init", userHandler.InitUser)
	users.Get("/me", userHandler.GetMe)

	api.Get("/quizzes", quizHandler.ListQuizzes)
	api.Post("/quizzes", protected, admin, quizHandler.CreateQuiz)
	api.Put("/quizzes/sequence", protected, admin, quizHandler.UpdateSequence)
	api.Get("/quizzes/search", protected, admin, quizHandler.SearchQuizzes)
	api.Post("/quizzes/:id/start", protected, validID, quizHandler.StartQuiz)
	api.Post("/quizzes/:id/submit", protected, limiter, validID, quizHandler.SubmitQuiz)
	api.Get("/quizzes/:id/result", protected, validID, quizHandler.GetResult)

	api.Get("/progress", protected, quizHandler.ListProgress)
	api.Post("/progress/init", protected, quizHandler.InitProgress)

	api.Get("/posts", vm.ValidatePagination(service.DefaultPostPageSize, service.MaxPostPageSize), postHandler.ListPosts)
	api.Post("/posts", protected, admin, postHandler.CreatePost)
	api.Get("/posts/:id", optional, validID, postHandler.GetPost)
	api.Put("/posts/:id", protected, validID, postHandler.UpdatePost)
	api.Delete("/posts/:id", protected, validID, postHandler.DeletePost)
	api.Post("/posts/:id/vote", protected, limiter, validID, postHandler.Vote)
	api.Delete("/posts/:id/vote", protected, limiter, validID, postHandler.RemoveVote)
	api.Post("/posts/:id/like", protected, limiter, validID, postHandler.LikePost)
	api.Get("/posts/:id/gate", protected, validID, postHandler.CheckGate)
	api.Get("/posts/:id/comments", optional, validID, postHandler.ListComments)

	api.Post("/comments", protected, limiter, commentHandler.CreateComment)
	api.Put("/comments/:id", protected, limiter, validID, commentHandler.UpdateComment)
	api.Delete("/comments/:id", protected, validID, commentHandler.DeleteComment)
	api.Post("/comments/:id/like", protected, limiter, validID, commentHandler.LikeComment)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
