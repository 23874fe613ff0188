package router

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/handlers"
	"github.com/anonto42/nano-midea/social/internal/middleware"
	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/monitoring"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the settings and optional collaborators of the HTTP surface.
type Options struct {
	JWTSecret     string
	UploadDir     string
	MongoDatabase string
	// Firebase enables POST /api/firebase-login when set.
	Firebase middleware.IDTokenVerifier
	// Metrics enables request metrics and GET /metrics when set.
	Metrics *monitoring.Metrics
	Logger  *zap.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, metrics *monitoring.Metrics, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	if metrics != nil {
		e.Use(metrics.Middleware())
	}
	logger.Info("Global middleware configured.")
}

// ErrorHandler renders every error as a failure envelope.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, models.Fail(msg))
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

// SetupRoutes configures all application routes and injects dependencies.
// Posts live in MongoDB when mgClient is set, otherwise in the SQL database.
func SetupRoutes(e *echo.Echo, sqlDB *gorm.DB, mgClient *mongo.Client, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tables := []interface{}{
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Report{},
	}
	if mgClient == nil {
		tables = append(tables, &models.Post{})
	}
	if err := sqlDB.AutoMigrate(tables...); err != nil {
		return err
	}
	logger.Info("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}
	if opts.UploadDir != "" {
		e.Static(handlers.UploadURLPrefix, opts.UploadDir)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(sqlDB)
	commentRepo := repositories.NewPostgresCommentRepository(sqlDB)
	likeRepo := repositories.NewPostgresLikeRepository(sqlDB)
	followRepo := repositories.NewPostgresFollowRepository(sqlDB)
	reportRepo := repositories.NewPostgresReportRepository(sqlDB)
	var postRepo repositories.PostRepository
	if mgClient != nil {
		postRepo = repositories.NewMongoPostRepository(mgClient.Database(opts.MongoDatabase))
		logger.Info("Posts stored in MongoDB.", zap.String("database", opts.MongoDatabase))
	} else {
		postRepo = repositories.NewPostgresPostRepository(sqlDB)
	}

	var recorder handlers.InteractionRecorder
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}

	// --- Unprotected routes for authentication ---
	public := e.Group("/api")
	var firebaseAuth echo.MiddlewareFunc
	if opts.Firebase != nil {
		firebaseAuth = middleware.FirebaseAuthMiddleware(opts.Firebase)
	}
	authHandler := handlers.NewAuthHandler(userRepo, opts.JWTSecret)
	authHandler.RegisterAuthRoutes(public, firebaseAuth)
	logger.Info("Auth routes configured.", zap.Bool("firebase", firebaseAuth != nil))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api", middleware.JWTAuthMiddleware(opts.JWTSecret))
	logger.Info("JWT authentication middleware applied to /api group.")

	userHandler := handlers.NewUserHandler(userRepo, followRepo, opts.UploadDir)
	userHandler.RegisterProfileRoutes(api)
	logger.Info("User profile routes configured.")

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo, likeRepo)
	feedHandler.RegisterFeedRoutes(api)
	logger.Info("Feed routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, commentRepo, likeRepo, opts.UploadDir, logger)
	postHandler.RegisterPostRoutes(api)
	logger.Info("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, logger)
	commentHandler.RegisterCommentRoutes(api)
	logger.Info("Comment routes configured.")

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, recorder)
	likeHandler.RegisterLikeRoutes(api)
	logger.Info("Like routes configured.")

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, recorder)
	followHandler.RegisterFollowRoutes(api)
	logger.Info("Follow routes configured.")

	reportHandler := handlers.NewReportHandler(reportRepo, postRepo)
	reportHandler.RegisterReportRoutes(api)
	logger.Info("Report routes configured.")

	logger.Info("All routes configured.")
	return nil
}
