package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/app/echo-server/router"
	"github.com/Archanasadhasivam/AgriPricePredict/business/alert"
	"github.com/Archanasadhasivam/AgriPricePredict/business/dataset"
	"github.com/Archanasadhasivam/AgriPricePredict/business/modelstore"
	"github.com/Archanasadhasivam/AgriPricePredict/business/prediction"
	"github.com/Archanasadhasivam/AgriPricePredict/business/trend"
	userService "github.com/Archanasadhasivam/AgriPricePredict/business/user"
	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/internal/middleware"
	"github.com/Archanasadhasivam/AgriPricePredict/internal/repository/notification"
	psqlRepo "github.com/Archanasadhasivam/AgriPricePredict/internal/repository/postgres"
	redisRepo "github.com/Archanasadhasivam/AgriPricePredict/internal/repository/redis"
	"github.com/Archanasadhasivam/AgriPricePredict/internal/rest"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/config"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/database"
	redisClient "github.com/Archanasadhasivam/AgriPricePredict/pkg/database/redis"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/metrics"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting AgriPricePredict", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	metrics.Init()

	db, err := database.Init(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully", "driver", cfg.Database.Driver)

	// Init token store, optional
	var tokenRepo userService.TokenRepository
	var authRequired echo.MiddlewareFunc
	if cfg.Redis.Enabled {
		rdb, err := redisClient.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer func() {
			if err := redisClient.CloseRedisClient(rdb); err != nil {
				logger.Error("Failed to close Redis", err)
			}
		}()
		tokenRepo = redisRepo.NewTokenRepository(rdb)
		logger.Info("Redis connected successfully")
	}

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	alertRepo := psqlRepo.NewAlertRepository(db)
	priceRepo := psqlRepo.NewHistoricalPriceRepository(db)
	predictionRepo := psqlRepo.NewPredictionRepository(db)

	// Init service
	userSvc := userService.NewUserService(userRepo, validate, mailjetEmail, tokenRepo, userService.Options{
		EmailVerificationKey:     cfg.App.AppEmailVerificationKey,
		DeploymentUrl:            cfg.App.AppDeploymentUrl,
		RequireEmailVerification: cfg.App.RequireEmailVerification,
	})
	alertSvc := alert.NewAlertService(alertRepo)
	trendSvc := trend.NewTrendService(priceRepo)
	predictionSvc := loadPredictionService(cfg, predictionRepo)

	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := userSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Error("Failed to bootstrap admin account", err)
		}
		cancel()
	}

	if tokenRepo != nil {
		authRequired = middleware.AuthMiddlewareWithRedis(userSvc)
	} else {
		authRequired = middleware.AuthMiddleware()
	}
	adminOnly := middleware.AdminOnly(userSvc)
	selfOrAdmin := middleware.SelfOrAdmin(userSvc)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	alertHandler := rest.NewAlertHandler(alertSvc)
	trendHandler := rest.NewTrendHandler(trendSvc)
	predictionHandler := rest.NewPredictionHandler(predictionSvc)
	healthHandler := rest.NewHealthHandler(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}, predictionSvc, cfg.App.Version)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.App.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Setup routes
	router.SetupOpsRoutes(e, healthHandler)
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly, selfOrAdmin, middleware.AuthRateLimiter(cfg.App.AuthRateLimitPerMinute))
	router.SetupAlertRoutes(api, alertHandler, authRequired)
	router.SetupTrendRoutes(api, trendHandler, authRequired)
	router.SetupPredictionRoutes(api, predictionHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}

// loadPredictionService reads the dataset and model artifact once. Any
// failure leaves predictions unavailable instead of stopping the server.
func loadPredictionService(cfg *config.Config, repo prediction.PredictionRepository) *prediction.PredictionService {
	table, err := dataset.LoadFile(cfg.Model.DatasetPath, dataset.Options{IdentifierColumn: cfg.Model.IdentifierColumn})
	if err != nil {
		logger.Error("Dataset unavailable, predictions disabled", "path", cfg.Model.DatasetPath, "error", err.Error())
		return prediction.NewPredictionService(nil, nil, repo)
	}

	models, err := modelstore.NewFileStore(cfg.Model.ArtifactPath).Load()
	if err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			logger.Warn("Model artifact not found, run the trainer first", "path", cfg.Model.ArtifactPath)
		} else {
			logger.Error("Model artifact unusable, predictions disabled", "path", cfg.Model.ArtifactPath, "error", err.Error())
		}
		return prediction.NewPredictionService(nil, nil, repo)
	}

	if !table.Chronological {
		logger.Warn("Dataset month columns are not all dates, latest prices follow source column order")
	}

	metrics.ModelsLoaded.Set(float64(len(models)))
	logger.Info("Prediction models loaded", "models", len(models), "rows", len(table.Rows))

	return prediction.NewPredictionService(models, table, repo)
}
