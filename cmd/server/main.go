package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"corpintranet/portal/internal/api"
	"corpintranet/portal/internal/chatbot"
	"corpintranet/portal/internal/config"
	"corpintranet/portal/internal/logger"
	"corpintranet/portal/internal/menufeed"
	"corpintranet/portal/internal/repository/mongo"
	"corpintranet/portal/internal/service"
	"corpintranet/portal/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Intranet Portal API
// @version 1.0
// @description Cafeteria protein exchanges, mural, reservations and gamification for employees.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The portal_token cookie works too.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// No logger yet; zap's bootstrap logger is enough to report this.
		logger.Must(zap.NewProduction()).Fatal("could not load config", zap.Error(err))
	}

	log := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Development))
	defer func() { _ = log.Sync() }()
	log.Info("starting intranet portal", zap.String("address", cfg.Server.Address))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB, logger.Named(log, "indexes"))
	}()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger.Named(log, "storage"))
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		log.Warn("s3.bucket_name not set, mural images disabled")
	}

	loc, err := cfg.Cafeteria.Location()
	if err != nil {
		log.Fatal("invalid cafeteria timezone", zap.Error(err))
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	menuRepo := mongo.NewMongoMenuRepository(appDB)
	exchangeRepo := mongo.NewMongoExchangeRepository(appDB)
	postRepo := mongo.NewMongoPostRepository(appDB)
	reservationRepo := mongo.NewMongoReservationRepository(appDB)
	pointsRepo := mongo.NewMongoPointsRepository(appDB)

	// --- Initialize Services ---
	var google service.GoogleVerifier
	if cfg.Google.ClientID != "" {
		google = service.NewGoogleVerifier(cfg.Google.ClientID, cfg.Google.AllowedDomain)
	}
	pointsService := service.NewPointsService(pointsRepo, cfg.Points, logger.Named(log, "points"))
	services := api.Services{
		Auth: service.NewAuthService(userRepo, google, cfg.JWT.Secret, cfg.JWT.Expiration,
			cfg.Auth.AdminEmails, logger.Named(log, "auth")),
		Cafeteria: service.NewCafeteriaService(menuRepo, exchangeRepo, pointsService, loc,
			logger.Named(log, "cafeteria")),
		Mural:       service.NewMuralService(postRepo, userRepo, fileStorage, pointsService, logger.Named(log, "mural")),
		Reservation: service.NewReservationService(reservationRepo, logger.Named(log, "reservations")),
		Points:      pointsService,
		Admin:       service.NewAdminService(userRepo, pointsService, logger.Named(log, "admin")),
	}

	if bot, err := chatbot.LoadDir(cfg.Chatbot.DatasetsDir, cfg.Chatbot.Fallback, logger.Named(log, "chatbot")); err != nil {
		log.Warn("chatbot disabled", zap.Error(err))
	} else {
		services.Chatbot = bot
	}

	// --- Menu Feed ---
	var refresher *menufeed.Refresher
	if cfg.MenuFeed.Source != "" {
		refresher, err = menufeed.NewRefresher(cfg.MenuFeed.Source, cfg.MenuFeed.RefreshCron, loc,
			menufeed.NewLoader(0), services.Cafeteria, logger.Named(log, "menufeed"))
		if err != nil {
			log.Fatal("invalid menu feed settings", zap.Error(err))
		}
		if err := refresher.Start(); err != nil {
			log.Fatal("failed to schedule menu feed", zap.Error(err))
		}
	}

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger(logger.Named(log, "http")))
	router.Use(api.RequestTimeout(cfg.Server.RequestTimeout))

	api.SetupRoutes(router, services, api.CookieSettings{Name: cfg.JWT.CookieName, Secure: cfg.Server.CookieSecure})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ListenAndServe failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if refresher != nil {
		refresher.Stop(ctxShutdown)
	}
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
