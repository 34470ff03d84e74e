package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coverline/coverline-backend/api/routes"
	"github.com/coverline/coverline-backend/internal/auth"
	"github.com/coverline/coverline-backend/internal/distributors"
	"github.com/coverline/coverline-backend/internal/media"
	"github.com/coverline/coverline-backend/internal/products"
	"github.com/coverline/coverline-backend/internal/sales"
	"github.com/coverline/coverline-backend/internal/users"
	"github.com/coverline/coverline-backend/internal/warranty"
	"github.com/coverline/coverline-backend/pkg/auth/session"
	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/db"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/mailer"
	"github.com/coverline/coverline-backend/pkg/metrics"
	"github.com/coverline/coverline-backend/pkg/migrate"
	"github.com/coverline/coverline-backend/pkg/redis"
	"github.com/coverline/coverline-backend/pkg/storage/gcs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}

	mailClient, err := mailer.NewClient(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	distributorsRepo := distributors.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	mediaRepo := media.NewRepository(dbClient.DB())
	warrantyRepo := warranty.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          usersRepo,
		Sessions:       sessionManager,
		Tokens:         redisClient,
		Mailer:         mailClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		ResetConfig:    cfg.PasswordReset,
		Logger:         logg,
		ResetURLBase:   cfg.App.PublicURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productsRepo, distributorsRepo, mediaRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	distributorService, err := distributors.NewService(distributors.ServiceParams{
		DB:             dbClient,
		Repo:           distributorsRepo,
		PasswordConfig: cfg.Password,
		ResetConfig:    cfg.PasswordReset,
		Tokens:         redisClient,
		Mailer:         mailClient,
		Logger:         logg,
		ResetURLBase:   cfg.App.PublicURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create distributor service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(dbClient, salesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Repo:      mediaRepo,
		Signer:    gcsClient,
		Deleter:   gcsClient,
		GCSConfig: cfg.GCS,
		Media:     cfg.Media,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	warrantyService, err := warranty.NewService(
		warrantyRepo,
		warranty.WithImageSigner(gcsClient, cfg.GCS.BucketName, cfg.GCS.DownloadURLExpiry),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create warranty service", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		GCS:          gcsClient,
		Sessions:     sessionManager,
		Metrics:      httpMetrics,
		PromGatherer: promRegistry,
		Auth:         authService,
		Warranty:     warrantyService,
		Products:     productService,
		Distributors: distributorService,
		Sales:        salesService,
		Media:        mediaService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
