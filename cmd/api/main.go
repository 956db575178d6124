package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/hospital-staff-api/internal/config"
	"github.com/harentsoaR/hospital-staff-api/internal/handlers"
	"github.com/harentsoaR/hospital-staff-api/internal/logger"
	"github.com/harentsoaR/hospital-staff-api/internal/middleware"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/services"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
	"github.com/harentsoaR/hospital-staff-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := store.Connect(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("mongo disconnect")
		}
	}()
	db := client.Database(cfg.MongoDatabase)
	log.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = store.EnsureIndexes(indexCtx, db)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	// --- Services ---
	doctors := store.NewDoctorStore(db)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)

	adminCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	created, err := services.EnsureAdmin(adminCtx, doctors, hasher, cfg.AdminEmail, cfg.AdminPassword, cfg.Upload.DefaultAvatar)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to bootstrap the admin account")
	}
	if created {
		log.WithField("email", cfg.AdminEmail).Info("admin account created")
	}

	sender, err := services.NewSender(cfg.Mail, log)
	if err != nil {
		log.WithError(err).Fatal("failed to configure mail")
	}
	avatars, err := services.NewAvatarStorage(cfg.Upload)
	if err != nil {
		log.WithError(err).Fatal("failed to configure avatar storage")
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	h := handlers.NewHandler(
		cfg,
		doctors,
		store.NewNurseStore(db),
		store.NewAppointmentStore(db),
		hasher,
		tokens,
		services.NewNotificationService(sender, log),
		avatars,
	)
	h.Ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	// --- Router ---
	gin.SetMode(gin.ReleaseMode)
	resp := response.NewResponder(log)
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.WithError(err).Fatal("invalid TRUSTED_PROXIES")
	}
	r.Use(resp.Recovery(), logger.Middleware(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if cfg.Upload.Driver != "s3" {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	limiter := middleware.NewIPRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	h.RegisterRoutes(r, handlers.RouteDeps{
		Responder: resp,
		Auth:      middleware.AuthMiddleware(tokens, resp),
		Limit:     middleware.RateLimit(limiter, resp),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
