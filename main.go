package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"musical-catalog/config"
	"musical-catalog/database"
	adminapi "musical-catalog/internal/api/admin"
	authapi "musical-catalog/internal/api/auth"
	musicalsapi "musical-catalog/internal/api/musicals"
	usersapi "musical-catalog/internal/api/users"
	routes "musical-catalog/internal/app/http"
	"musical-catalog/internal/app/http/middleware"
	"musical-catalog/internal/auth"
	"musical-catalog/internal/catalog"
	"musical-catalog/internal/domain/access"
	"musical-catalog/internal/infra/gormstore"
	"musical-catalog/internal/infra/posters"
	"musical-catalog/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		logging.New(os.Stderr, "text", "error").Error(context.Background(), "fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !dotenv {
		log.Info(ctx, "no .env file found, using environment")
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info(ctx, "connected to database")

	rule, err := access.RuleFor(cfg.UnreleasedVisibility)
	if err != nil {
		return err
	}
	policy := access.NewPolicy(rule, time.Now)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	accounts := auth.NewAccounts(gormstore.NewUsers(db), tokens, log)
	if _, err := accounts.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	service := catalog.NewService(gormstore.NewMusicals(db), policy, log)

	var uploader musicalsapi.PosterUploader
	if cfg.MinIO.Enabled() {
		u, err := posters.New(cfg.MinIO, cfg.MaxUploadSize)
		if err != nil {
			return err
		}
		if err := u.EnsureBucket(ctx); err != nil {
			return err
		}
		uploader = u
		log.Info(ctx, "poster uploads enabled", "bucket", cfg.MinIO.Bucket)
	}

	var authOpts []authapi.Option
	if cfg.Google.Enabled() {
		secure := strings.HasPrefix(cfg.Google.RedirectURL, "https://")
		authOpts = append(authOpts, authapi.WithGoogle(auth.NewGoogle(cfg.Google), cfg.Google.FrontendRedirect, secure))
		log.Info(ctx, "google sign-in enabled")
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadSize

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Tokens:    tokens,
		Musicals:  musicalsapi.NewHandler(service, uploader, log),
		Auth:      authapi.NewHandler(accounts, log, authOpts...),
		Users:     usersapi.NewHandler(accounts, policy, log),
		Admin:     adminapi.NewHandler(accounts, log),
		AuthLimit: middleware.RateLimit(ctx, cfg.AuthRateLimit.RPS, cfg.AuthRateLimit.Burst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "unreleased_visibility", cfg.UnreleasedVisibility)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
