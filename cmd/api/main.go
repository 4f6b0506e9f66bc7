package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"gorm.io/gorm/logger"

	"github.com/petermazzocco/thumbnail-mixer/internal/auth"
	"github.com/petermazzocco/thumbnail-mixer/internal/config"
	"github.com/petermazzocco/thumbnail-mixer/internal/events"
	"github.com/petermazzocco/thumbnail-mixer/internal/handlers"
	"github.com/petermazzocco/thumbnail-mixer/internal/imaging"
	"github.com/petermazzocco/thumbnail-mixer/internal/llm"
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
	"github.com/petermazzocco/thumbnail-mixer/internal/storage"
	"github.com/petermazzocco/thumbnail-mixer/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection
	dbLogLevel := logger.Warn
	if !cfg.Production() {
		dbLogLevel = logger.Info
	}
	db, err := store.Open(cfg.DatabaseDriver, cfg.DSN, dbLogLevel)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		client, err := events.NewClient(cfg.RabbitMQURL)
		if err != nil {
			log.Warn("events disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	// OAUTH
	goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.OAuthCallbackURL, "email", "profile"))

	// Session store
	cookies := auth.NewCookieStore(cfg.SessionSecret, cfg.SessionMaxAge, cfg.Production())
	gothic.Store = cookies

	thumbnailRepo := store.NewGORMThumbnailRepository(db)
	completer := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	h := handlers.New(
		services.NewThumbnailService(thumbnailRepo, completer, objects, imaging.Dimensions, publisher, log),
		services.NewMixService(store.NewGORMMixRepository(db), thumbnailRepo, completer, publisher, log),
		auth.NewSessions(cookies, store.NewGORMUserRepository(db), log),
		cfg.MaxUploadSize,
		log,
	)

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", h.Routes(cfg.RateLimit))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newObjectStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageSupabase:
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	default:
		client, err := storage.NewR2Client(ctx, cfg.AccountID, cfg.AccessKeyID, cfg.AccessKeySecret)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, cfg.BucketName, cfg.PublicURL), nil
	}
}
