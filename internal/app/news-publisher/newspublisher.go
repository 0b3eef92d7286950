// Package newspublisher собирает приложение: хранилище, миграции, кэш,
// сервисы, интеграцию с X и HTTP сервер.
package newspublisher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/news-publisher/internal/cache"
	"github.com/magabrotheeeer/news-publisher/internal/config"
	"github.com/magabrotheeeer/news-publisher/internal/lib/jwt"
	"github.com/magabrotheeeer/news-publisher/internal/lib/smtp"
	"github.com/magabrotheeeer/news-publisher/internal/migrations"
	accountservice "github.com/magabrotheeeer/news-publisher/internal/services/account"
	authservice "github.com/magabrotheeeer/news-publisher/internal/services/auth"
	contentservice "github.com/magabrotheeeer/news-publisher/internal/services/content"
	feedservice "github.com/magabrotheeeer/news-publisher/internal/services/feed"
	senderservice "github.com/magabrotheeeer/news-publisher/internal/services/sender"
	subscriptionservice "github.com/magabrotheeeer/news-publisher/internal/services/subscription"
	"github.com/magabrotheeeer/news-publisher/internal/storage/repository"
	"github.com/magabrotheeeer/news-publisher/internal/twitter"
)

// App инкапсулирует HTTP сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создаёт приложение: подключает базу, применяет миграции,
// поднимает кэш и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	transport := smtp.NewTransport(cfg, logger)

	twitterClient := twitter.New(cfg.Twitter, twitter.NewFileStore(cfg.Twitter.TokenPath), logger)

	authService := authservice.New(db, jwtMaker)
	accountService := accountservice.New(db, logger, cfg.ResetTokenTTL)
	feedService := feedservice.New(db)
	subscriptionService := subscriptionservice.New(db)
	senderService := senderservice.NewSenderService(logger, transport, cfg.AppBaseURL)
	contentService := contentservice.New(db, senderService, twitterClient, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		JWTMaker:     jwtMaker,
		Users:        db,
		Auth:         authService,
		Account:      accountService,
		Feed:         feedService,
		Subscription: subscriptionService,
		Sender:       senderService,
		Content:      contentService,
		Twitter:      twitterClient,
		Cache:        cacheRedis,
		Storage:      db,
	})

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
