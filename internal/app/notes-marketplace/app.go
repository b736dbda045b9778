// Package notesmarketplace собирает и запускает основной HTTP-сервис
// маркетплейса конспектов: хранилище, миграции, кеш, очередь событий,
// бизнес-сервисы и маршруты.
package notesmarketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/notes-marketplace/internal/cache"
	"github.com/magabrotheeeer/notes-marketplace/internal/config"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/notes-marketplace/internal/migrations"
	"github.com/magabrotheeeer/notes-marketplace/internal/paymentprovider"
	accessservice "github.com/magabrotheeeer/notes-marketplace/internal/services/access"
	authservice "github.com/magabrotheeeer/notes-marketplace/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/notes-marketplace/internal/services/catalog"
	ledgerservice "github.com/magabrotheeeer/notes-marketplace/internal/services/ledger"
	lifecycleservice "github.com/magabrotheeeer/notes-marketplace/internal/services/lifecycle"
	reviewservice "github.com/magabrotheeeer/notes-marketplace/internal/services/review"
	"github.com/magabrotheeeer/notes-marketplace/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и внешние подключения приложения.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

// New создает приложение: подключается к внешним системам, применяет
// миграции и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNoteEventQueues())
	if err != nil {
		rabbitConn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.GatewayURL, cfg.ShopID, cfg.SecretKey)

	authService := authservice.NewAuthService(db, jwtMaker)
	lifecycleService := lifecycleservice.NewLifecycleService(db, rabbitmq.NewPublisher(rabbitCh), logger)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, logger)
	reviewService := reviewservice.NewReviewService(lifecycleService, catalogService, logger)
	ledgerService := ledgerservice.NewLedgerService(db, logger)
	accessService := accessservice.NewAccessService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:      authService,
		Lifecycle: lifecycleService,
		Review:    reviewService,
		Ledger:    ledgerService,
		Access:    accessService,
		Catalog:   catalogService,
		Payments:  providerClient,
		DB:        db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
		rabbitCh:   rabbitCh,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		if closeErr := a.rabbitCh.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbit channel", slog.Any("err", closeErr))
		}
		if closeErr := a.rabbitConn.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbit connection", slog.Any("err", closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
