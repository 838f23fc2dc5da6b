package di

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/domain/gateways"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/api/handlers"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/cache"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/database/repositories"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/gateways/bank"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/gateways/checkout"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/interactor"
	"github.com/mufasadev/contribution-reconciler/pkg/util/repeat"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	WebhookHandler *handlers.WebhookHandler
	PollHandler    *handlers.PollHandler
	ResyncHandler  *handlers.ResyncHandler
	HealthHandler  *handlers.HealthHandler
	PollInteractor *interactor.PollInteractor
	CronSecret     string
	AdminToken     string
}

// NewContainer creates a new Container instance.
func NewContainer(cfg *config.Config, settings config.ReconcileSettings, db *pgxpool.Pool, rdb *redis.Client) *Container {
	transactionRepository := repositories.NewTransactionRepositoryImpl(db)
	lockStore := cache.NewRedisLockStore(rdb)
	cacheInvalidator := cache.NewRedisCacheInvalidator(rdb)

	registry := gateways.Registry{
		models.GatewayBank:     bank.NewClient(cfg.BankGateway, settings.QueryTimeout),
		models.GatewayCheckout: checkout.NewClient(cfg.CheckoutGateway, settings.QueryTimeout),
	}

	reconcileInteractor := interactor.NewReconcileInteractor(transactionRepository, cacheInvalidator, settings.InvalidatePatterns)
	retryInteractor := interactor.NewRetryInteractor(reconcileInteractor, repeat.Policy{
		MaxAttempts:  settings.RetryMaxAttempts,
		InitialDelay: settings.RetryInitialDelay,
		MaxDelay:     settings.RetryMaxDelay,
	})
	lockGuard := interactor.NewLockGuard(lockStore, settings.LockTimeout)

	pollInteractor := interactor.NewPollInteractor(transactionRepository, registry, reconcileInteractor, retryInteractor, lockGuard, interactor.PollSettings{
		BatchSize:    settings.BatchSize,
		MinAge:       settings.MinAge,
		ExpireAfter:  settings.ExpireAfter,
		LockTTL:      settings.LockTTL,
		QueryTimeout: settings.QueryTimeout,
	})
	webhookInteractor := interactor.NewWebhookInteractor(retryInteractor)
	resyncInteractor := interactor.NewResyncInteractor(transactionRepository, registry, reconcileInteractor, settings.ExpireAfter, settings.QueryTimeout)

	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"postgres": db.Ping,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})

	return &Container{
		WebhookHandler: handlers.NewWebhookHandler(webhookInteractor),
		PollHandler:    handlers.NewPollHandler(pollInteractor),
		ResyncHandler:  handlers.NewResyncHandler(resyncInteractor),
		HealthHandler:  healthHandler,
		PollInteractor: pollInteractor,
		CronSecret:     cfg.Auth.CronSecret,
		AdminToken:     cfg.Auth.AdminToken,
	}
}
