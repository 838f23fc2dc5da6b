package main

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/app"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/di"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/api/routers"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/cache"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/database/db_client"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"strconv"
)

const (
	appName = "contribution-reconciler"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log.Init(appName, logOptions(cfg.Log)...)
	logger := log.GetLogger()

	settings, err := cfg.Reconcile.Settings()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorInvalidConfiguration)
	}
	schedule, err := cfg.Scheduler.Settings()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorInvalidConfiguration)
	}

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}
	defer db.Close()
	if err := pgClient.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToRunMigrations)
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	rdb, err := redisClient.Connect()
	if err != nil {
		// locks fail open and invalidation is best effort, so keep serving
		logger.Warn().Err(err).Msg(errors.ErrorFailedToConnectToRedis)
		if rdb, err = redisClient.Lazy(); err != nil {
			logger.Fatal().Err(err).Msg(errors.ErrorInvalidConfiguration)
		}
	}
	defer rdb.Close()

	container := di.NewContainer(cfg, settings, db, rdb)

	var processes []app.Process
	if schedule.Enabled {
		gateways := make([]models.Gateway, 0, len(schedule.Gateways))
		for _, name := range schedule.Gateways {
			gateway := models.Gateway(name)
			if _, ok := models.ValidGateways[gateway]; !ok {
				logger.Fatal().Str("gateway", name).Msg(errors.ErrUnknownGateway)
			}
			gateways = append(gateways, gateway)
		}
		processes = append(processes, app.NewPollProcess(container.PollInteractor, gateways, schedule.Interval).Run)
	}

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	service.Run(ctx, router, processes...)
}

func logOptions(cfg config.Log) []log.LoggerOption {
	opts := []log.LoggerOption{log.WithLevel(cfg.Level)}
	if console, err := strconv.ParseBool(cfg.Console); err != nil || console {
		opts = append(opts, log.WithConsoleLogger())
	}
	if cfg.File != "" {
		opts = append(opts, log.WithFileLogger(cfg.File))
	}
	return opts
}
