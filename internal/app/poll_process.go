package app

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

type PollExecutor interface {
	Execute(ctx context.Context, gateway models.Gateway) (dtos.PollSummary, error)
}

// PollProcess triggers a poll cycle per gateway on a fixed interval. It is
// the in-process alternative to an external cron hitting the HTTP trigger.
type PollProcess struct {
	executor PollExecutor
	gateways []models.Gateway
	interval time.Duration
	logger   *zerolog.Logger
}

func NewPollProcess(executor PollExecutor, gateways []models.Gateway, interval time.Duration) *PollProcess {
	return &PollProcess{
		executor: executor,
		gateways: gateways,
		interval: interval,
		logger:   log.Component("poll_process"),
	}
}

// Run blocks until ctx is done.
func (p *PollProcess) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Int("gateways", len(p.gateways)).Msg("poll scheduler started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poll scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *PollProcess) tick(ctx context.Context) {
	for _, gateway := range p.gateways {
		if ctx.Err() != nil {
			return
		}
		summary, err := p.executor.Execute(ctx, gateway)
		if err != nil {
			p.logger.Error().Err(err).Str("gateway", string(gateway)).Msg(errors.ErrFailedPollTransactions)
			continue
		}
		if summary.Skipped {
			p.logger.Debug().Str("gateway", string(gateway)).Msg("poll skipped, another run holds the lock")
		}
	}
}
