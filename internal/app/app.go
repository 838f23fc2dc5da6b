package app

import (
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Process is a background loop that stops when its context is done.
type Process func(ctx context.Context) error

type Service struct {
	config *config.Config
	logger *zerolog.Logger
}

// NewService creates a new instance of the service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, logger: log.Component("service")}
}

// Run starts the server and the background processes, then blocks until a
// signal or ctx asks for shutdown. Processes are stopped before the server
// drains.
func (s *Service) Run(ctx context.Context, router chi.Router, processes ...Process) {
	server := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal().Err(err).Msg(errors.ErrorFailedToRunTheServer)
		}
	}()
	s.logger.Info().Msg(fmt.Sprintf("Server is listening on %s", s.config.Server.Addr()))

	procCtx, stopProcesses := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, p := range processes {
		wg.Add(1)
		go func(p Process) {
			defer wg.Done()
			if err := p(procCtx); err != nil && procCtx.Err() == nil {
				s.logger.Error().Err(err).Msg("background process exited")
			}
		}(p)
	}

	s.waitForShutdown(ctx)
	stopProcesses()
	wg.Wait()
	s.shutdown(server)
}

func (s *Service) waitForShutdown(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("Server is shutting down due to context cancellation...")
	case <-quit:
		s.logger.Info().Msg("Server is shutting down...")
	}
}

// shutdown gracefully shuts down the server without interrupting any active connections.
func (s *Service) shutdown(server *http.Server) {
	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		s.logger.Error().Err(err).Msg(errors.ErrorFailedToShutdownTheServer)
	}

	s.logger.Info().Msg("Server stopped")
}
