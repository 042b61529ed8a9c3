package worker

import (
	"context"
	"errors"
	"time"

	"github.com/plpainel/tokenapi/internal/config"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultGapSweepInterval = 5 * time.Minute
	gapSweepBatchSize       = 100
)

// Service async queue service
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the queue service
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the queue server and the credit gap sweep loop
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.ReconcileService != nil {
		go s.runGapSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop stops the queue server
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runGapSweepLoop periodically repairs paid orders that never got
// their balance credit
func (s *Service) runGapSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ReconcileService == nil {
		return
	}
	interval := defaultGapSweepInterval
	if s.consumer.Config != nil && s.consumer.Config.Reconcile.GapSweepIntervalSeconds > 0 {
		interval = time.Duration(s.consumer.Config.Reconcile.GapSweepIntervalSeconds) * time.Second
	}
	runOnce := func() {
		repaired, err := s.consumer.ReconcileService.SweepCreditGaps(ctx, gapSweepBatchSize)
		if err != nil {
			logger.Warnw("worker_gap_sweep_failed", "error", err)
			return
		}
		if repaired > 0 {
			logger.Infow("worker_gap_sweep_repaired", "count", repaired)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
