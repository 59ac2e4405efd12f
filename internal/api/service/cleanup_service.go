package service

import (
	"apiflow"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PlanSweeper removes plan files left behind by crashed runs.
type PlanSweeper interface {
	CleanupStale(maxAge time.Duration) (int, error)
}

// CleanupService periodically sweeps stale plan files from the engine work dir
type CleanupService struct {
	sweeper PlanSweeper
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	maxAge   time.Duration
	interval time.Duration
}

func NewCleanupService(sweeper PlanSweeper) *CleanupService {
	cfg := apiflow.GetConfig().Engine
	return newCleanupService(sweeper, apiflow.Logger, cfg.PlanMaxAge, cfg.CleanupInterval)
}

func newCleanupService(sweeper PlanSweeper, logger zerolog.Logger, maxAge, interval time.Duration) *CleanupService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupService{
		sweeper:  sweeper,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		maxAge:   maxAge,
		interval: interval,
	}
}

// Start begins the sweep loop
func (slf *CleanupService) Start() {
	slf.logger.Info().Dur("maxAge", slf.maxAge).Dur("interval", slf.interval).Msg("Starting plan cleanup service")
	slf.wg.Add(1)
	go slf.loop()
}

// Stop cancels the loop and waits for an in-flight sweep to finish
func (slf *CleanupService) Stop() {
	slf.logger.Info().Msg("Stopping plan cleanup service")
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Msg("Plan cleanup service stopped")
}

func (slf *CleanupService) loop() {
	defer slf.wg.Done()

	// Sweep immediately to collect leftovers from a previous process
	slf.sweep()

	ticker := time.NewTicker(slf.interval)
	defer ticker.Stop()

	for {
		select {
		case <-slf.ctx.Done():
			return
		case <-ticker.C:
			slf.sweep()
		}
	}
}

func (slf *CleanupService) sweep() {
	defer func() {
		if r := recover(); r != nil {
			slf.logger.Error().Interface("panic", r).Msg("Plan sweep panicked")
		}
	}()

	removed, err := slf.sweeper.CleanupStale(slf.maxAge)
	if err != nil {
		slf.logger.Error().Err(err).Int("removed", removed).Msg("Plan sweep finished with errors")
		return
	}
	slf.logger.Debug().Int("removed", removed).Msg("Plan sweep finished")
}
