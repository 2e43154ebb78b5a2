package mining

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bsn-social/mining/pkg/config"
	"github.com/bsn-social/mining/pkg/logging"
)

// Supervisor runs the background sweeps that keep stored mining state honest:
// auto-terminating inactive sessions, rolling daily counters over at the
// configured boundary and reconciling local sessions against the store after
// restarts. Store failures are logged and retried on the next tick.
type Supervisor struct {
	store      Store
	controller *Controller
	cfg        *config.MiningConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewSupervisor creates a supervisor
func NewSupervisor(store Store, controller *Controller, cfg *config.MiningConfig) *Supervisor {
	return &Supervisor{
		store:      store,
		controller: controller,
		cfg:        cfg,
		logger:     logging.WithComponent("mining-supervisor"),
		now:        time.Now,
	}
}

// Run executes the sweep loops until the context is cancelled
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info("Starting mining supervisor",
		zap.Duration("inactivity_check_interval", s.cfg.InactivityCheckInterval),
		zap.Duration("sync_interval", s.cfg.SyncInterval))

	// Pick up sessions that were mining before a restart.
	s.reconcile(ctx)
	s.dailyResetSweep(ctx)

	inactivity := time.NewTicker(s.cfg.InactivityCheckInterval)
	defer inactivity.Stop()
	reconcile := time.NewTicker(s.cfg.SyncInterval)
	defer reconcile.Stop()
	dailyReset := time.NewTicker(time.Minute)
	defer dailyReset.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Mining supervisor stopped")
			return ctx.Err()
		case <-inactivity.C:
			s.inactivitySweep(ctx)
		case <-reconcile.C:
			s.reconcile(ctx)
		case <-dailyReset.C:
			s.dailyResetSweep(ctx)
		}
	}
}

// inactivitySweep checks every store-active session for inactivity. This is
// the safety net for sessions without a live local loop.
func (s *Supervisor) inactivitySweep(ctx context.Context) {
	rows, err := s.store.ListMiningStats(ctx)
	if err != nil {
		s.logger.Error("Failed to list active miners", zap.Error(err))
		return
	}

	stopped := 0
	for _, stats := range rows {
		wasStopped, err := s.controller.CheckInactivity(ctx, stats.Account)
		if err != nil {
			s.logger.Warn("Inactivity check failed",
				zap.String("account", stats.Account), zap.Error(err))
			continue
		}
		if wasStopped {
			stopped++
		}
	}

	if stopped > 0 {
		s.logger.Info("Auto-terminated inactive sessions", zap.Int("count", stopped))
	}
}

// reconcile aligns local sessions with the store. The store is the source of
// truth in both directions: sessions it no longer marks as mining are
// cancelled locally and mining accounts without a local loop get one.
func (s *Supervisor) reconcile(ctx context.Context) {
	rows, err := s.store.ListMiningStats(ctx)
	if err != nil {
		s.logger.Error("Failed to list active miners", zap.Error(err))
		return
	}

	active := make(map[string]bool, len(rows))
	for _, stats := range rows {
		active[stats.Account] = true
		if _, err := s.controller.Sync(ctx, stats.Account); err != nil {
			s.logger.Warn("Session sync failed",
				zap.String("account", stats.Account), zap.Error(err))
		}
	}

	for _, account := range s.controller.ActiveAccounts() {
		if !active[account] {
			if _, err := s.controller.Sync(ctx, account); err != nil {
				s.logger.Warn("Session sync failed",
					zap.String("account", account), zap.Error(err))
			}
		}
	}
}

// dailyResetSweep rolls stale daily counters over to the current date in the
// configured timezone.
func (s *Supervisor) dailyResetSweep(ctx context.Context) {
	today := dailyKey(s.now(), s.cfg.Location())

	rows, err := s.store.ListStaleStats(ctx, today)
	if err != nil {
		s.logger.Error("Failed to list stale stats", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		return
	}

	for _, stats := range rows {
		if err := s.controller.ApplyDailyReset(ctx, stats.Account); err != nil {
			s.logger.Warn("Daily reset failed",
				zap.String("account", stats.Account), zap.Error(err))
		}
	}

	s.logger.Info("Daily counters reset",
		zap.String("date", today), zap.Int("accounts", len(rows)))
}
