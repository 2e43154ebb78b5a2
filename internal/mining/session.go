package mining

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/models"
	"github.com/bsn-social/mining/pkg/config"
	"github.com/bsn-social/mining/pkg/logging"
)

// Session states
const (
	StatusMining  = "mining"
	StatusStopped = "stopped"
)

// Stop reasons recorded in the status-change audit log
const (
	ReasonUserRequest = "user_request"
	ReasonInactive    = "auto_terminated/inactive"
	ReasonShutdown    = "server_shutdown"
)

// session is the supervised background task scoped to one account's Mining
// state. Cancelling the context stops its heartbeat and inactivity tickers;
// every transition out of Mining cancels it.
type session struct {
	cancel context.CancelFunc
}

// Controller drives the per-account mining state machine: Stopped and Mining.
// While an account is Mining, a supervised goroutine refreshes the heartbeat
// and runs the inactivity check. The store is the source of truth; Sync
// corrects local state to match it, never the reverse.
type Controller struct {
	store    Store
	notifier Notifier
	locks    *AccountLocks
	cfg      *config.MiningConfig
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

// NewController creates a session controller
func NewController(store Store, notifier Notifier, locks *AccountLocks, cfg *config.MiningConfig) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		store:    store,
		notifier: notifier,
		locks:    locks,
		cfg:      cfg,
		logger:   logging.WithComponent("session-controller"),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Start transitions an account from Stopped to Mining. Starting an account
// that is already mining is a no-op and returns the current stats. A failed
// persistence write returns a StartError and the state remains Stopped.
func (c *Controller) Start(ctx context.Context, account string) (*models.MiningStats, error) {
	unlock := c.locks.Lock(account)
	defer unlock()

	stats, err := c.loadOrCreate(ctx, account)
	if err != nil {
		return nil, &StartError{Account: account, Err: err}
	}

	if stats.IsMining {
		c.startSession(account)
		return stats, nil
	}

	now := c.now()
	stats.IsMining = true
	// Streak first: stamping LastActivityAt below would make the previous
	// active day unrecoverable.
	updateStreak(stats, now, c.cfg.Location())
	stats.LastHeartbeat = now
	stats.LastActivityAt = now
	stats.TotalMiningSessions++
	applyDailyRollover(stats, dailyKey(now, c.cfg.Location()))
	NormalizeStats(stats)

	if err := c.store.SaveStats(ctx, stats); err != nil {
		return nil, &StartError{Account: account, Err: err}
	}

	c.appendStatusChange(ctx, account, StatusStopped, StatusMining, ReasonUserRequest)
	c.startSession(account)
	c.notifier.NotifyStatus(ctx, account, StatusMining, ReasonUserRequest)

	c.logger.Info("Mining started", zap.String("account", account))
	return stats, nil
}

// Stop transitions an account from Mining to Stopped. Stopping an account
// that is not mining only clears any leftover local session.
func (c *Controller) Stop(ctx context.Context, account, reason string) (*models.MiningStats, error) {
	unlock := c.locks.Lock(account)
	defer unlock()
	return c.stopLocked(ctx, account, reason)
}

func (c *Controller) stopLocked(ctx context.Context, account, reason string) (*models.MiningStats, error) {
	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}
	if stats == nil || !stats.IsMining {
		c.cancelSession(account)
		return stats, nil
	}

	c.accrue(stats, c.now())
	stats.IsMining = false
	NormalizeStats(stats)

	if err := c.store.SaveStats(ctx, stats); err != nil {
		return nil, err
	}

	c.appendStatusChange(ctx, account, StatusMining, StatusStopped, reason)
	c.cancelSession(account)
	c.notifier.NotifyStatus(ctx, account, StatusStopped, reason)

	c.logger.Info("Mining stopped",
		zap.String("account", account),
		zap.String("reason", reason))
	return stats, nil
}

// Heartbeat refreshes last_heartbeat for a mining account and accrues the
// tokens earned since the previous beat. No state change; a non-mining
// account is left alone.
func (c *Controller) Heartbeat(ctx context.Context, account string) error {
	unlock := c.locks.Lock(account)
	defer unlock()

	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return err
	}
	if stats == nil || !stats.IsMining {
		return nil
	}

	c.accrue(stats, c.now())
	NormalizeStats(stats)
	return c.store.SaveStats(ctx, stats)
}

// accrue advances last_heartbeat to now and credits the tokens mined during
// the elapsed window at the effective rate and multiplier. The window is
// clamped so a long outage cannot mint a burst of tokens.
func (c *Controller) accrue(stats *models.MiningStats, now time.Time) {
	elapsed := now.Sub(stats.LastHeartbeat)
	if elapsed < 0 {
		elapsed = 0
	}
	if max := 2 * c.cfg.InactivityTimeout; elapsed > max {
		elapsed = max
	}

	multiplier := EfficiencyMultiplier(stats)
	earned := round4(stats.EffectiveMiningRate * elapsed.Hours() * multiplier)

	stats.TotalTokensEarned = round4(stats.TotalTokensEarned + earned)
	stats.DailyTokensEarned = round4(stats.DailyTokensEarned + earned)
	stats.TotalMiningSeconds += int64(elapsed.Seconds())
	stats.LastHeartbeat = now
}

// CheckInactivity forces the Mining to Stopped transition when the account
// has had no qualifying activity for longer than the inactivity timeout.
// Reports whether the session was stopped.
func (c *Controller) CheckInactivity(ctx context.Context, account string) (bool, error) {
	unlock := c.locks.Lock(account)
	defer unlock()

	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return false, err
	}
	if stats == nil || !stats.IsMining {
		c.cancelSession(account)
		return false, nil
	}

	now := c.now()
	if now.Sub(stats.LastActivityAt) > c.cfg.InactivityTimeout {
		if _, err := c.stopLocked(ctx, account, ReasonInactive); err != nil {
			return false, err
		}
		return true, nil
	}

	stats.LastInactiveCheck = now
	if err := c.store.SaveStats(ctx, stats); err != nil {
		// Keep previous state; the next tick retries.
		c.logger.Warn("Failed to persist inactivity check",
			zap.String("account", account), zap.Error(err))
	}
	return false, nil
}

// Sync reconciles local session state with the store. The store is
// authoritative: a session running locally for an account the store says is
// stopped gets cancelled, and a store-active account without a local session
// gets one.
func (c *Controller) Sync(ctx context.Context, account string) (*models.MiningStats, error) {
	unlock := c.locks.Lock(account)
	defer unlock()

	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}

	if stats == nil || !stats.IsMining {
		c.cancelSession(account)
		return stats, nil
	}

	NormalizeStats(stats)
	c.startSession(account)
	return stats, nil
}

// SessionHealth is the health view surfaced to the UI
type SessionHealth struct {
	Account      string  `json:"account"`
	IsMining     bool    `json:"is_mining"`
	Healthy      bool    `json:"healthy"`
	HeartbeatAge float64 `json:"heartbeat_age_seconds"`
}

// Health reports session health: healthy only while mining with a heartbeat
// inside the timeout window. Unhealthy sessions are surfaced, not corrected.
func (c *Controller) Health(ctx context.Context, account string) (*SessionHealth, error) {
	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}

	health := &SessionHealth{Account: account}
	if stats == nil {
		return health, nil
	}

	age := c.now().Sub(stats.LastHeartbeat)
	health.IsMining = stats.IsMining
	health.HeartbeatAge = age.Seconds()
	health.Healthy = stats.IsMining && age <= c.cfg.InactivityTimeout
	return health, nil
}

// ApplyDailyReset rolls the daily counters over to today's date if they are
// stale
func (c *Controller) ApplyDailyReset(ctx context.Context, account string) error {
	unlock := c.locks.Lock(account)
	defer unlock()

	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return err
	}
	if stats == nil {
		return nil
	}

	if !applyDailyRollover(stats, dailyKey(c.now(), c.cfg.Location())) {
		return nil
	}
	return c.store.SaveStats(ctx, stats)
}

// ActiveAccounts lists the accounts with a running local session
func (c *Controller) ActiveAccounts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	accounts := make([]string, 0, len(c.sessions))
	for account := range c.sessions {
		accounts = append(accounts, account)
	}
	return accounts
}

// Shutdown stops every local session loop and waits for them to exit. Stored
// mining state is left untouched so sessions resume after a restart.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	for account, s := range c.sessions {
		s.cancel()
		delete(c.sessions, account)
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("Session controller shut down")
}

// loadOrCreate fetches the stats row for an account, creating a normalized
// default row on first contact.
func (c *Controller) loadOrCreate(ctx context.Context, account string) (*models.MiningStats, error) {
	stats, err := c.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		return NormalizeStats(stats), nil
	}

	stats = Normalize(map[string]interface{}{"account": account})
	stats.MiningRate = c.cfg.BaseRate
	stats.MaxSpeedBoost = c.cfg.MaxSpeedBoost
	stats.DailyResetDate = dailyKey(c.now(), c.cfg.Location())
	NormalizeStats(stats)

	if err := c.store.CreateStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Controller) appendStatusChange(ctx context.Context, account, from, to, reason string) {
	change := &models.MiningStatusChange{
		Account:    account,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		CreatedAt:  c.now(),
	}
	if err := c.store.CreateStatusChange(ctx, change); err != nil {
		c.logger.Warn("Failed to append status change",
			zap.String("account", account), zap.Error(err))
	}
}

// startSession launches the supervised heartbeat/inactivity loop for an
// account if one is not already running.
func (c *Controller) startSession(account string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[account]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.sessions[account] = &session{cancel: cancel}
	c.wg.Add(1)
	go c.runSession(ctx, account)
}

// cancelSession stops the account's local session loop if one is running
func (c *Controller) cancelSession(account string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[account]; ok {
		s.cancel()
		delete(c.sessions, account)
	}
}

func (c *Controller) runSession(ctx context.Context, account string) {
	defer c.wg.Done()

	logger := logging.WithAccount(account)
	heartbeat := time.NewTicker(c.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	inactivity := time.NewTicker(c.cfg.InactivityCheckInterval)
	defer inactivity.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := c.Heartbeat(context.Background(), account); err != nil {
				// No rollback, no retry: the next tick picks it up.
				logger.Warn("Heartbeat failed", zap.Error(err))
			}
		case <-inactivity.C:
			if _, err := c.CheckInactivity(context.Background(), account); err != nil {
				logger.Warn("Inactivity check failed", zap.Error(err))
			}
		}
	}
}
