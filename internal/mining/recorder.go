package mining

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/models"
	"github.com/bsn-social/mining/pkg/config"
	"github.com/bsn-social/mining/pkg/logging"
)

// Result is the structured outcome of recording an activity. A reached daily
// cap is a normal terminal outcome, not an error: Rewarded is false, Limited
// is true and Message explains why.
type Result struct {
	Rewarded bool                   `json:"rewarded"`
	Limited  bool                   `json:"limited"`
	Message  string                 `json:"message,omitempty"`
	Activity *models.MiningActivity `json:"activity,omitempty"`
	Stats    *models.MiningStats    `json:"stats,omitempty"`
	Unlocked []UnlockNotification   `json:"unlocked,omitempty"`
}

// Recorder records qualifying user activities against the limit table and
// writes rewards through to the store.
type Recorder struct {
	store  Store
	engine *Engine
	locks  *AccountLocks
	cfg    *config.MiningConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates an activity recorder. The engine may be nil, in which
// case achievements are not evaluated inline.
func NewRecorder(store Store, engine *Engine, locks *AccountLocks, cfg *config.MiningConfig) *Recorder {
	return &Recorder{
		store:  store,
		engine: engine,
		locks:  locks,
		cfg:    cfg,
		logger: logging.WithComponent("activity-recorder"),
		now:    time.Now,
	}
}

// RecordActivity applies one qualifying activity for an account. The session
// must be mining; otherwise ErrNotMining is returned with no side effects.
// Once the type's daily cap is reached every further call that day returns
// the same limit outcome with no partial increments and no boost change.
func (r *Recorder) RecordActivity(ctx context.Context, account string, activityType ActivityType) (*Result, error) {
	limit, ok := LimitFor(activityType)
	if !ok {
		return &Result{Message: "unknown activity type"}, ErrUnknownActivity
	}

	unlock := r.locks.Lock(account)
	defer unlock()

	stats, err := r.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}
	if stats == nil || !stats.IsMining {
		return &Result{Message: "mining is not active"}, ErrNotMining
	}
	NormalizeStats(stats)

	now := r.now()
	loc := r.cfg.Location()
	rolled := applyDailyRollover(stats, dailyKey(now, loc))

	if dailyCount(stats, activityType) >= limit.DailyCap {
		if rolled {
			// The rollover alone is worth persisting even though the
			// activity is not.
			if err := r.store.SaveStats(ctx, stats); err != nil {
				r.logger.Warn("Failed to persist daily rollover",
					zap.String("account", account), zap.Error(err))
			}
		}
		return &Result{Limited: true, Message: "daily limit reached", Stats: stats}, nil
	}

	updateStreak(stats, now, loc)

	multiplier := EfficiencyMultiplier(stats)
	tokens := ActivityTokens(limit.Points, multiplier)

	activity := &models.MiningActivity{
		Account:      account,
		ActivityType: string(activityType),
		Points:       limit.Points,
		TokensEarned: tokens,
		Multiplier:   multiplier,
		MiningRate:   stats.EffectiveMiningRate,
		CreatedAt:    now,
	}
	if err := r.store.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	bumpCounters(stats, activityType)
	stats.TotalPoints += limit.Points
	stats.DailyPoints += limit.Points
	stats.TotalTokensEarned = round4(stats.TotalTokensEarned + tokens)
	stats.DailyTokensEarned = round4(stats.DailyTokensEarned + tokens)
	if boosted := stats.CurrentSpeedBoost + limit.SpeedBoost; boosted < stats.MaxSpeedBoost {
		stats.CurrentSpeedBoost = boosted
	} else {
		stats.CurrentSpeedBoost = stats.MaxSpeedBoost
	}
	stats.LastActivityAt = now
	NormalizeStats(stats)

	if err := r.store.SaveStats(ctx, stats); err != nil {
		return nil, err
	}

	result := &Result{Rewarded: true, Activity: activity, Stats: stats}

	if r.engine != nil {
		unlocked, err := r.engine.Apply(ctx, stats)
		if err != nil {
			// Achievement evaluation is best effort here; the next stats
			// change re-runs it.
			r.logger.Warn("Achievement evaluation failed",
				zap.String("account", account), zap.Error(err))
		}
		result.Unlocked = unlocked
	}

	return result, nil
}
