package mining

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/models"
	"github.com/bsn-social/mining/pkg/logging"
)

// Requirement types the engine can resolve against stats. Anything else
// yields not-achieved with zero progress.
const (
	ReqTotalTokens    = "total_tokens"
	ReqTotalPoints    = "total_points"
	ReqMiningSessions = "mining_sessions"
	ReqMiningTime     = "mining_time"
	ReqStreakDays     = "streak_days"
	ReqPostsCount     = "posts_count"
	ReqCommentsCount  = "comments_count"
	ReqLikesCount     = "likes_count"
	ReqSharesCount    = "shares_count"
)

// achievementBonusStep is the efficiency-multiplier bonus earned per unlock,
// scaled by the achievement's difficulty.
const achievementBonusStep = 0.01

// CheckResult is one achievement's evaluation against current stats
type CheckResult struct {
	AchievementID string  `json:"achievement_id"`
	Achieved      bool    `json:"achieved"`
	Progress      float64 `json:"progress"`
}

// requirementValue resolves the stat a requirement type measures
func requirementValue(stats *models.MiningStats, reqType string) (float64, bool) {
	switch reqType {
	case ReqTotalTokens:
		return stats.TotalTokensEarned, true
	case ReqTotalPoints:
		return float64(stats.TotalPoints), true
	case ReqMiningSessions:
		return float64(stats.TotalMiningSessions), true
	case ReqMiningTime:
		return float64(stats.TotalMiningSeconds), true
	case ReqStreakDays:
		return float64(stats.StreakDays), true
	case ReqPostsCount:
		return float64(stats.TotalPosts), true
	case ReqCommentsCount:
		return float64(stats.TotalComments), true
	case ReqLikesCount:
		return float64(stats.TotalLikes), true
	case ReqSharesCount:
		return float64(stats.TotalShares), true
	default:
		return 0, false
	}
}

// CheckAchievements evaluates the catalog against current stats. Pure: no
// side effects. Completion is a one-way latch: an achievement already
// completed in existing progress is reported achieved regardless of current
// stats, and stored progress never decreases.
func CheckAchievements(stats *models.MiningStats, catalog []*models.Achievement, existing map[string]*models.UserAchievement) []CheckResult {
	results := make([]CheckResult, 0, len(catalog))

	for _, a := range catalog {
		var achieved bool
		var progress float64

		value, known := requirementValue(stats, a.RequirementType)
		if known && a.RequirementValue > 0 {
			progress = math.Min(100, 100*value/a.RequirementValue)
			achieved = value >= a.RequirementValue
		}

		if ex := existing[a.ID]; ex != nil {
			achieved = achieved || ex.Completed
			progress = math.Max(progress, ex.Progress)
		}
		if achieved {
			progress = 100
		}

		results = append(results, CheckResult{
			AchievementID: a.ID,
			Achieved:      achieved,
			Progress:      math.Round(progress*10) / 10,
		})
	}

	return results
}

// AchievementProgress is the catalog row joined with one user's progress
type AchievementProgress struct {
	models.Achievement
	Progress    float64    `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Engine detects newly-satisfied achievements and persists their completion.
// The check itself is pure (CheckAchievements); the engine owns the separate
// side-effect step.
type Engine struct {
	store    Store
	notifier Notifier
	locks    *AccountLocks
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates an achievement engine
func NewEngine(store Store, notifier Notifier, locks *AccountLocks) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		locks:    locks,
		logger:   logging.WithComponent("achievement-engine"),
		now:      time.Now,
	}
}

// Run evaluates and applies achievements for an account. Used when stats may
// have changed outside the recorder, e.g. the explicit check RPC.
func (e *Engine) Run(ctx context.Context, account string) ([]UnlockNotification, error) {
	unlock := e.locks.Lock(account)
	defer unlock()

	stats, err := e.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}
	NormalizeStats(stats)

	return e.Apply(ctx, stats)
}

// Apply persists completions and increased progress for the given stats and
// emits one-time unlock notifications. Callers must hold the account lock.
// Newly completed achievements award their token and point rewards and fold
// a difficulty-scaled bonus into the efficiency multiplier.
func (e *Engine) Apply(ctx context.Context, stats *models.MiningStats) ([]UnlockNotification, error) {
	catalog, err := e.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.ListUserAchievements(ctx, stats.Account)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]*models.UserAchievement, len(rows))
	for _, row := range rows {
		existing[row.AchievementID] = row
	}
	byID := make(map[string]*models.Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	results := CheckAchievements(stats, catalog, existing)

	var unlocks []UnlockNotification
	statsDirty := false

	for _, res := range results {
		ex := existing[res.AchievementID]

		if res.Achieved && (ex == nil || !ex.Completed) {
			now := e.now()
			ua := ex
			if ua == nil {
				ua = &models.UserAchievement{
					Account:       stats.Account,
					AchievementID: res.AchievementID,
					CreatedAt:     now,
				}
			}
			ua.Progress = 100
			ua.Completed = true
			if ua.CompletedAt == nil {
				completedAt := now
				ua.CompletedAt = &completedAt
			}
			ua.UpdatedAt = now

			if err := e.store.SaveUserAchievement(ctx, ua); err != nil {
				e.logger.Warn("Failed to persist achievement completion",
					zap.String("account", stats.Account),
					zap.String("achievement", res.AchievementID),
					zap.Error(err))
				continue
			}

			a := byID[res.AchievementID]
			stats.TotalPoints += a.PointsReward
			stats.DailyPoints += a.PointsReward
			stats.TotalTokensEarned = round4(stats.TotalTokensEarned + a.TokenReward)
			stats.DailyTokensEarned = round4(stats.DailyTokensEarned + a.TokenReward)
			stats.AchievementBonus = round2(stats.AchievementBonus + achievementBonusStep*float64(a.Difficulty))
			statsDirty = true

			unlocks = append(unlocks, UnlockNotification{
				AchievementID: a.ID,
				Title:         a.Title,
				TokenReward:   a.TokenReward,
				PointsReward:  a.PointsReward,
			})
			continue
		}

		// Persist progress only when it strictly increased.
		if ex == nil && res.Progress > 0 {
			now := e.now()
			ua := &models.UserAchievement{
				Account:       stats.Account,
				AchievementID: res.AchievementID,
				Progress:      res.Progress,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := e.store.SaveUserAchievement(ctx, ua); err != nil {
				e.logger.Warn("Failed to persist achievement progress",
					zap.String("account", stats.Account),
					zap.String("achievement", res.AchievementID),
					zap.Error(err))
			}
		} else if ex != nil && !ex.Completed && res.Progress > ex.Progress {
			ex.Progress = res.Progress
			ex.UpdatedAt = e.now()
			if err := e.store.SaveUserAchievement(ctx, ex); err != nil {
				e.logger.Warn("Failed to persist achievement progress",
					zap.String("account", stats.Account),
					zap.String("achievement", res.AchievementID),
					zap.Error(err))
			}
		}
	}

	if statsDirty {
		NormalizeStats(stats)
		if err := e.store.SaveStats(ctx, stats); err != nil {
			return unlocks, err
		}
	}

	for _, unlock := range unlocks {
		e.notifier.NotifyUnlock(ctx, stats.Account, unlock)
	}

	return unlocks, nil
}

// ListProgress joins the catalog with an account's progress rows
func (e *Engine) ListProgress(ctx context.Context, account string) ([]AchievementProgress, error) {
	catalog, err := e.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.ListUserAchievements(ctx, account)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]*models.UserAchievement, len(rows))
	for _, row := range rows {
		existing[row.AchievementID] = row
	}

	out := make([]AchievementProgress, 0, len(catalog))
	for _, a := range catalog {
		p := AchievementProgress{Achievement: *a}
		if ex := existing[a.ID]; ex != nil {
			p.Progress = ex.Progress
			p.Completed = ex.Completed
			p.CompletedAt = ex.CompletedAt
		}
		out = append(out, p)
	}
	return out, nil
}
