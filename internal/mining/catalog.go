package mining

import (
	"context"

	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/models"
	"github.com/bsn-social/mining/pkg/logging"
)

// Catalog returns the static achievement definitions. The catalog is fixed
// at build time and seeded into the store by EnsureCatalog.
func Catalog() []*models.Achievement {
	return []*models.Achievement{
		{
			ID:               "first_tokens",
			Title:            "First Tokens",
			Description:      "Earn your first mined token",
			Category:         models.AchievementCategoryMining,
			Difficulty:       1,
			RequirementType:  ReqTotalTokens,
			RequirementValue: 1,
			TokenReward:      0.5,
			PointsReward:     10,
		},
		{
			ID:               "token_collector",
			Title:            "Token Collector",
			Description:      "Accumulate 100 mined tokens",
			Category:         models.AchievementCategoryToken,
			Difficulty:       3,
			RequirementType:  ReqTotalTokens,
			RequirementValue: 100,
			TokenReward:      10,
			PointsReward:     200,
		},
		{
			ID:               "point_starter",
			Title:            "Point Starter",
			Description:      "Collect 100 activity points",
			Category:         models.AchievementCategorySystem,
			Difficulty:       1,
			RequirementType:  ReqTotalPoints,
			RequirementValue: 100,
			TokenReward:      1,
			PointsReward:     20,
		},
		{
			ID:               "point_master",
			Title:            "Point Master",
			Description:      "Collect 10000 activity points",
			Category:         models.AchievementCategorySystem,
			Difficulty:       4,
			RequirementType:  ReqTotalPoints,
			RequirementValue: 10000,
			TokenReward:      25,
			PointsReward:     500,
		},
		{
			ID:               "dedicated_miner",
			Title:            "Dedicated Miner",
			Description:      "Start 30 mining sessions",
			Category:         models.AchievementCategoryMining,
			Difficulty:       2,
			RequirementType:  ReqMiningSessions,
			RequirementValue: 30,
			TokenReward:      5,
			PointsReward:     100,
		},
		{
			ID:               "marathon_miner",
			Title:            "Marathon Miner",
			Description:      "Mine for a cumulative 24 hours",
			Category:         models.AchievementCategoryMining,
			Difficulty:       3,
			RequirementType:  ReqMiningTime,
			RequirementValue: 86400,
			TokenReward:      10,
			PointsReward:     200,
		},
		{
			ID:               "week_streak",
			Title:            "Week Streak",
			Description:      "Stay active 7 days in a row",
			Category:         models.AchievementCategorySystem,
			Difficulty:       2,
			RequirementType:  ReqStreakDays,
			RequirementValue: 7,
			TokenReward:      5,
			PointsReward:     100,
		},
		{
			ID:               "prolific_poster",
			Title:            "Prolific Poster",
			Description:      "Publish 50 posts",
			Category:         models.AchievementCategorySocial,
			Difficulty:       3,
			RequirementType:  ReqPostsCount,
			RequirementValue: 50,
			TokenReward:      8,
			PointsReward:     150,
		},
		{
			ID:               "commentator",
			Title:            "Commentator",
			Description:      "Leave 100 comments",
			Category:         models.AchievementCategorySocial,
			Difficulty:       2,
			RequirementType:  ReqCommentsCount,
			RequirementValue: 100,
			TokenReward:      5,
			PointsReward:     100,
		},
		{
			ID:               "social_butterfly",
			Title:            "Social Butterfly",
			Description:      "Give out 200 likes",
			Category:         models.AchievementCategorySocial,
			Difficulty:       2,
			RequirementType:  ReqLikesCount,
			RequirementValue: 200,
			TokenReward:      5,
			PointsReward:     100,
		},
		{
			ID:               "signal_booster",
			Title:            "Signal Booster",
			Description:      "Share 50 pieces of content",
			Category:         models.AchievementCategorySocial,
			Difficulty:       2,
			RequirementType:  ReqSharesCount,
			RequirementValue: 50,
			TokenReward:      5,
			PointsReward:     100,
		},
	}
}

// EnsureCatalog seeds the achievement catalog exactly once. Guarded by an
// existence check and an on-conflict no-op insert, so calling it at every
// startup is safe.
func EnsureCatalog(ctx context.Context, store Store) error {
	logger := logging.WithComponent("achievement-catalog")

	count, err := store.CountAchievements(ctx)
	if err != nil {
		return err
	}

	defs := Catalog()
	if count >= int64(len(defs)) {
		logger.Debug("Achievement catalog already seeded", zap.Int64("count", count))
		return nil
	}

	if err := store.CreateAchievements(ctx, defs); err != nil {
		return err
	}

	logger.Info("Achievement catalog seeded", zap.Int("count", len(defs)))
	return nil
}
