package mining

import (
	"math"

	"github.com/bsn-social/mining/internal/models"
)

// Mining rate defaults
const (
	DefaultBaseRate      = 0.3
	DefaultMaxSpeedBoost = 95.0

	// streakBonusStep is the multiplier bonus per consecutive active day,
	// capped at streakBonusMax.
	streakBonusStep = 0.05
	streakBonusMax  = 0.5

	// tokensPerPoint converts activity points to tokens before the
	// efficiency multiplier is applied.
	tokensPerPoint = 0.01
)

// EfficiencyMultiplier derives the reward multiplier from the streak and the
// accumulated achievement bonus. Always at least 1.0, rounded to 2 decimals.
func EfficiencyMultiplier(stats *models.MiningStats) float64 {
	streakBonus := math.Min(streakBonusMax, float64(stats.StreakDays)*streakBonusStep)
	return round2(1.0 + streakBonus + stats.AchievementBonus)
}

// EffectiveMiningRate computes the boosted mining rate in tokens per hour,
// rounded to 4 decimals.
func EffectiveMiningRate(baseRate, boostPercent float64) float64 {
	return round4(baseRate * (1 + boostPercent/100))
}

// ActivityTokens computes the tokens earned for an activity worth the given
// points under the given multiplier.
func ActivityTokens(points int64, multiplier float64) float64 {
	return round4(float64(points) * tokensPerPoint * multiplier)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
