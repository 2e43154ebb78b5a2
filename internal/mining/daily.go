package mining

import (
	"time"

	"github.com/bsn-social/mining/internal/models"
)

const dailyKeyLayout = "2006-01-02"

// dailyKey formats the calendar date of t in the daily-reset timezone.
func dailyKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dailyKeyLayout)
}

// applyDailyRollover zeroes the daily counters and the speed boost when the
// stored counters belong to an earlier date. The boost is earned through the
// day's activities, so it resets with them. Reports whether a rollover
// happened.
func applyDailyRollover(stats *models.MiningStats, today string) bool {
	if stats.DailyResetDate == today {
		return false
	}

	stats.DailyPosts = 0
	stats.DailyComments = 0
	stats.DailyLikes = 0
	stats.DailyShares = 0
	stats.DailyInvites = 0
	stats.DailyNFTLikes = 0
	stats.DailyNFTShares = 0
	stats.DailyNFTPurchases = 0
	stats.DailyTokenLikes = 0
	stats.DailyTokenShares = 0
	stats.DailyPoints = 0
	stats.DailyTokensEarned = 0
	stats.CurrentSpeedBoost = 0
	stats.DailyResetDate = today

	NormalizeStats(stats)
	return true
}

// updateStreak advances the consecutive-active-days counter for the first
// qualifying event of a day, whether a session start or a recorded activity:
// active yesterday extends the streak, a gap restarts it at one, a repeat on
// the same day leaves it alone. Callers must invoke this before overwriting
// LastActivityAt.
func updateStreak(stats *models.MiningStats, now time.Time, loc *time.Location) {
	if stats.LastActivityAt.IsZero() {
		stats.StreakDays = 1
		return
	}

	last := dailyKey(stats.LastActivityAt, loc)
	today := dailyKey(now, loc)
	yesterday := dailyKey(now.AddDate(0, 0, -1), loc)

	switch last {
	case today:
		// already counted for today
	case yesterday:
		stats.StreakDays++
	default:
		stats.StreakDays = 1
	}
}

// dailyCount reads the daily counter for an activity type
func dailyCount(stats *models.MiningStats, t ActivityType) int64 {
	switch t {
	case ActivityPost:
		return stats.DailyPosts
	case ActivityComment:
		return stats.DailyComments
	case ActivityLike:
		return stats.DailyLikes
	case ActivityShare:
		return stats.DailyShares
	case ActivityInvite:
		return stats.DailyInvites
	case ActivityNFTLike:
		return stats.DailyNFTLikes
	case ActivityNFTShare:
		return stats.DailyNFTShares
	case ActivityNFTPurchase:
		return stats.DailyNFTPurchases
	case ActivityTokenLike:
		return stats.DailyTokenLikes
	case ActivityTokenShare:
		return stats.DailyTokenShares
	default:
		return 0
	}
}

// bumpCounters increments the daily counter for an activity type and the
// matching cumulative counter where one exists.
func bumpCounters(stats *models.MiningStats, t ActivityType) {
	switch t {
	case ActivityPost:
		stats.DailyPosts++
		stats.TotalPosts++
	case ActivityComment:
		stats.DailyComments++
		stats.TotalComments++
	case ActivityLike:
		stats.DailyLikes++
		stats.TotalLikes++
	case ActivityShare:
		stats.DailyShares++
		stats.TotalShares++
	case ActivityInvite:
		stats.DailyInvites++
	case ActivityNFTLike:
		stats.DailyNFTLikes++
		stats.TotalLikes++
	case ActivityNFTShare:
		stats.DailyNFTShares++
		stats.TotalShares++
	case ActivityNFTPurchase:
		stats.DailyNFTPurchases++
	case ActivityTokenLike:
		stats.DailyTokenLikes++
		stats.TotalLikes++
	case ActivityTokenShare:
		stats.DailyTokenShares++
		stats.TotalShares++
	}
}
