package models

import (
	"time"
)

// MiningStats is the per-user mining state row. One row per account; mutated
// by the session controller, the activity recorder, and the achievement
// engine.
type MiningStats struct {
	ID      int64  `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	Account string `gorm:"type:varchar(64);not null;uniqueIndex:bsn_mining_stats_ux1;column:account" json:"account"`

	// Cumulative counters. Monotonically non-decreasing while mining is
	// active.
	TotalPoints       int64   `gorm:"not null;default:0;column:total_points" json:"total_points"`
	TotalTokensEarned float64 `gorm:"type:decimal(18,4);not null;default:0;column:total_tokens_earned" json:"total_tokens_earned"`

	TotalPosts          int64 `gorm:"not null;default:0;column:total_posts" json:"total_posts"`
	TotalComments       int64 `gorm:"not null;default:0;column:total_comments" json:"total_comments"`
	TotalLikes          int64 `gorm:"not null;default:0;column:total_likes" json:"total_likes"`
	TotalShares         int64 `gorm:"not null;default:0;column:total_shares" json:"total_shares"`
	TotalMiningSessions int64 `gorm:"not null;default:0;column:total_mining_sessions" json:"total_mining_sessions"`
	TotalMiningSeconds  int64 `gorm:"not null;default:0;column:total_mining_seconds" json:"total_mining_seconds"`

	// Daily counters, reset to zero at the configured daily boundary.
	DailyPosts        int64   `gorm:"not null;default:0;column:daily_posts" json:"daily_posts"`
	DailyComments     int64   `gorm:"not null;default:0;column:daily_comments" json:"daily_comments"`
	DailyLikes        int64   `gorm:"not null;default:0;column:daily_likes" json:"daily_likes"`
	DailyShares       int64   `gorm:"not null;default:0;column:daily_shares" json:"daily_shares"`
	DailyInvites      int64   `gorm:"not null;default:0;column:daily_invites" json:"daily_invites"`
	DailyNFTLikes     int64   `gorm:"not null;default:0;column:daily_nft_likes" json:"daily_nft_likes"`
	DailyNFTShares    int64   `gorm:"not null;default:0;column:daily_nft_shares" json:"daily_nft_shares"`
	DailyNFTPurchases int64   `gorm:"not null;default:0;column:daily_nft_purchases" json:"daily_nft_purchases"`
	DailyTokenLikes   int64   `gorm:"not null;default:0;column:daily_token_likes" json:"daily_token_likes"`
	DailyTokenShares  int64   `gorm:"not null;default:0;column:daily_token_shares" json:"daily_token_shares"`
	DailyPoints       int64   `gorm:"not null;default:0;column:daily_points" json:"daily_points"`
	DailyTokensEarned float64 `gorm:"type:decimal(18,4);not null;default:0;column:daily_tokens_earned" json:"daily_tokens_earned"`

	// DailyResetDate is the calendar date, in the configured daily-reset
	// timezone, the daily counters currently belong to.
	DailyResetDate string `gorm:"type:varchar(10);not null;default:'';column:daily_reset_date" json:"daily_reset_date"`

	// Mining flags
	IsMining          bool      `gorm:"not null;default:false;column:is_mining" json:"is_mining"`
	LastHeartbeat     time.Time `gorm:"not null;default:'1970-01-01 00:00:00';column:last_heartbeat" json:"last_heartbeat"`
	LastActivityAt    time.Time `gorm:"not null;default:'1970-01-01 00:00:00';column:last_activity_at" json:"last_activity_at"`
	LastInactiveCheck time.Time `gorm:"not null;default:'1970-01-01 00:00:00';column:last_inactive_check" json:"last_inactive_check"`

	// Rate fields. EffectiveMiningRate is always recomputed from MiningRate
	// and CurrentSpeedBoost, never written independently of that relation.
	MiningRate          float64 `gorm:"type:decimal(10,4);not null;default:0.3;column:mining_rate" json:"mining_rate"`
	CurrentSpeedBoost   float64 `gorm:"type:decimal(6,2);not null;default:0;column:current_speed_boost" json:"current_speed_boost"`
	MaxSpeedBoost       float64 `gorm:"type:decimal(6,2);not null;default:95;column:max_speed_boost" json:"max_speed_boost"`
	EffectiveMiningRate float64 `gorm:"type:decimal(10,4);not null;default:0.3;column:effective_mining_rate" json:"effective_mining_rate"`

	// Bonus fields
	EfficiencyMultiplier float64 `gorm:"type:decimal(6,2);not null;default:1;column:efficiency_multiplier" json:"efficiency_multiplier"`
	AchievementBonus     float64 `gorm:"type:decimal(6,2);not null;default:0;column:achievement_bonus" json:"achievement_bonus"`
	StreakDays           int64   `gorm:"not null;default:0;column:streak_days" json:"streak_days"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for MiningStats
func (MiningStats) TableName() string {
	return "bsn_mining_stats"
}
