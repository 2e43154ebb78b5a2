package models

import (
	"time"
)

// Achievement categories
const (
	AchievementCategoryMining = "mining"
	AchievementCategorySocial = "social"
	AchievementCategoryToken  = "token"
	AchievementCategorySystem = "system"
)

// Achievement is one row of the static achievement catalog. The catalog is
// seeded once at startup and read-only at runtime.
type Achievement struct {
	ID               string    `gorm:"primaryKey;type:varchar(64);column:id" json:"id"`
	Title            string    `gorm:"type:varchar(128);not null;column:title" json:"title"`
	Description      string    `gorm:"type:varchar(512);not null;default:'';column:description" json:"description"`
	Category         string    `gorm:"type:varchar(16);not null;column:category" json:"category"`
	Difficulty       int       `gorm:"not null;default:1;column:difficulty" json:"difficulty"`
	RequirementType  string    `gorm:"type:varchar(32);not null;column:requirement_type" json:"requirement_type"`
	RequirementValue float64   `gorm:"type:decimal(18,4);not null;column:requirement_value" json:"requirement_value"`
	TokenReward      float64   `gorm:"type:decimal(18,4);not null;default:0;column:token_reward" json:"token_reward"`
	PointsReward     int64     `gorm:"not null;default:0;column:points_reward" json:"points_reward"`
	CreatedAt        time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Achievement
func (Achievement) TableName() string {
	return "bsn_achievements"
}

// UserAchievement tracks one user's progress toward one achievement. Created
// lazily on first progress. Completion is a one-way latch: once Completed is
// true, Progress stays at 100 and CompletedAt is immutable.
type UserAchievement struct {
	ID            int64      `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	Account       string     `gorm:"type:varchar(64);not null;uniqueIndex:bsn_user_achievements_ux1;column:account" json:"account"`
	AchievementID string     `gorm:"type:varchar(64);not null;uniqueIndex:bsn_user_achievements_ux1;column:achievement_id" json:"achievement_id"`
	Progress      float64    `gorm:"type:decimal(5,1);not null;default:0;column:progress" json:"progress"`
	Completed     bool       `gorm:"not null;default:false;column:completed" json:"completed"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt     time.Time  `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for UserAchievement
func (UserAchievement) TableName() string {
	return "bsn_user_achievements"
}
