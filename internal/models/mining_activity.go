package models

import (
	"time"
)

// MiningActivity is one append-only reward log entry. Rows are created by the
// activity recorder and never mutated or deleted by normal flow; the
// multiplier and rate in effect at record time are captured for audit.
type MiningActivity struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Account      string    `gorm:"type:varchar(64);not null;index:bsn_mining_activities_ix1;column:account" json:"account"`
	ActivityType string    `gorm:"type:varchar(32);not null;column:activity_type" json:"activity_type"`
	Points       int64     `gorm:"not null;default:0;column:points" json:"points"`
	TokensEarned float64   `gorm:"type:decimal(18,4);not null;default:0;column:tokens_earned" json:"tokens_earned"`
	Multiplier   float64   `gorm:"type:decimal(6,2);not null;default:1;column:multiplier" json:"multiplier"`
	MiningRate   float64   `gorm:"type:decimal(10,4);not null;default:0;column:mining_rate" json:"mining_rate"`
	CreatedAt    time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName specifies the table name for MiningActivity
func (MiningActivity) TableName() string {
	return "bsn_mining_activities"
}

// MiningStatusChange is one append-only audit row recording a session state
// transition.
type MiningStatusChange struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Account    string    `gorm:"type:varchar(64);not null;index:bsn_mining_status_ix1;column:account" json:"account"`
	FromStatus string    `gorm:"type:varchar(16);not null;column:from_status" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(16);not null;column:to_status" json:"to_status"`
	Reason     string    `gorm:"type:varchar(64);not null;default:'';column:reason" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName specifies the table name for MiningStatusChange
func (MiningStatusChange) TableName() string {
	return "bsn_mining_status_changes"
}
