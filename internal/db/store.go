package db

import (
	"context"

	"github.com/bsn-social/mining/internal/models"
)

// Store aggregates the repositories into the persistence surface the mining
// subsystem consumes.
type Store struct {
	stats         *StatsRepository
	activities    *ActivityRepository
	statusChanges *StatusChangeRepository
	achievements  *AchievementRepository
}

// NewStore creates the aggregate store over a database connection
func NewStore(database *DB) *Store {
	repo := NewRepository(database.DB)
	return &Store{
		stats:         NewStatsRepository(repo),
		activities:    NewActivityRepository(repo),
		statusChanges: NewStatusChangeRepository(repo),
		achievements:  NewAchievementRepository(repo),
	}
}

// Migrate creates or updates the mining tables
func (d *DB) Migrate() error {
	return d.DB.AutoMigrate(
		&models.MiningStats{},
		&models.MiningActivity{},
		&models.MiningStatusChange{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
}

// GetStats retrieves the stats row for an account
func (s *Store) GetStats(ctx context.Context, account string) (*models.MiningStats, error) {
	return s.stats.GetByAccount(ctx, account)
}

// CreateStats creates a new stats row
func (s *Store) CreateStats(ctx context.Context, stats *models.MiningStats) error {
	return s.stats.Create(ctx, stats)
}

// SaveStats writes back the full stats row
func (s *Store) SaveStats(ctx context.Context, stats *models.MiningStats) error {
	return s.stats.Save(ctx, stats)
}

// ListMiningStats retrieves all accounts with an active mining flag
func (s *Store) ListMiningStats(ctx context.Context) ([]*models.MiningStats, error) {
	return s.stats.ListMining(ctx)
}

// ListStaleStats retrieves all stats rows with daily counters older than date
func (s *Store) ListStaleStats(ctx context.Context, date string) ([]*models.MiningStats, error) {
	return s.stats.ListStale(ctx, date)
}

// CreateActivity appends an activity log row
func (s *Store) CreateActivity(ctx context.Context, activity *models.MiningActivity) error {
	return s.activities.Create(ctx, activity)
}

// ListActivities retrieves the most recent activities for an account
func (s *Store) ListActivities(ctx context.Context, account string, limit int) ([]*models.MiningActivity, error) {
	return s.activities.ListByAccount(ctx, account, limit)
}

// CreateStatusChange appends a status-change audit row
func (s *Store) CreateStatusChange(ctx context.Context, change *models.MiningStatusChange) error {
	return s.statusChanges.Create(ctx, change)
}

// CountAchievements returns the number of catalog rows
func (s *Store) CountAchievements(ctx context.Context) (int64, error) {
	return s.achievements.Count(ctx)
}

// CreateAchievements seeds catalog rows
func (s *Store) CreateAchievements(ctx context.Context, achievements []*models.Achievement) error {
	return s.achievements.CreateBatch(ctx, achievements)
}

// ListAchievements retrieves the full achievement catalog
func (s *Store) ListAchievements(ctx context.Context) ([]*models.Achievement, error) {
	return s.achievements.List(ctx)
}

// ListUserAchievements retrieves an account's achievement progress rows
func (s *Store) ListUserAchievements(ctx context.Context, account string) ([]*models.UserAchievement, error) {
	return s.achievements.ListProgress(ctx, account)
}

// SaveUserAchievement upserts one progress row
func (s *Store) SaveUserAchievement(ctx context.Context, ua *models.UserAchievement) error {
	return s.achievements.SaveProgress(ctx, ua)
}
