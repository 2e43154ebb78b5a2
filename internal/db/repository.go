package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bsn-social/mining/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StatsRepository provides mining-stats database operations
type StatsRepository struct {
	*Repository
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(repo *Repository) *StatsRepository {
	return &StatsRepository{Repository: repo}
}

// GetByAccount retrieves the stats row for an account
func (r *StatsRepository) GetByAccount(ctx context.Context, account string) (*models.MiningStats, error) {
	var stats models.MiningStats
	if err := r.db.WithContext(ctx).Where("account = ?", account).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Create creates a new stats row
func (r *StatsRepository) Create(ctx context.Context, stats *models.MiningStats) error {
	return r.db.WithContext(ctx).Create(stats).Error
}

// Save writes back the full stats row
func (r *StatsRepository) Save(ctx context.Context, stats *models.MiningStats) error {
	return r.db.WithContext(ctx).Save(stats).Error
}

// ListMining retrieves all accounts with an active mining flag
func (r *StatsRepository) ListMining(ctx context.Context) ([]*models.MiningStats, error) {
	var rows []*models.MiningStats
	if err := r.db.WithContext(ctx).Where("is_mining = ?", true).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListStale retrieves all stats rows whose daily counters belong to a date
// other than the given one
func (r *StatsRepository) ListStale(ctx context.Context, date string) ([]*models.MiningStats, error) {
	var rows []*models.MiningStats
	if err := r.db.WithContext(ctx).Where("daily_reset_date <> ?", date).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ActivityRepository provides activity-log database operations
type ActivityRepository struct {
	*Repository
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(repo *Repository) *ActivityRepository {
	return &ActivityRepository{Repository: repo}
}

// Create appends a new activity log row
func (r *ActivityRepository) Create(ctx context.Context, activity *models.MiningActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByAccount retrieves the most recent activities for an account
func (r *ActivityRepository) ListByAccount(ctx context.Context, account string, limit int) ([]*models.MiningActivity, error) {
	var rows []*models.MiningActivity
	if err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// StatusChangeRepository provides session audit-log database operations
type StatusChangeRepository struct {
	*Repository
}

// NewStatusChangeRepository creates a new status-change repository
func NewStatusChangeRepository(repo *Repository) *StatusChangeRepository {
	return &StatusChangeRepository{Repository: repo}
}

// Create appends a new status-change audit row
func (r *StatusChangeRepository) Create(ctx context.Context, change *models.MiningStatusChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

// AchievementRepository provides achievement catalog and progress operations
type AchievementRepository struct {
	*Repository
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(repo *Repository) *AchievementRepository {
	return &AchievementRepository{Repository: repo}
}

// Count returns the number of catalog rows
func (r *AchievementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch seeds catalog rows, skipping ones that already exist
func (r *AchievementRepository) CreateBatch(ctx context.Context, achievements []*models.Achievement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(achievements).Error
}

// List retrieves the full achievement catalog
func (r *AchievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	var rows []*models.Achievement
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProgress retrieves all of an account's achievement progress rows
func (r *AchievementRepository) ListProgress(ctx context.Context, account string) ([]*models.UserAchievement, error) {
	var rows []*models.UserAchievement
	if err := r.db.WithContext(ctx).Where("account = ?", account).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveProgress upserts one progress row keyed by (account, achievement)
func (r *AchievementRepository) SaveProgress(ctx context.Context, ua *models.UserAchievement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account"}, {Name: "achievement_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"progress", "completed", "completed_at", "updated_at",
			}),
		}).
		Create(ua).Error
}
