package mining

import (
	"context"
	"sync"

	"github.com/bsn-social/mining/internal/models"
)

// Store is the persistence contract the mining subsystem requires: read and
// write one stats row per account, append activity and audit rows, and upsert
// achievement progress keyed by (account, achievement).
type Store interface {
	GetStats(ctx context.Context, account string) (*models.MiningStats, error)
	CreateStats(ctx context.Context, stats *models.MiningStats) error
	SaveStats(ctx context.Context, stats *models.MiningStats) error
	ListMiningStats(ctx context.Context) ([]*models.MiningStats, error)
	ListStaleStats(ctx context.Context, date string) ([]*models.MiningStats, error)

	CreateActivity(ctx context.Context, activity *models.MiningActivity) error
	ListActivities(ctx context.Context, account string, limit int) ([]*models.MiningActivity, error)

	CreateStatusChange(ctx context.Context, change *models.MiningStatusChange) error

	CountAchievements(ctx context.Context) (int64, error)
	CreateAchievements(ctx context.Context, achievements []*models.Achievement) error
	ListAchievements(ctx context.Context) ([]*models.Achievement, error)
	ListUserAchievements(ctx context.Context, account string) ([]*models.UserAchievement, error)
	SaveUserAchievement(ctx context.Context, ua *models.UserAchievement) error
}

// AccountLocks serializes in-process mutations per account. The session
// controller, activity recorder and achievement engine share one instance so
// a user's stats row has a single writer at a time.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccountLocks creates an empty lock table
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for an account and returns the release function
func (l *AccountLocks) Lock(account string) func() {
	l.mu.Lock()
	m, ok := l.locks[account]
	if !ok {
		m = &sync.Mutex{}
		l.locks[account] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
