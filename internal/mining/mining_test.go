package mining

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsn-social/mining/internal/models"
	"github.com/bsn-social/mining/pkg/config"
)

// fakeStore is an in-memory Store for tests. Reads hand out copies so only
// an explicit save mutates what the store holds.
type fakeStore struct {
	mu               sync.Mutex
	stats            map[string]*models.MiningStats
	activities       []*models.MiningActivity
	statusChanges    []*models.MiningStatusChange
	catalog          []*models.Achievement
	userAchievements map[string]*models.UserAchievement

	failSaves bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stats:            make(map[string]*models.MiningStats),
		userAchievements: make(map[string]*models.UserAchievement),
	}
}

func (f *fakeStore) GetStats(_ context.Context, account string) (*models.MiningStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[account]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) CreateStats(_ context.Context, stats *models.MiningStats) error {
	return f.put(stats)
}

func (f *fakeStore) SaveStats(_ context.Context, stats *models.MiningStats) error {
	return f.put(stats)
}

func (f *fakeStore) put(stats *models.MiningStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaves {
		return fmt.Errorf("store unavailable")
	}
	cp := *stats
	f.stats[stats.Account] = &cp
	return nil
}

func (f *fakeStore) ListMiningStats(_ context.Context) ([]*models.MiningStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MiningStats
	for _, s := range f.stats {
		if s.IsMining {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListStaleStats(_ context.Context, date string) ([]*models.MiningStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MiningStats
	for _, s := range f.stats {
		if s.DailyResetDate != date {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateActivity(_ context.Context, activity *models.MiningActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaves {
		return fmt.Errorf("store unavailable")
	}
	cp := *activity
	f.activities = append(f.activities, &cp)
	return nil
}

func (f *fakeStore) ListActivities(_ context.Context, account string, limit int) ([]*models.MiningActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MiningActivity
	for i := len(f.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if f.activities[i].Account == account {
			cp := *f.activities[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateStatusChange(_ context.Context, change *models.MiningStatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *change
	f.statusChanges = append(f.statusChanges, &cp)
	return nil
}

func (f *fakeStore) CountAchievements(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.catalog)), nil
}

func (f *fakeStore) CreateAchievements(_ context.Context, achievements []*models.Achievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := make(map[string]bool, len(f.catalog))
	for _, a := range f.catalog {
		existing[a.ID] = true
	}
	for _, a := range achievements {
		if existing[a.ID] {
			continue
		}
		cp := *a
		f.catalog = append(f.catalog, &cp)
	}
	return nil
}

func (f *fakeStore) ListAchievements(_ context.Context) ([]*models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Achievement, 0, len(f.catalog))
	for _, a := range f.catalog {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) ListUserAchievements(_ context.Context, account string) ([]*models.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.UserAchievement
	for _, ua := range f.userAchievements {
		if ua.Account == account {
			cp := *ua
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveUserAchievement(_ context.Context, ua *models.UserAchievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaves {
		return fmt.Errorf("store unavailable")
	}
	cp := *ua
	f.userAchievements[ua.Account+"|"+ua.AchievementID] = &cp
	return nil
}

func (f *fakeStore) statusChangeCount(account string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.statusChanges {
		if c.Account == account {
			n++
		}
	}
	return n
}

func (f *fakeStore) activityCount(account string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.activities {
		if a.Account == account {
			n++
		}
	}
	return n
}

// fakeNotifier records delivered notifications
type fakeNotifier struct {
	mu       sync.Mutex
	unlocks  []UnlockNotification
	statuses []string
}

func (f *fakeNotifier) NotifyUnlock(_ context.Context, _ string, n UnlockNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks = append(f.unlocks, n)
}

func (f *fakeNotifier) NotifyStatus(_ context.Context, _ string, status, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeNotifier) unlockCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.unlocks)
}

func testMiningConfig() *config.MiningConfig {
	return &config.MiningConfig{
		BaseRate:                0.3,
		MaxSpeedBoost:           95,
		HeartbeatInterval:       30 * time.Second,
		InactivityCheckInterval: time.Minute,
		InactivityTimeout:       5 * time.Minute,
		SyncInterval:            time.Minute,
		DailyResetTimezone:      "UTC",
		StatsCacheTTL:           10 * time.Second,
	}
}

// testClock is a settable clock for deterministic tests
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
