package mining

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bsn-social/mining/internal/models"
)

// seedMiningStats puts an actively mining stats row for an account, with its
// daily window already aligned to the clock's current day.
func seedMiningStats(t *testing.T, store *fakeStore, account string, now time.Time) {
	t.Helper()
	stats := Normalize(map[string]interface{}{"account": account})
	stats.IsMining = true
	stats.LastHeartbeat = now
	stats.LastActivityAt = now
	stats.DailyResetDate = dailyKey(now, time.UTC)
	if err := store.CreateStats(context.Background(), stats); err != nil {
		t.Fatalf("seed stats: %v", err)
	}
}

func newTestRecorder(store *fakeStore, engine *Engine, clock *testClock) *Recorder {
	r := NewRecorder(store, engine, NewAccountLocks(), testMiningConfig())
	r.now = clock.Now
	return r
}

func TestRecordActivityUnknownType(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	r := newTestRecorder(store, nil, clock)

	result, err := r.RecordActivity(context.Background(), "alice", ActivityType("dance"))
	if !errors.Is(err, ErrUnknownActivity) {
		t.Fatalf("err = %v, want ErrUnknownActivity", err)
	}
	if result.Rewarded {
		t.Error("unknown type must not reward")
	}
}

func TestRecordActivityNotMining(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	r := newTestRecorder(store, nil, clock)

	result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
	if !errors.Is(err, ErrNotMining) {
		t.Fatalf("err = %v, want ErrNotMining", err)
	}
	if result.Rewarded || result.Limited {
		t.Errorf("non-mining outcome malformed: %+v", result)
	}
	if got := store.activityCount("alice"); got != 0 {
		t.Errorf("non-mining call wrote %d activities", got)
	}
}

func TestRecordActivityRewards(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	seedMiningStats(t, store, "alice", now)
	r := newTestRecorder(store, nil, clock)

	result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
	if err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if !result.Rewarded {
		t.Fatalf("result not rewarded: %+v", result)
	}
	if result.Activity.Points != 10 {
		t.Errorf("Points = %d, want 10", result.Activity.Points)
	}
	// 10 points at 0.01 tokens per point, multiplier 1.0.
	if result.Activity.TokensEarned != 0.1 {
		t.Errorf("TokensEarned = %v, want 0.1", result.Activity.TokensEarned)
	}

	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.DailyPosts != 1 || stats.TotalPosts != 1 {
		t.Errorf("post counters = daily %d / total %d, want 1/1", stats.DailyPosts, stats.TotalPosts)
	}
	if stats.TotalPoints != 10 || stats.DailyPoints != 10 {
		t.Errorf("points = total %d / daily %d, want 10/10", stats.TotalPoints, stats.DailyPoints)
	}
	if stats.CurrentSpeedBoost != 5 {
		t.Errorf("CurrentSpeedBoost = %v, want 5", stats.CurrentSpeedBoost)
	}
	if !stats.LastActivityAt.Equal(now) {
		t.Errorf("LastActivityAt = %v, want %v", stats.LastActivityAt, now)
	}
	if got := store.activityCount("alice"); got != 1 {
		t.Errorf("activity rows = %d, want 1", got)
	}
}

func TestRecordActivityDailyCap(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	seedMiningStats(t, store, "alice", now)
	r := newTestRecorder(store, nil, clock)

	// Three posts fill the cap and raise the boost 5 points each.
	for i := 0; i < 3; i++ {
		result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
		if err != nil {
			t.Fatalf("post %d: %v", i+1, err)
		}
		if !result.Rewarded {
			t.Fatalf("post %d not rewarded", i+1)
		}
	}

	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.CurrentSpeedBoost != 15 {
		t.Errorf("CurrentSpeedBoost = %v, want 15", stats.CurrentSpeedBoost)
	}
	if stats.EffectiveMiningRate != 0.345 {
		t.Errorf("EffectiveMiningRate = %v, want 0.345", stats.EffectiveMiningRate)
	}

	// The fourth post that day hits the cap with no partial effects.
	result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
	if err != nil {
		t.Fatalf("capped post: %v", err)
	}
	if !result.Limited || result.Rewarded {
		t.Fatalf("capped outcome malformed: %+v", result)
	}

	after, _ := store.GetStats(context.Background(), "alice")
	if after.DailyPosts != 3 || after.CurrentSpeedBoost != 15 || after.TotalPoints != stats.TotalPoints {
		t.Errorf("capped call mutated stats: %+v", after)
	}
	if got := store.activityCount("alice"); got != 3 {
		t.Errorf("activity rows = %d, want 3", got)
	}

	// A different type is still open.
	result, err = r.RecordActivity(context.Background(), "alice", ActivityComment)
	if err != nil || !result.Rewarded {
		t.Errorf("comment after post cap: result=%+v err=%v", result, err)
	}
}

func TestRecordActivityBoostClamp(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	seedMiningStats(t, store, "alice", now)
	r := newTestRecorder(store, nil, clock)

	// Ten invites at 10 boost each would reach 100; the boost caps at 95.
	for i := 0; i < 10; i++ {
		result, err := r.RecordActivity(context.Background(), "alice", ActivityInvite)
		if err != nil {
			t.Fatalf("invite %d: %v", i+1, err)
		}
		if !result.Rewarded {
			t.Fatalf("invite %d not rewarded", i+1)
		}
	}

	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.CurrentSpeedBoost != 95 {
		t.Errorf("CurrentSpeedBoost = %v, want 95", stats.CurrentSpeedBoost)
	}
	if stats.EffectiveMiningRate != 0.585 {
		t.Errorf("EffectiveMiningRate = %v, want 0.585", stats.EffectiveMiningRate)
	}
}

func TestRecordActivityRollsOverStaleDay(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	r := newTestRecorder(store, nil, clock)

	stats := Normalize(map[string]interface{}{"account": "alice"})
	stats.IsMining = true
	stats.LastActivityAt = now.AddDate(0, 0, -1)
	stats.DailyResetDate = "2026-08-31"
	stats.DailyPosts = 3
	stats.CurrentSpeedBoost = 40
	stats.StreakDays = 6
	NormalizeStats(stats)
	if err := store.CreateStats(context.Background(), stats); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	// Yesterday's cap does not block today's first post, and yesterday's
	// boost is gone before the new one is added.
	result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
	if err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if !result.Rewarded {
		t.Fatalf("post after rollover not rewarded: %+v", result)
	}

	saved, _ := store.GetStats(context.Background(), "alice")
	if saved.DailyPosts != 1 {
		t.Errorf("DailyPosts = %d, want 1", saved.DailyPosts)
	}
	if saved.CurrentSpeedBoost != 5 {
		t.Errorf("CurrentSpeedBoost = %v, want 5", saved.CurrentSpeedBoost)
	}
	if saved.DailyResetDate != "2026-09-01" {
		t.Errorf("DailyResetDate = %q, want 2026-09-01", saved.DailyResetDate)
	}
	// Active yesterday, first activity today extends the streak.
	if saved.StreakDays != 7 {
		t.Errorf("StreakDays = %d, want 7", saved.StreakDays)
	}
}

func TestRecordActivityLimitOutcome(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	r := newTestRecorder(store, nil, clock)

	// like is capped at 20; pre-fill today's counter to the cap.
	stats := Normalize(map[string]interface{}{"account": "alice"})
	stats.IsMining = true
	stats.LastActivityAt = now
	stats.DailyResetDate = dailyKey(now, time.UTC)
	stats.DailyLikes = 20
	NormalizeStats(stats)
	if err := store.CreateStats(context.Background(), stats); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	result, err := r.RecordActivity(context.Background(), "alice", ActivityLike)
	if err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if !result.Limited {
		t.Fatalf("capped like should be limited: %+v", result)
	}
	if result.Message == "" {
		t.Error("limit outcome should carry a message")
	}
}

func TestRecordActivityWriteFailure(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	seedMiningStats(t, store, "alice", now)
	store.failSaves = true
	r := newTestRecorder(store, nil, clock)

	if _, err := r.RecordActivity(context.Background(), "alice", ActivityPost); err == nil {
		t.Fatal("expected error when the activity cannot be written")
	}

	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.DailyPosts != 0 || stats.TotalPoints != 0 || stats.CurrentSpeedBoost != 0 {
		t.Errorf("failed write mutated stored stats: %+v", stats)
	}
}

// Sessions auto-stop after inactivity, so a real day always begins with a
// Start before the first RecordActivity. The streak has to survive that path.
func TestStreakThroughStartRecordFlow(t *testing.T) {
	store := newFakeStore()
	day1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(day1)
	locks := NewAccountLocks()
	cfg := testMiningConfig()

	c := NewController(store, &fakeNotifier{}, locks, cfg)
	c.now = clock.Now
	defer c.Shutdown()
	r := NewRecorder(store, nil, locks, cfg)
	r.now = clock.Now

	// An old streak from ten days ago restarts at one on today's session.
	stats := Normalize(map[string]interface{}{"account": "alice"})
	stats.LastActivityAt = day1.AddDate(0, 0, -10)
	stats.StreakDays = 7
	stats.DailyResetDate = dailyKey(stats.LastActivityAt, time.UTC)
	if err := store.CreateStats(context.Background(), stats); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	if _, err := c.Start(context.Background(), "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
	if err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if result.Stats.StreakDays != 1 {
		t.Errorf("StreakDays after gap = %d, want 1", result.Stats.StreakDays)
	}

	// The next consecutive day's start-and-record extends it to two.
	if _, err := c.Stop(context.Background(), "alice", ReasonInactive); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	clock.Advance(24 * time.Hour)
	if _, err := c.Start(context.Background(), "alice"); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	result, err = r.RecordActivity(context.Background(), "alice", ActivityPost)
	if err != nil {
		t.Fatalf("second RecordActivity: %v", err)
	}
	if result.Stats.StreakDays != 2 {
		t.Errorf("StreakDays on consecutive day = %d, want 2", result.Stats.StreakDays)
	}

	// More activity the same day does not double-count.
	result, err = r.RecordActivity(context.Background(), "alice", ActivityComment)
	if err != nil {
		t.Fatalf("third RecordActivity: %v", err)
	}
	if result.Stats.StreakDays != 2 {
		t.Errorf("StreakDays after repeat = %d, want 2", result.Stats.StreakDays)
	}
}

func TestRecordActivityTriggersAchievements(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := newTestClock(now)
	seedMiningStats(t, store, "alice", now)

	catalog := []*models.Achievement{{
		ID:               "point_starter",
		Title:            "Point Starter",
		Category:         models.AchievementCategoryMining,
		Difficulty:       1,
		RequirementType:  ReqTotalPoints,
		RequirementValue: 10,
		TokenReward:      1,
		PointsReward:     5,
	}}
	if err := store.CreateAchievements(context.Background(), catalog); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	notifier := &fakeNotifier{}
	locks := NewAccountLocks()
	engine := NewEngine(store, notifier, locks)
	r := NewRecorder(store, engine, locks, testMiningConfig())
	r.now = clock.Now

	result, err := r.RecordActivity(context.Background(), "alice", ActivityPost)
	if err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if len(result.Unlocked) != 1 || result.Unlocked[0].AchievementID != "point_starter" {
		t.Fatalf("Unlocked = %+v, want point_starter", result.Unlocked)
	}
	if notifier.unlockCount() != 1 {
		t.Errorf("unlock notifications = %d, want 1", notifier.unlockCount())
	}

	// The unlock's rewards land on the stored stats.
	stats, _ := store.GetStats(context.Background(), "alice")
	if stats.TotalPoints != 15 {
		t.Errorf("TotalPoints = %d, want 15 (10 activity + 5 reward)", stats.TotalPoints)
	}
}
