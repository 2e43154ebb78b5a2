package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/cache"
	"github.com/bsn-social/mining/internal/mining"
	"github.com/bsn-social/mining/internal/models"
	"github.com/bsn-social/mining/pkg/config"
	"github.com/bsn-social/mining/pkg/logging"
	"github.com/bsn-social/mining/pkg/telemetry"
)

// MiningAPI exposes the mining subsystem over JSON-RPC
type MiningAPI struct {
	controller *mining.Controller
	recorder   *mining.Recorder
	engine     *mining.Engine
	store      mining.Store
	cache      *cache.Cache
	cfg        *config.MiningConfig
	logger     *zap.Logger
}

// NewMiningAPI creates the mining API
func NewMiningAPI(controller *mining.Controller, recorder *mining.Recorder, engine *mining.Engine, store mining.Store, redisCache *cache.Cache, cfg *config.MiningConfig) *MiningAPI {
	return &MiningAPI{
		controller: controller,
		recorder:   recorder,
		engine:     engine,
		store:      store,
		cache:      redisCache,
		cfg:        cfg,
		logger:     logging.WithComponent("mining-api"),
	}
}

type accountParams struct {
	Account string `json:"account"`
}

type recordActivityParams struct {
	Account      string `json:"account"`
	ActivityType string `json:"activity_type"`
}

func parseAccount(params json.RawMessage) (string, error) {
	var p accountParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", invalidParams("invalid params: %v", err)
	}
	if p.Account == "" {
		return "", invalidParams("account is required")
	}
	return p.Account, nil
}

// GetStats handles mining.get_stats: the normalized stats snapshot for an
// account. Served from the Redis cache within the configured TTL; an account
// with no row yet gets a normalized default snapshot without creating one.
func (m *MiningAPI) GetStats(c *gin.Context, params json.RawMessage) (interface{}, error) {
	account, err := parseAccount(params)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "mining.get_stats")
	defer span.End()

	var cached models.MiningStats
	cacheErr := m.cache.GetJSON(ctx, cache.StatsKey(account), &cached)
	if cacheErr == nil {
		return &cached, nil
	}
	if !cache.IsMiss(cacheErr) && cacheErr != cache.ErrCacheDisabled {
		m.logger.Debug("Stats cache read failed",
			zap.String("account", account), zap.Error(cacheErr))
	}

	stats, err := m.store.GetStats(ctx, account)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = mining.Normalize(map[string]interface{}{"account": account})
	} else {
		mining.NormalizeStats(stats)
	}

	if err := m.cache.SetJSON(ctx, cache.StatsKey(account), stats, m.cfg.StatsCacheTTL); err != nil && err != cache.ErrCacheDisabled {
		m.logger.Debug("Failed to cache stats snapshot",
			zap.String("account", account), zap.Error(err))
	}

	return stats, nil
}

// StartMining handles mining.start_mining
func (m *MiningAPI) StartMining(c *gin.Context, params json.RawMessage) (interface{}, error) {
	account, err := parseAccount(params)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "mining.start_mining")
	defer span.End()

	stats, err := m.controller.Start(ctx, account)
	if err != nil {
		return nil, err
	}
	m.invalidateStats(ctx, account)

	return gin.H{"status": mining.StatusMining, "stats": stats}, nil
}

// StopMining handles mining.stop_mining
func (m *MiningAPI) StopMining(c *gin.Context, params json.RawMessage) (interface{}, error) {
	account, err := parseAccount(params)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "mining.stop_mining")
	defer span.End()

	stats, err := m.controller.Stop(ctx, account, mining.ReasonUserRequest)
	if err != nil {
		return nil, err
	}
	m.invalidateStats(ctx, account)

	return gin.H{"status": mining.StatusStopped, "stats": stats}, nil
}

// RecordActivity handles mining.record_activity. Precondition failures (not
// mining, daily cap reached) come back as structured results, not errors.
func (m *MiningAPI) RecordActivity(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p recordActivityParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("invalid params: %v", err)
	}
	if p.Account == "" {
		return nil, invalidParams("account is required")
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "mining.record_activity")
	defer span.End()

	result, err := m.recorder.RecordActivity(ctx, p.Account, mining.ActivityType(p.ActivityType))
	if err != nil {
		if errors.Is(err, mining.ErrNotMining) {
			return result, nil
		}
		if errors.Is(err, mining.ErrUnknownActivity) {
			return nil, invalidParams("unknown activity type: %s", p.ActivityType)
		}
		return nil, err
	}
	m.invalidateStats(ctx, p.Account)

	return result, nil
}

// GetAchievements handles mining.get_achievements: the catalog joined with
// the account's progress.
func (m *MiningAPI) GetAchievements(c *gin.Context, params json.RawMessage) (interface{}, error) {
	account, err := parseAccount(params)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "mining.get_achievements")
	defer span.End()

	return m.engine.ListProgress(ctx, account)
}

// CheckAchievements handles mining.check_achievements: evaluates the catalog
// against current stats and applies any new unlocks.
func (m *MiningAPI) CheckAchievements(c *gin.Context, params json.RawMessage) (interface{}, error) {
	account, err := parseAccount(params)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "mining.check_achievements")
	defer span.End()

	unlocked, err := m.engine.Run(ctx, account)
	if err != nil {
		return nil, err
	}
	if len(unlocked) > 0 {
		m.invalidateStats(ctx, account)
	}

	return gin.H{"unlocked": unlocked}, nil
}

// SessionHealth handles mining.session_health
func (m *MiningAPI) SessionHealth(c *gin.Context, params json.RawMessage) (interface{}, error) {
	account, err := parseAccount(params)
	if err != nil {
		return nil, err
	}

	return m.controller.Health(c.Request.Context(), account)
}

// ListActivities handles mining.list_activities: the most recent reward log
// entries for an account.
func (m *MiningAPI) ListActivities(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Account string `json:"account"`
		Limit   int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("invalid params: %v", err)
	}
	if p.Account == "" {
		return nil, invalidParams("account is required")
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}

	return m.store.ListActivities(c.Request.Context(), p.Account, p.Limit)
}

func (m *MiningAPI) invalidateStats(ctx context.Context, account string) {
	if err := m.cache.Delete(ctx, cache.StatsKey(account)); err != nil && err != cache.ErrCacheDisabled {
		m.logger.Debug("Failed to invalidate stats cache",
			zap.String("account", account), zap.Error(err))
	}
}
