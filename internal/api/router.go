package api

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bsn-social/mining/internal/cache"
	"github.com/bsn-social/mining/internal/db"
	"github.com/bsn-social/mining/internal/mining"
	"github.com/bsn-social/mining/pkg/config"
	"github.com/bsn-social/mining/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewRouter creates a new API router and registers the mining methods
func NewRouter(database *db.DB, redisCache *cache.Cache, controller *mining.Controller, recorder *mining.Recorder, engine *mining.Engine, store mining.Store, cfg *config.MiningConfig) *Router {
	router := &Router{
		handler: NewJSONRPCHandler(),
		db:      database,
		cache:   redisCache,
		logger:  logging.WithComponent("api-router"),
	}

	miningAPI := NewMiningAPI(controller, recorder, engine, store, redisCache, cfg)

	router.handler.RegisterMethod("mining.get_stats", miningAPI.GetStats)
	router.handler.RegisterMethod("mining.start_mining", miningAPI.StartMining)
	router.handler.RegisterMethod("mining.stop_mining", miningAPI.StopMining)
	router.handler.RegisterMethod("mining.record_activity", miningAPI.RecordActivity)
	router.handler.RegisterMethod("mining.get_achievements", miningAPI.GetAchievements)
	router.handler.RegisterMethod("mining.check_achievements", miningAPI.CheckAchievements)
	router.handler.RegisterMethod("mining.session_health", miningAPI.SessionHealth)
	router.handler.RegisterMethod("mining.list_activities", miningAPI.ListActivities)

	router.handler.RegisterMethod("bsn.status", router.status)

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.POST("/", r.handler.Handle)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "bsn-mining",
	})
}

// status reports backing-service health
func (r *Router) status(c *gin.Context, params json.RawMessage) (interface{}, error) {
	ctx := c.Request.Context()

	dbOK := r.db.Health(ctx) == nil
	cacheErr := r.cache.Health(ctx)
	cacheOK := cacheErr == nil || cacheErr == cache.ErrCacheDisabled

	return gin.H{
		"service":  "bsn-mining",
		"database": dbOK,
		"cache":    cacheOK,
		"time":     time.Now().UTC().Format(time.RFC3339),
	}, nil
}
