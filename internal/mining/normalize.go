package mining

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bsn-social/mining/internal/models"
)

// Normalize converts a partial stats record from any source into a fully
// populated canonical record. Records arrive in either snake_case or
// camelCase; both spellings of every field are resolved here, at the
// deserialization boundary, so the rest of the service only ever sees the
// canonical struct. Total function: missing or malformed fields fall back to
// defaults and the effective mining rate is always recomputed.
func Normalize(raw map[string]interface{}) *models.MiningStats {
	stats := &models.MiningStats{
		Account: stringField(raw, "account"),

		TotalPoints:         intField(raw, "total_points"),
		TotalTokensEarned:   floatField(raw, "total_tokens_earned"),
		TotalPosts:          intField(raw, "total_posts"),
		TotalComments:       intField(raw, "total_comments"),
		TotalLikes:          intField(raw, "total_likes"),
		TotalShares:         intField(raw, "total_shares"),
		TotalMiningSessions: intField(raw, "total_mining_sessions"),
		TotalMiningSeconds:  intField(raw, "total_mining_seconds"),

		DailyPosts:        intField(raw, "daily_posts"),
		DailyComments:     intField(raw, "daily_comments"),
		DailyLikes:        intField(raw, "daily_likes"),
		DailyShares:       intField(raw, "daily_shares"),
		DailyInvites:      intField(raw, "daily_invites"),
		DailyNFTLikes:     intField(raw, "daily_nft_likes"),
		DailyNFTShares:    intField(raw, "daily_nft_shares"),
		DailyNFTPurchases: intField(raw, "daily_nft_purchases"),
		DailyTokenLikes:   intField(raw, "daily_token_likes"),
		DailyTokenShares:  intField(raw, "daily_token_shares"),
		DailyPoints:       intField(raw, "daily_points"),
		DailyTokensEarned: floatField(raw, "daily_tokens_earned"),
		DailyResetDate:    stringField(raw, "daily_reset_date"),

		IsMining:          boolField(raw, "is_mining"),
		LastHeartbeat:     timeField(raw, "last_heartbeat"),
		LastActivityAt:    timeField(raw, "last_activity_at"),
		LastInactiveCheck: timeField(raw, "last_inactive_check"),

		MiningRate:        floatField(raw, "mining_rate"),
		CurrentSpeedBoost: floatField(raw, "current_speed_boost"),
		MaxSpeedBoost:     floatField(raw, "max_speed_boost"),

		AchievementBonus: floatField(raw, "achievement_bonus"),
		StreakDays:       intField(raw, "streak_days"),
	}

	return NormalizeStats(stats)
}

// NormalizeStats fills defaulted fields in place and recomputes the derived
// rate fields. Safe to apply repeatedly: normalizing an already-normalized
// record is a no-op.
func NormalizeStats(stats *models.MiningStats) *models.MiningStats {
	if stats.MiningRate <= 0 {
		stats.MiningRate = DefaultBaseRate
	}
	if stats.MaxSpeedBoost <= 0 {
		stats.MaxSpeedBoost = DefaultMaxSpeedBoost
	}
	if stats.CurrentSpeedBoost < 0 {
		stats.CurrentSpeedBoost = 0
	}
	if stats.CurrentSpeedBoost > stats.MaxSpeedBoost {
		stats.CurrentSpeedBoost = stats.MaxSpeedBoost
	}
	if stats.AchievementBonus < 0 {
		stats.AchievementBonus = 0
	}
	if stats.StreakDays < 0 {
		stats.StreakDays = 0
	}

	stats.EfficiencyMultiplier = EfficiencyMultiplier(stats)
	stats.EffectiveMiningRate = EffectiveMiningRate(stats.MiningRate, stats.CurrentSpeedBoost)

	return stats
}

// CamelView renders a stats record as a camelCase map for legacy consumers.
// The canonical serialization is the snake_case JSON encoding of the struct
// itself; this view is derived from it and never stored.
func CamelView(stats *models.MiningStats) map[string]interface{} {
	raw, err := json.Marshal(stats)
	if err != nil {
		return map[string]interface{}{}
	}

	var snake map[string]interface{}
	if err := json.Unmarshal(raw, &snake); err != nil {
		return map[string]interface{}{}
	}

	camel := make(map[string]interface{}, len(snake))
	for k, v := range snake {
		camel[toCamel(k)] = v
	}
	return camel
}

// toCamel converts a snake_case key to camelCase
func toCamel(key string) string {
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return key
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// lookup resolves a raw field by its snake_case name, falling back to the
// camelCase spelling.
func lookup(raw map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := raw[key]; ok {
		return v, true
	}
	v, ok := raw[toCamel(key)]
	return v, ok
}

func floatField(raw map[string]interface{}, key string) float64 {
	v, ok := lookup(raw, key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func intField(raw map[string]interface{}, key string) int64 {
	return int64(floatField(raw, key))
}

func boolField(raw map[string]interface{}, key string) bool {
	v, ok := lookup(raw, key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func stringField(raw map[string]interface{}, key string) string {
	v, ok := lookup(raw, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func timeField(raw map[string]interface{}, key string) time.Time {
	v, ok := lookup(raw, key)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
