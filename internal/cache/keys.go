package cache

// Key prefixes are namespaced under "mining:" so the service can share a
// Redis instance with the rest of the platform.
const (
	statsKeyPrefix      = "mining:stats:"
	notifyChannelPrefix = "mining:notify:"
)

// StatsKey returns the cache key for an account's stats snapshot
func StatsKey(account string) string {
	return statsKeyPrefix + account
}

// NotifyChannel returns the pub/sub channel carrying an account's
// notifications
func NotifyChannel(account string) string {
	return notifyChannelPrefix + account
}
