package mining

// ActivityType identifies a qualifying user activity
type ActivityType string

// Qualifying activity types
const (
	ActivityPost        ActivityType = "post"
	ActivityComment     ActivityType = "comment"
	ActivityLike        ActivityType = "like"
	ActivityShare       ActivityType = "share"
	ActivityInvite      ActivityType = "invite"
	ActivityNFTLike     ActivityType = "nft_like"
	ActivityNFTShare    ActivityType = "nft_share"
	ActivityNFTPurchase ActivityType = "nft_purchase"
	ActivityTokenLike   ActivityType = "token_like"
	ActivityTokenShare  ActivityType = "token_share"
)

// ActivityLimit is the static per-type configuration: the daily cap, the
// speed-boost contribution (percentage points) and the base points awarded
// per recorded activity.
type ActivityLimit struct {
	DailyCap   int64
	SpeedBoost float64
	Points     int64
}

var activityLimits = map[ActivityType]ActivityLimit{
	ActivityPost:        {DailyCap: 3, SpeedBoost: 5, Points: 10},
	ActivityComment:     {DailyCap: 10, SpeedBoost: 2, Points: 5},
	ActivityLike:        {DailyCap: 20, SpeedBoost: 1, Points: 2},
	ActivityShare:       {DailyCap: 5, SpeedBoost: 3, Points: 8},
	ActivityInvite:      {DailyCap: 10, SpeedBoost: 10, Points: 20},
	ActivityNFTLike:     {DailyCap: 10, SpeedBoost: 1, Points: 2},
	ActivityNFTShare:    {DailyCap: 5, SpeedBoost: 3, Points: 8},
	ActivityNFTPurchase: {DailyCap: 5, SpeedBoost: 8, Points: 15},
	ActivityTokenLike:   {DailyCap: 10, SpeedBoost: 1, Points: 2},
	ActivityTokenShare:  {DailyCap: 5, SpeedBoost: 3, Points: 8},
}

// LimitFor looks up the limit configuration for an activity type
func LimitFor(t ActivityType) (ActivityLimit, bool) {
	limit, ok := activityLimits[t]
	return limit, ok
}

// ActivityTypes returns all known activity types in a stable order
func ActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityPost,
		ActivityComment,
		ActivityLike,
		ActivityShare,
		ActivityInvite,
		ActivityNFTLike,
		ActivityNFTShare,
		ActivityNFTPurchase,
		ActivityTokenLike,
		ActivityTokenShare,
	}
}
