// Package service implements the application's business logic.
package service

const (
	// flatConnectReward is granted to the higher-scored side of a new
	// connection, and to both sides when scores are equal.
	flatConnectReward = 5.0
	// rewardRate is the fraction of the capped score gap granted to the
	// lower-scored side.
	rewardRate = 0.2
	// maxRewardedGap caps how much of the score gap counts toward the
	// lower-scored side's reward.
	maxRewardedGap = 10.0
)

// RewardOnConnect returns the score deltas granted to two users when they
// connect. The lower-scored user gains 20% of the score gap capped at 10
// points; the higher-scored user gains a flat 5. Equal scores grant the flat
// reward to both. Disconnecting grants nothing.
func RewardOnConnect(scoreA, scoreB float64) (deltaA, deltaB float64) {
	switch {
	case scoreA < scoreB:
		return cappedGapReward(scoreB - scoreA), flatConnectReward
	case scoreA > scoreB:
		return flatConnectReward, cappedGapReward(scoreA - scoreB)
	default:
		return flatConnectReward, flatConnectReward
	}
}

func cappedGapReward(gap float64) float64 {
	if gap > maxRewardedGap {
		gap = maxRewardedGap
	}
	return gap * rewardRate
}
