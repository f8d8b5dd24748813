package controlroom

// Tunable defaults for the interview engine. These are read at engine
// construction; adjust them at program start, not mid-session.
var (
	// DefaultGapThresholdDays is the minimum silence between adjacent
	// timeline events before the missing-tapes engine flags a gap.
	DefaultGapThresholdDays = 180

	// DefaultEchoActDelay and DefaultEchoTurnDelay set the eligibility
	// gates on captured echo phrases. Either gate opening makes the echo
	// playable.
	DefaultEchoActDelay  = 1
	DefaultEchoTurnDelay = 4

	// DefaultFollowupLimit is how many consecutive followups on one topic
	// the director tolerates before flagging over-dwelling.
	DefaultFollowupLimit = 3

	// DefaultPermissionPriority is the open-loop priority at or above which
	// a topic may not be raised without asking first.
	DefaultPermissionPriority = 8

	// DefaultDisclosureConfidence is the minimum detection confidence
	// before a pattern may be named to the guest directly.
	DefaultDisclosureConfidence = 0.8
)

// Inevitability scoring weights and decision thresholds.
var (
	DefaultRecurredPatternWeight = 0.2
	DefaultContradictionWeight   = 0.3
	DefaultHighPressureWeight    = 0.1

	DefaultRevealThreshold       = 0.75
	DefaultSoftConfrontThreshold = 0.50
	DefaultFirmConfrontThreshold = 0.85

	// DefaultHighPressure is the average pressure at which the
	// high-pressure inevitability factor starts contributing.
	DefaultHighPressure = 7.0
)

// Pressure governance bounds. Average pressure is clamped to this range
// after every adjustment.
const (
	minPressure = 1.0
	maxPressure = 10.0
)

// clampPressure forces a pressure value into the governed range.
func clampPressure(p float64) float64 {
	if p < minPressure {
		return minPressure
	}
	if p > maxPressure {
		return maxPressure
	}
	return p
}

// clampUnit forces a confidence or score into [0,1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
