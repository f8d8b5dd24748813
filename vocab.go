package controlroom

// Closed vocabularies for the interview engine. Every boundary object is
// validated against these sets; an unknown value is a schema error, not a
// silently stored string. See schema.go for the parse-or-reject functions.

// PatternKind identifies a linguistic tell tracked in the pattern ledger.
type PatternKind string

// Pattern kind catalogue.
const (
	PatternMinimization    PatternKind = "minimization"
	PatternAbsolutist      PatternKind = "absolutist_language"
	PatternPassiveShift    PatternKind = "passive_voice_shift"
	PatternActorOmission   PatternKind = "actor_omission"
	PatternHumorDeflection PatternKind = "humor_deflection"
	PatternFutureEvasion   PatternKind = "future_tense_evasion"
	PatternSomaticLeakage  PatternKind = "somatic_leakage"
	PatternInevitability   PatternKind = "inevitability_language"
)

// patternKinds is the closed set accepted by state validation and the
// pattern-merge reducer.
var patternKinds = map[PatternKind]bool{
	PatternMinimization:    true,
	PatternAbsolutist:      true,
	PatternPassiveShift:    true,
	PatternActorOmission:   true,
	PatternHumorDeflection: true,
	PatternFutureEvasion:   true,
	PatternSomaticLeakage:  true,
	PatternInevitability:   true,
}

// Valid reports whether the kind belongs to the closed catalogue.
func (k PatternKind) Valid() bool { return patternKinds[k] }

// Strategy is the conversational stance required of the response layer for
// the next turn.
type Strategy string

const (
	// StrategyPress escalates: stay on the current subject and narrow it.
	StrategyPress Strategy = "press"
	// StrategyYield de-escalates: soften, give the guest room.
	StrategyYield Strategy = "yield"
	// StrategyHold maintains the current trajectory without escalation.
	StrategyHold Strategy = "hold"
	// StrategyPivot redirects the conversation toward a staged reveal.
	StrategyPivot Strategy = "pivot"
	// StrategyGround is the safety stance: stop the interview and ground.
	StrategyGround Strategy = "ground"
)

// Valid reports whether the strategy belongs to the closed vocabulary.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyPress, StrategyYield, StrategyHold, StrategyPivot, StrategyGround:
		return true
	}
	return false
}

// Device is an optional conversational technique suggested alongside a
// strategy.
type Device string

const (
	// DeviceNone means the strategy carries no specific device.
	DeviceNone Device = ""
	// DeviceFutureLock pins a future-tense promise back to the present.
	DeviceFutureLock Device = "future_lock"
	// DeviceAgencyCheck asks who, exactly, did the thing.
	DeviceAgencyCheck Device = "agency_check"
	// DeviceSomaticBridge moves the question into the body sensation.
	DeviceSomaticBridge Device = "somatic_bridge"
	// DeviceSilence holds space without a question.
	DeviceSilence Device = "silence"
	// DeviceFork offers the guest an explicit choice of directions.
	DeviceFork Device = "offer_fork"
	// DeviceCallback replays a previously captured echo phrase.
	DeviceCallback Device = "echo_callback"
)

// Valid reports whether the device belongs to the closed vocabulary.
func (d Device) Valid() bool {
	switch d {
	case DeviceNone, DeviceFutureLock, DeviceAgencyCheck, DeviceSomaticBridge,
		DeviceSilence, DeviceFork, DeviceCallback:
		return true
	}
	return false
}

// Phase is the coarse session phase tracked by the director.
type Phase string

const (
	PhaseLive            Phase = "live"
	PhaseCommercialBreak Phase = "commercial_break"
	PhaseWrap            Phase = "wrap"
)

// Valid reports whether the phase belongs to the closed vocabulary.
func (p Phase) Valid() bool {
	switch p {
	case PhaseLive, PhaseCommercialBreak, PhaseWrap:
		return true
	}
	return false
}

// RiskLevel grades how carefully the next turn must be handled.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskElevated RiskLevel = "elevated"
	RiskCritical RiskLevel = "critical"
)

// Valid reports whether the risk level belongs to the closed vocabulary.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskElevated, RiskCritical:
		return true
	}
	return false
}

// SafetyMode tells the response layer whether normal interviewing continues.
type SafetyMode string

const (
	SafetyModeNone          SafetyMode = "none"
	SafetyModeStopAndGround SafetyMode = "stop_and_ground"
)

// Valid reports whether the safety mode belongs to the closed vocabulary.
func (m SafetyMode) Valid() bool {
	return m == SafetyModeNone || m == SafetyModeStopAndGround
}

// SafetyType identifies which crisis check fired.
type SafetyType string

const (
	SafetyImminentSelfHarm  SafetyType = "imminent_self_harm"
	SafetyImminentHarmOther SafetyType = "imminent_harm_to_others"
	SafetyChildExploitation SafetyType = "child_exploitation"
)

// Valid reports whether the safety type belongs to the closed vocabulary.
func (t SafetyType) Valid() bool {
	switch t {
	case SafetyImminentSelfHarm, SafetyImminentHarmOther, SafetyChildExploitation:
		return true
	}
	return false
}

// EchoCategory tags why an echo phrase was worth keeping.
type EchoCategory string

const (
	EchoMinimizer       EchoCategory = "minimizer"
	EchoInevitability   EchoCategory = "inevitability"
	EchoSelfBlame       EchoCategory = "self_blame"
	EchoAgencyAvoidance EchoCategory = "agency_avoidance"
)

// Valid reports whether the echo category belongs to the closed vocabulary.
func (c EchoCategory) Valid() bool {
	switch c {
	case EchoMinimizer, EchoInevitability, EchoSelfBlame, EchoAgencyAvoidance:
		return true
	}
	return false
}

// RevealStatus is the lifecycle state of a reveal plan. Transitions are
// monotonic: pending may move to executed or vetoed, both terminal.
type RevealStatus string

const (
	RevealPending  RevealStatus = "pending"
	RevealExecuted RevealStatus = "executed"
	RevealVetoed   RevealStatus = "vetoed"
)

// Valid reports whether the status belongs to the closed vocabulary.
func (s RevealStatus) Valid() bool {
	switch s {
	case RevealPending, RevealExecuted, RevealVetoed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s RevealStatus) Terminal() bool { return s == RevealExecuted || s == RevealVetoed }

// RevealCategory identifies what kind of withheld material a reveal carries.
type RevealCategory string

const (
	RevealMissingTape   RevealCategory = "missing_tape"
	RevealDirectQuote   RevealCategory = "direct_quote"
	RevealContradiction RevealCategory = "contradiction"
)

// Valid reports whether the category belongs to the closed vocabulary.
func (c RevealCategory) Valid() bool {
	switch c {
	case RevealMissingTape, RevealDirectQuote, RevealContradiction:
		return true
	}
	return false
}

// revealPriority orders pending plans for per-turn consideration. Quote
// reveals carry the permission gate and are the most sensitive, so they are
// surfaced (or vetoed) before narrative ones. Creation order breaks ties
// within a category.
var revealPriority = map[RevealCategory]int{
	RevealDirectQuote:   0,
	RevealMissingTape:   1,
	RevealContradiction: 2,
}

// RevealTrigger is the condition under which a reveal plan fires.
type RevealTrigger string

const (
	// TriggerInevitability defers the reveal until the inevitability score
	// crosses the reveal threshold.
	TriggerInevitability RevealTrigger = "inevitability_threshold"
	// TriggerManual is operator-initiated and fires as soon as the governor
	// clears it.
	TriggerManual RevealTrigger = "manual"
)

// Valid reports whether the trigger belongs to the closed vocabulary.
func (t RevealTrigger) Valid() bool {
	switch t {
	case TriggerInevitability, TriggerManual:
		return true
	}
	return false
}

// ClaimStatus is the resolution state of a recorded contradiction.
type ClaimStatus string

const (
	ClaimUnaddressed ClaimStatus = "unaddressed"
	ClaimResolved    ClaimStatus = "resolved"
)

// Valid reports whether the claim status belongs to the closed vocabulary.
func (s ClaimStatus) Valid() bool {
	return s == ClaimUnaddressed || s == ClaimResolved
}

// Posture hints for the response layer, derived deterministically from the
// required strategy.
const (
	LeanIn   = "lean_in"
	LeanBack = "lean_back"

	ToneSkeptical = "skeptical"
	ToneWarm      = "warm"
)
