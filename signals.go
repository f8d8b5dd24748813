package controlroom

import "github.com/zoobzio/capitan"

// Signal definitions for turn-processing events.
// Signals follow the pattern: controlroom.<entity>.<event>.
var (
	// Turn lifecycle signals.
	TurnStarted = capitan.NewSignal(
		"controlroom.turn.started",
		"Turn processing began for a session",
	)
	TurnCompleted = capitan.NewSignal(
		"controlroom.turn.completed",
		"Turn processed and directive issued",
	)
	TurnFailed = capitan.NewSignal(
		"controlroom.turn.failed",
		"Turn processing aborted on a validation or pipeline error",
	)

	// Priority-zero safety signals.
	SafetyTriggered = capitan.NewSignal(
		"controlroom.safety.triggered",
		"Crisis check matched; turn short-circuited to grounding",
	)

	// Signal-engine events.
	PatternDetected = capitan.NewSignal(
		"controlroom.pattern.detected",
		"Linguistic tell detected and merged into the pattern ledger",
	)
	EchoCaptured = capitan.NewSignal(
		"controlroom.echo.captured",
		"Verbatim phrase captured for a delayed callback",
	)
	GapDetected = capitan.NewSignal(
		"controlroom.tapes.gap_detected",
		"Timeline gap exceeding the threshold found",
	)
	InevitabilityScored = capitan.NewSignal(
		"controlroom.inevitability.scored",
		"Inevitability score computed from the merged state",
	)

	// Reveal lifecycle signals.
	RevealCreated = capitan.NewSignal(
		"controlroom.reveal.created",
		"New permission-gated reveal plan added to the ledger",
	)
	RevealDecided = capitan.NewSignal(
		"controlroom.reveal.decided",
		"Pending reveal plan executed, vetoed, or deferred",
	)

	// Strategy and governance signals.
	StrategySelected = capitan.NewSignal(
		"controlroom.strategy.selected",
		"Strategy cascade produced a proposal for the turn",
	)
	GovernorVetoed = capitan.NewSignal(
		"controlroom.governor.vetoed",
		"Policy governor vetoed a proposal and substituted an alternative",
	)
	DirectiveIssued = capitan.NewSignal(
		"controlroom.directive.issued",
		"Validated directive envelope emitted to the response layer",
	)

	// Session mode signals.
	ActivationHandled = capitan.NewSignal(
		"controlroom.activation.handled",
		"Reserved activation command switched the session mode",
	)
)

// Field keys for turn event data.
var (
	// Session and turn identity.
	FieldSessionID = capitan.NewStringKey("session_id")
	FieldTurnIndex = capitan.NewIntKey("turn_index")
	FieldStage     = capitan.NewStringKey("stage")

	// Signal-engine metadata.
	FieldPatternKind = capitan.NewStringKey("pattern_kind")
	FieldConfidence  = capitan.NewFloat32Key("confidence")
	FieldEchoPhrase  = capitan.NewStringKey("echo_phrase")
	FieldGapDays     = capitan.NewIntKey("gap_days")
	FieldScore       = capitan.NewFloat32Key("score")
	FieldRationale   = capitan.NewStringKey("rationale")
	FieldSafetyType  = capitan.NewStringKey("safety_type")

	// Strategy and governance metadata.
	FieldStrategy = capitan.NewStringKey("strategy")
	FieldDevice   = capitan.NewStringKey("device")
	FieldReason   = capitan.NewStringKey("reason")
	FieldPressure = capitan.NewFloat32Key("pressure")
	FieldRisk     = capitan.NewStringKey("risk")

	// Reveal metadata.
	FieldRevealID     = capitan.NewStringKey("reveal_id")
	FieldRevealStatus = capitan.NewStringKey("reveal_status")
	FieldRevealAction = capitan.NewStringKey("reveal_action")

	// Session mode metadata.
	FieldKernelMode = capitan.NewStringKey("kernel_mode")

	// Timing.
	FieldTurnDuration = capitan.NewDurationKey("turn_duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
