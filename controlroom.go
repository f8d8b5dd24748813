package controlroom

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Turn is the per-turn working context threaded through the pipeline. It
// carries the message, a working copy of the session state, and everything
// the stages hand forward to each other.
type Turn struct {
	Message string
	Index   int
	State   SessionState
	TraceID string

	signals         []PatternRecord
	safety          *SafetySignal
	inevitability   InevitabilityResult
	executingReveal *RevealPlan
	proposal        Proposal
	risk            RiskLevel
	directive       Directive

	trail auditTrail
	// done marks the turn short-circuited (activation or safety); the
	// remaining stages pass the turn through untouched.
	done bool
}

// TurnResult is what ProcessTurn hands back: the validated directive, the
// successor state for the caller to persist, and the turn's audit trail.
type TurnResult struct {
	Directive Directive
	State     SessionState
	Audit     []AuditEvent
}

// ControlRoom composes the signal engines, the governor, the reveal
// orchestrator, and the director into the per-turn decision pipeline.
//
// # Concurrency
//
// A ControlRoom holds no cross-turn mutable state and is safe for
// concurrent use across sessions. Turns for one session must be applied in
// order; see SessionState.
type ControlRoom struct {
	patterns      *PatternEngine
	safety        *SafetyEngine
	echoes        *EchoEngine
	tapes         *TapesEngine
	inevitability *InevitabilityEngine
	governor      *Governor
	reveals       *RevealOrchestrator
	director      *Director

	pipeline pipz.Chainable[*Turn]
}

// NewControlRoom creates a control room. A nil lexicon selects the built-in
// cue sets for every engine.
func NewControlRoom(lex *Lexicon) *ControlRoom {
	if lex == nil {
		lex = DefaultLexicon()
	}
	c := &ControlRoom{
		patterns:      NewPatternEngine(lex),
		safety:        NewSafetyEngine(),
		echoes:        NewEchoEngine(lex),
		tapes:         NewTapesEngine(),
		inevitability: NewInevitabilityEngine(),
		governor:      NewGovernor(lex),
		reveals:       NewRevealOrchestrator(),
		director:      NewDirector(),
	}
	c.pipeline = pipz.NewSequence(pipz.NewIdentity("process-turn", ""),
		c.stage("activation", c.runActivation),
		c.stage("safety", c.runSafety),
		c.stage("patterns", c.runPatterns),
		c.stage("echoes", c.runEchoes),
		c.stage("tapes", c.runTapes),
		c.stage("inevitability", c.runInevitability),
		c.stage("reveal", c.runReveal),
		c.stage("strategy", c.runStrategy),
		c.stage("governor", c.runGovernor),
		c.stage("directive", c.runDirective),
		c.stage("advance", c.runAdvance),
	)
	return c
}

// stage wraps a handler as a pipz processor that passes short-circuited
// turns through untouched.
func (c *ControlRoom) stage(name string, fn func(context.Context, *Turn) (*Turn, error)) pipz.Processor[*Turn] {
	return pipz.Apply(pipz.NewIdentity(name, ""), func(ctx context.Context, t *Turn) (*Turn, error) {
		if t.done {
			return t, nil
		}
		return fn(ctx, t)
	})
}

// ProcessTurn runs the strictly ordered turn pipeline: validate, activation
// check, safety check, signal detection, reveal bookkeeping, strategy
// selection, governor review, directive emission, turn advance. The input
// state is never mutated; the result carries the successor state.
func (c *ControlRoom) ProcessTurn(ctx context.Context, message string, turnIndex int, state SessionState) (*TurnResult, error) {
	start := time.Now()

	if err := ValidateState(state); err != nil {
		capitan.Error(ctx, TurnFailed,
			FieldSessionID.Field(state.SessionID),
			FieldTurnIndex.Field(turnIndex),
			FieldError.Field(err),
		)
		return nil, fmt.Errorf("failed to validate inbound state: %w", err)
	}
	if turnIndex != state.Metrics.CurrentTurnIndex {
		err := fmt.Errorf("%w: got %d, session is at %d",
			ErrTurnIndexMismatch, turnIndex, state.Metrics.CurrentTurnIndex)
		capitan.Error(ctx, TurnFailed,
			FieldSessionID.Field(state.SessionID),
			FieldTurnIndex.Field(turnIndex),
			FieldError.Field(err),
		)
		return nil, err
	}

	t := &Turn{
		Message: message,
		Index:   turnIndex,
		State:   state.Clone(),
		TraceID: uuid.New().String(),
		risk:    RiskLow,
	}
	t.trail = auditTrail{
		sessionID: state.SessionID,
		turnIndex: turnIndex,
		traceID:   t.TraceID,
	}
	t.trail.record("validate", map[string]string{"turn_index": strconv.Itoa(turnIndex)})

	capitan.Emit(ctx, TurnStarted,
		FieldSessionID.Field(state.SessionID),
		FieldTurnIndex.Field(turnIndex),
	)

	t, err := c.pipeline.Process(ctx, t)
	if err != nil {
		capitan.Error(ctx, TurnFailed,
			FieldSessionID.Field(state.SessionID),
			FieldTurnIndex.Field(turnIndex),
			FieldError.Field(err),
		)
		return nil, fmt.Errorf("failed to process turn: %w", err)
	}

	capitan.Emit(ctx, TurnCompleted,
		FieldSessionID.Field(state.SessionID),
		FieldTurnIndex.Field(turnIndex),
		FieldStrategy.Field(string(t.directive.Strategy)),
		FieldTurnDuration.Field(time.Since(start)),
	)

	return &TurnResult{
		Directive: t.directive,
		State:     t.State,
		Audit:     t.trail.events,
	}, nil
}

// runActivation recognizes the reserved command syntax. An activation turn
// re-pins the session kernel and returns a minimal directive without
// running the interview pipeline or advancing the turn counter.
func (c *ControlRoom) runActivation(ctx context.Context, t *Turn) (*Turn, error) {
	cmd, ok := ParseActivation(t.Message)
	if !ok {
		return t, nil
	}

	t.State.KernelMode = cmd.Mode
	t.trail.record("activation", map[string]string{"kernel_mode": cmd.Mode})
	capitan.Emit(ctx, ActivationHandled,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldKernelMode.Field(cmd.Mode),
	)

	// The counter does not advance, so the directive targets the same
	// interview turn the session is still waiting on.
	t.directive = Directive{
		SessionID:   t.State.SessionID,
		TargetTurn:  t.Index,
		Phase:       t.State.Phase,
		ActLabel:    actLabel(t.State.Metrics.CurrentAct),
		Strategy:    StrategyHold,
		Instruction: fmt.Sprintf("Session re-pinned to kernel %q. Hold until the next guest message.", cmd.Mode),
		Posture:     postureFor(StrategyHold),
		Pressure: PressureGovernance{
			Current: t.State.Metrics.AveragePressure,
			Ceiling: ceilingFor(RiskLow),
		},
		Guardrails: Guardrails{
			ForbiddenTopics:    []string{},
			PermissionRequired: []string{},
			Risk:               RiskLow,
			SafetyMode:         SafetyModeNone,
		},
		NewPatterns:    []PatternDisclosure{},
		PendingReveals: t.State.PendingReveals(),
	}
	if err := ValidateDirective(t.directive); err != nil {
		return t, fmt.Errorf("failed to build activation directive: %w", err)
	}
	t.done = true
	return t, nil
}

// runSafety is priority zero. A crisis match records an incident, forces
// the grounding directive with the pressure ceiling pinned to the floor,
// and short-circuits everything downstream: no strategy selection, no
// reveal processing.
func (c *ControlRoom) runSafety(ctx context.Context, t *Turn) (*Turn, error) {
	sig := c.safety.Detect(t.Message, t.Index)
	if sig == nil {
		t.trail.record("safety", map[string]string{"triggered": "false"})
		return t, nil
	}
	t.safety = sig

	response := c.safety.Response(sig.Type)
	t.State = AppendIncident(t.State, SafetyIncident{
		TurnIndex: t.Index,
		Type:      sig.Type,
		Response:  response,
	})

	t.trail.record("safety", map[string]string{
		"triggered":   "true",
		"safety_type": string(sig.Type),
	})
	capitan.Emit(ctx, SafetyTriggered,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldSafetyType.Field(string(sig.Type)),
	)

	t.directive = Directive{
		SessionID:   t.State.SessionID,
		TargetTurn:  t.Index + 1,
		Phase:       t.State.Phase,
		ActLabel:    actLabel(t.State.Metrics.CurrentAct),
		Strategy:    StrategyGround,
		Device:      DeviceSilence,
		Instruction: response,
		Posture:     postureFor(StrategyGround),
		Pressure: PressureGovernance{
			Current: t.State.Metrics.AveragePressure,
			Ceiling: ceilingFor(RiskCritical),
		},
		Guardrails: Guardrails{
			ForbiddenTopics:    []string{"the interview itself"},
			PermissionRequired: []string{},
			Risk:               RiskCritical,
			SafetyMode:         SafetyModeStopAndGround,
		},
		NewPatterns:    []PatternDisclosure{},
		PendingReveals: t.State.PendingReveals(),
	}
	if err := ValidateDirective(t.directive); err != nil {
		return t, fmt.Errorf("failed to build safety directive: %w", err)
	}

	// The exchange happened; the counter still advances.
	t.State = AdvanceTurn(t.State)
	t.done = true
	return t, nil
}

// runPatterns detects linguistic tells and merges them into the ledger.
func (c *ControlRoom) runPatterns(ctx context.Context, t *Turn) (*Turn, error) {
	t.signals = c.patterns.Detect(t.Message, t.Index)

	merged, err := MergePatterns(t.State, t.signals)
	if err != nil {
		return t, fmt.Errorf("failed to merge patterns: %w", err)
	}
	t.State = merged

	detail := map[string]string{"count": strconv.Itoa(len(t.signals))}
	for _, sig := range t.signals {
		detail[string(sig.Kind)] = fmt.Sprintf("%.2f", sig.Confidence)
		capitan.Emit(ctx, PatternDetected,
			FieldSessionID.Field(t.State.SessionID),
			FieldTurnIndex.Field(t.Index),
			FieldPatternKind.Field(string(sig.Kind)),
			FieldConfidence.Field(float32(sig.Confidence)),
		)
	}
	t.trail.record("patterns", detail)
	return t, nil
}

// runEchoes captures callback-worthy phrases.
func (c *ControlRoom) runEchoes(ctx context.Context, t *Turn) (*Turn, error) {
	captured := c.echoes.Capture(t.Message, t.Index, t.State.Metrics.CurrentAct)
	t.State = AppendEchoes(t.State, captured)

	for _, e := range captured {
		capitan.Emit(ctx, EchoCaptured,
			FieldSessionID.Field(t.State.SessionID),
			FieldTurnIndex.Field(t.Index),
			FieldEchoPhrase.Field(e.Phrase),
		)
	}
	t.trail.record("echoes", map[string]string{"count": strconv.Itoa(len(captured))})
	return t, nil
}

// runTapes scans the timeline for gaps. The widest gap with no pending
// missing-tape reveal stages a new permission-gated plan.
func (c *ControlRoom) runTapes(ctx context.Context, t *Turn) (*Turn, error) {
	gaps := c.tapes.FindGaps(t.State.Timeline)
	detail := map[string]string{"gaps": strconv.Itoa(len(gaps))}

	if len(gaps) > 0 && !t.State.HasPendingReveal(RevealMissingTape) {
		gap := gaps[0]
		capitan.Emit(ctx, GapDetected,
			FieldSessionID.Field(t.State.SessionID),
			FieldTurnIndex.Field(t.Index),
			FieldGapDays.Field(gap.Days),
		)

		plan := NewRevealPlan(RevealSpec{
			Category:          RevealMissingTape,
			Receipt:           c.tapes.ReceiptCard(gap),
			Trigger:           TriggerInevitability,
			RequirePermission: true,
			CreatedTurn:       t.Index,
		})
		updated, err := UpsertReveal(t.State, plan)
		if err != nil {
			return t, fmt.Errorf("failed to stage missing-tape reveal: %w", err)
		}
		t.State = updated
		detail["reveal_id"] = plan.ID

		capitan.Emit(ctx, RevealCreated,
			FieldSessionID.Field(t.State.SessionID),
			FieldTurnIndex.Field(t.Index),
			FieldRevealID.Field(plan.ID),
		)
	}
	t.trail.record("tapes", detail)
	return t, nil
}

// runInevitability scores the merged state.
func (c *ControlRoom) runInevitability(ctx context.Context, t *Turn) (*Turn, error) {
	t.inevitability = c.inevitability.Compute(t.State)

	capitan.Emit(ctx, InevitabilityScored,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldScore.Field(float32(t.inevitability.Score)),
		FieldRationale.Field(t.inevitability.Rationale),
	)
	t.trail.record("inevitability", map[string]string{
		"score":     fmt.Sprintf("%.2f", t.inevitability.Score),
		"rationale": t.inevitability.Rationale,
	})
	return t, nil
}

// runReveal asks the orchestrator about the single considered pending plan
// and applies its decision to the ledger.
func (c *ControlRoom) runReveal(ctx context.Context, t *Turn) (*Turn, error) {
	decision := c.reveals.Decide(t.State, t.inevitability, c.governor)
	if decision == nil {
		t.trail.record("reveal", map[string]string{"pending": "none"})
		return t, nil
	}

	plan, ok := findReveal(t.State, decision.PlanID)
	if !ok {
		return t, fmt.Errorf("%w: reveal %q disappeared mid-turn", ErrInvalidState, decision.PlanID)
	}

	switch decision.Action {
	case RevealActionVeto:
		plan.Status = RevealVetoed
		plan.DecidedTurn = t.Index
		plan.VetoReason = decision.Reason
		updated, err := UpsertReveal(t.State, plan)
		if err != nil {
			return t, fmt.Errorf("failed to veto reveal: %w", err)
		}
		t.State = updated
	case RevealActionExecute:
		plan.Status = RevealExecuted
		plan.DecidedTurn = t.Index
		updated, err := UpsertReveal(t.State, plan)
		if err != nil {
			return t, fmt.Errorf("failed to execute reveal: %w", err)
		}
		t.State = updated
		t.executingReveal = &plan
	case RevealActionDefer:
		// No ledger change; the plan waits.
	}

	capitan.Emit(ctx, RevealDecided,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldRevealID.Field(decision.PlanID),
		FieldRevealAction.Field(string(decision.Action)),
		FieldReason.Field(decision.Reason),
	)
	t.trail.record("reveal", map[string]string{
		"reveal_id": decision.PlanID,
		"action":    string(decision.Action),
		"reason":    decision.Reason,
	})
	return t, nil
}

// findReveal looks a plan up by ID.
func findReveal(state SessionState, id string) (RevealPlan, bool) {
	for _, p := range state.RevealLedger {
		if p.ID == id {
			return p, true
		}
	}
	return RevealPlan{}, false
}

// detected reports whether this turn's signals include the kind.
func (t *Turn) detected(kind PatternKind) bool {
	for _, sig := range t.signals {
		if sig.Kind == kind {
			return true
		}
	}
	return false
}

// runStrategy is the fixed priority cascade; the first matching rule wins
// and the default is a hold. The cascade's pressure delta is applied to the
// running average immediately, clamped to the governed range.
func (c *ControlRoom) runStrategy(ctx context.Context, t *Turn) (*Turn, error) {
	switch {
	case t.executingReveal != nil:
		instruction := fmt.Sprintf("Pivot toward the staged reveal. Open with the tease: %q.",
			t.executingReveal.TeaseLine)
		if t.executingReveal.Permission.Required {
			instruction += fmt.Sprintf(" Before the payload, ask permission: %q.",
				t.executingReveal.Permission.AskCopy)
		}
		instruction += fmt.Sprintf(" After disclosure, land the integration prompt: %q.",
			t.executingReveal.IntegrationPrompt)
		t.proposal = Proposal{Strategy: StrategyPivot, Instruction: instruction}

	case t.detected(PatternFutureEvasion):
		t.proposal = Proposal{
			Strategy:      StrategyPress,
			Device:        DeviceFutureLock,
			Instruction:   "The guest is escaping into the future tense. Lock them to today: ask what is true right now, not what they promise to become.",
			PressureDelta: 2,
		}

	case t.detected(PatternPassiveShift):
		t.proposal = Proposal{
			Strategy:      StrategyPress,
			Device:        DeviceAgencyCheck,
			Instruction:   "Passive constructions are hiding the actor. Ask who, by name, did the thing.",
			PressureDelta: 1,
		}

	case t.detected(PatternSomaticLeakage):
		t.proposal = Proposal{
			Strategy:      StrategyYield,
			Device:        DeviceSomaticBridge,
			Instruction:   "The body is already answering. Slow down and bridge to the sensation: where do they feel it right now?",
			PressureDelta: -2,
		}

	default:
		t.proposal = Proposal{
			Strategy:    StrategyHold,
			Instruction: "Maintain the current trajectory. No escalation this turn.",
		}
	}

	t.State = AdjustPressure(t.State, t.proposal.PressureDelta)
	t.risk = riskFor(t.State)

	capitan.Emit(ctx, StrategySelected,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldStrategy.Field(string(t.proposal.Strategy)),
		FieldDevice.Field(string(t.proposal.Device)),
		FieldPressure.Field(float32(t.State.Metrics.AveragePressure)),
	)
	t.trail.record("strategy", map[string]string{
		"strategy": string(t.proposal.Strategy),
		"device":   string(t.proposal.Device),
		"pressure": fmt.Sprintf("%.1f", t.State.Metrics.AveragePressure),
	})
	return t, nil
}

// riskFor grades the turn from the post-merge state. Critical is reserved
// for the safety path, which never reaches this stage.
func riskFor(state SessionState) RiskLevel {
	if state.Metrics.AveragePressure >= 8 || state.UnaddressedContradiction() {
		return RiskElevated
	}
	return RiskLow
}

// runGovernor submits the proposal for review. A veto substitutes the
// governor's alternative and eases pressure down by one.
func (c *ControlRoom) runGovernor(ctx context.Context, t *Turn) (*Turn, error) {
	review := c.governor.ReviewProposal(t.proposal, ProposalContext{
		Pressure: t.State.Metrics.AveragePressure,
		Risk:     t.risk,
	})
	if !review.Vetoed {
		t.trail.record("governor", map[string]string{"vetoed": "false"})
		return t, nil
	}

	t.proposal.Strategy = review.AlternativeStrategy
	t.proposal.Device = review.AlternativeDevice
	t.State = AdjustPressure(t.State, -1)

	capitan.Emit(ctx, GovernorVetoed,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldStrategy.Field(string(review.AlternativeStrategy)),
		FieldReason.Field(review.Reason),
	)
	t.trail.record("governor", map[string]string{
		"vetoed":   "true",
		"reason":   review.Reason,
		"strategy": string(review.AlternativeStrategy),
	})
	return t, nil
}

// runDirective assembles and schema-validates the outbound envelope.
func (c *ControlRoom) runDirective(ctx context.Context, t *Turn) (*Turn, error) {
	var permissionTopics []string
	for _, loop := range t.State.OpenLoops {
		if !loop.Closed && loop.Priority >= DefaultPermissionPriority {
			permissionTopics = append(permissionTopics, loop.Topic)
		}
	}
	if permissionTopics == nil {
		permissionTopics = []string{}
	}

	// Each fresh signal carries the director's disclosure ruling so the
	// response layer knows which tells may be named on air.
	newPatterns := make([]PatternDisclosure, len(t.signals))
	for i, sig := range t.signals {
		newPatterns[i] = PatternDisclosure{
			PatternRecord:     sig,
			DisclosureAllowed: c.director.PatternDisclosureAllowed(sig, t.risk),
		}
	}

	t.directive = Directive{
		SessionID:   t.State.SessionID,
		TargetTurn:  t.Index + 1,
		Phase:       t.State.Phase,
		ActLabel:    actLabel(t.State.Metrics.CurrentAct),
		Strategy:    t.proposal.Strategy,
		Device:      t.proposal.Device,
		Instruction: t.proposal.Instruction,
		Posture:     postureFor(t.proposal.Strategy),
		Pressure: PressureGovernance{
			Current: t.State.Metrics.AveragePressure,
			Ceiling: ceilingFor(t.risk),
		},
		Guardrails: Guardrails{
			ForbiddenTopics:    []string{},
			PermissionRequired: permissionTopics,
			Risk:               t.risk,
			SafetyMode:         SafetyModeNone,
		},
		NewPatterns:    newPatterns,
		PendingReveals: t.State.PendingReveals(),
	}

	if err := ValidateDirective(t.directive); err != nil {
		return t, fmt.Errorf("failed to validate outbound directive: %w", err)
	}

	capitan.Emit(ctx, DirectiveIssued,
		FieldSessionID.Field(t.State.SessionID),
		FieldTurnIndex.Field(t.Index),
		FieldStrategy.Field(string(t.directive.Strategy)),
		FieldRisk.Field(string(t.risk)),
	)
	t.trail.record("directive", map[string]string{
		"strategy":    string(t.directive.Strategy),
		"target_turn": strconv.Itoa(t.directive.TargetTurn),
	})
	return t, nil
}

// runAdvance moves the turn counter forward by exactly one.
func (c *ControlRoom) runAdvance(_ context.Context, t *Turn) (*Turn, error) {
	t.State = AdvanceTurn(t.State)
	t.trail.record("advance", map[string]string{
		"turn_index": strconv.Itoa(t.State.Metrics.CurrentTurnIndex),
	})
	return t, nil
}

// actLabel renders the act label carried on directives.
func actLabel(act int) string {
	return fmt.Sprintf("act_%d", act)
}
