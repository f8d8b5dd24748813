package controlroom

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProcessTurnPressesOnFutureEvasion(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	result, err := room.ProcessTurn(context.Background(),
		"I guess I'll try to be better going forward, I promise.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	directive := result.Directive
	if directive.Strategy != StrategyPress {
		t.Errorf("expected press, got %s", directive.Strategy)
	}
	if directive.Device != DeviceFutureLock {
		t.Errorf("expected future_lock, got %s", directive.Device)
	}
	if directive.Posture.Lean != LeanIn || directive.Posture.Tone != ToneSkeptical {
		t.Errorf("press posture is wrong: %+v", directive.Posture)
	}
	if directive.Pressure.Current != 3 {
		t.Errorf("expected pressure 3 after the press delta, got %f", directive.Pressure.Current)
	}
	if directive.Pressure.Ceiling != 10 {
		t.Errorf("expected full headroom at low risk, got %f", directive.Pressure.Ceiling)
	}
	if directive.TargetTurn != 1 {
		t.Errorf("expected target turn 1, got %d", directive.TargetTurn)
	}

	if len(directive.NewPatterns) != 1 || directive.NewPatterns[0].Kind != PatternFutureEvasion {
		t.Fatalf("expected one future_tense_evasion signal, got %+v", directive.NewPatterns)
	}

	if result.State.Metrics.CurrentTurnIndex != 1 {
		t.Errorf("expected successor turn index 1, got %d", result.State.Metrics.CurrentTurnIndex)
	}
	if _, ok := result.State.Pattern(PatternFutureEvasion); !ok {
		t.Error("signal was not merged into the ledger")
	}
}

func TestProcessTurnYieldsOnSomaticLeakage(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	result, err := room.ProcessTurn(context.Background(),
		"Sometimes I can't breathe when I think about that winter.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	directive := result.Directive
	if directive.Strategy != StrategyYield {
		t.Errorf("expected yield, got %s", directive.Strategy)
	}
	if directive.Device != DeviceSomaticBridge {
		t.Errorf("expected somatic_bridge, got %s", directive.Device)
	}
	if directive.Posture.Lean != LeanBack || directive.Posture.Tone != ToneWarm {
		t.Errorf("yield posture is wrong: %+v", directive.Posture)
	}
	// The ease-off delta cannot push pressure below the floor.
	if directive.Pressure.Current != 1 {
		t.Errorf("expected pressure clamped at the floor, got %f", directive.Pressure.Current)
	}
}

func TestProcessTurnSafetyShortCircuit(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	result, err := room.ProcessTurn(context.Background(),
		"Honestly, some days I want to kill myself.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	directive := result.Directive
	if directive.Strategy != StrategyGround || directive.Device != DeviceSilence {
		t.Errorf("expected ground with silence, got %s/%s", directive.Strategy, directive.Device)
	}
	if directive.Guardrails.SafetyMode != SafetyModeStopAndGround {
		t.Errorf("expected stop_and_ground, got %s", directive.Guardrails.SafetyMode)
	}
	if directive.Guardrails.Risk != RiskCritical {
		t.Errorf("expected critical risk, got %s", directive.Guardrails.Risk)
	}
	if directive.Pressure.Ceiling != 1 {
		t.Errorf("expected ceiling pinned to the floor, got %f", directive.Pressure.Ceiling)
	}
	if directive.Instruction == "" {
		t.Error("expected the fixed grounding copy as the instruction")
	}

	if len(result.State.SafetyIncidents) != 1 {
		t.Fatalf("expected exactly one incident, got %d", len(result.State.SafetyIncidents))
	}
	incident := result.State.SafetyIncidents[0]
	if incident.Type != SafetyImminentSelfHarm {
		t.Errorf("expected imminent_self_harm, got %s", incident.Type)
	}
	if incident.At.IsZero() {
		t.Error("incident timestamp was not set")
	}

	// The crisis exchange still counts as a turn.
	if result.State.Metrics.CurrentTurnIndex != 1 {
		t.Errorf("expected turn index 1, got %d", result.State.Metrics.CurrentTurnIndex)
	}
	// Nothing downstream of the safety stage ran.
	if len(directive.NewPatterns) != 0 {
		t.Errorf("expected no pattern work on a crisis turn, got %d", len(directive.NewPatterns))
	}
	if len(result.State.PatternLedger) != 0 {
		t.Error("pattern ledger changed on a crisis turn")
	}
}

func TestProcessTurnStagesMissingTapeReveal(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()
	state.Timeline = []TimelineEvent{
		{ID: "a", Label: "the wedding", Date: date(2004, 1, 10)},
		{ID: "b", Label: "the move", Date: date(2004, 7, 28)},
	}

	result, err := room.ProcessTurn(context.Background(),
		"We moved around a lot in those years.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if len(result.State.RevealLedger) != 1 {
		t.Fatalf("expected exactly one staged reveal, got %d", len(result.State.RevealLedger))
	}
	plan := result.State.RevealLedger[0]
	if plan.Category != RevealMissingTape {
		t.Errorf("expected missing_tape, got %s", plan.Category)
	}
	if plan.Status != RevealPending {
		t.Errorf("a fresh gap reveal must wait for inevitability, got %s", plan.Status)
	}
	if !plan.Permission.Required || plan.Permission.AskCopy == "" {
		t.Error("expected a permission gate with ask copy")
	}
	if plan.Payload.GapDescription == "" {
		t.Error("expected the gap description on the payload")
	}

	if len(result.Directive.PendingReveals) != 1 {
		t.Errorf("directive must carry the pending plan, got %d", len(result.Directive.PendingReveals))
	}

	// A second turn must not stage a duplicate while the plan is pending.
	second, err := room.ProcessTurn(context.Background(),
		"There isn't much to say about it.", 1, result.State)
	if err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	if len(second.State.RevealLedger) != 1 {
		t.Errorf("expected no duplicate staging, got %d plans", len(second.State.RevealLedger))
	}
}

func TestProcessTurnGovernorVetoAtHighPressure(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()
	state.Metrics.AveragePressure = 8.5

	result, err := room.ProcessTurn(context.Background(),
		"I promise it'll be different going forward.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	directive := result.Directive
	if directive.Strategy != StrategyYield {
		t.Errorf("expected the veto substitute, got %s", directive.Strategy)
	}
	if directive.Device != DeviceFork {
		t.Errorf("expected offer_fork, got %s", directive.Device)
	}
	// Press delta +2 clamps to 10, then the veto eases one off.
	if directive.Pressure.Current != 9 {
		t.Errorf("expected pressure 9 after the veto, got %f", directive.Pressure.Current)
	}
	if directive.Guardrails.Risk != RiskElevated {
		t.Errorf("expected elevated risk, got %s", directive.Guardrails.Risk)
	}
	if directive.Pressure.Ceiling != 7 {
		t.Errorf("expected elevated ceiling 7, got %f", directive.Pressure.Ceiling)
	}
}

func TestProcessTurnGatesPatternDisclosure(t *testing.T) {
	room := NewControlRoom(nil)

	// A confident signal at low risk is cleared for on-air use.
	result, err := room.ProcessTurn(context.Background(),
		"I guess I'll try to be better going forward, I promise.", 0, NewSessionState())
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if len(result.Directive.NewPatterns) != 1 {
		t.Fatalf("expected one signal, got %+v", result.Directive.NewPatterns)
	}
	if !result.Directive.NewPatterns[0].DisclosureAllowed {
		t.Error("confident low-risk signal must be cleared for disclosure")
	}

	// A tentative signal stays booth-side even at low risk.
	result, err = room.ProcessTurn(context.Background(),
		"Haha, just kidding, it was nothing.", 0, NewSessionState())
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	deflection, ok := findDisclosure(result.Directive.NewPatterns, PatternHumorDeflection)
	if !ok {
		t.Fatalf("expected humor_deflection, got %+v", result.Directive.NewPatterns)
	}
	if deflection.DisclosureAllowed {
		t.Error("tentative signal must stay booth-side")
	}

	// Elevated risk keeps even confident signals booth-side.
	pressured := NewSessionState()
	pressured.Metrics.AveragePressure = 8.5
	result, err = room.ProcessTurn(context.Background(),
		"I guess I'll try to be better going forward, I promise.", 0, pressured)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	evasion, ok := findDisclosure(result.Directive.NewPatterns, PatternFutureEvasion)
	if !ok {
		t.Fatalf("expected future_tense_evasion, got %+v", result.Directive.NewPatterns)
	}
	if evasion.DisclosureAllowed {
		t.Error("no disclosure at elevated risk, regardless of confidence")
	}
}

func findDisclosure(patterns []PatternDisclosure, kind PatternKind) (PatternDisclosure, bool) {
	for _, p := range patterns {
		if p.Kind == kind {
			return p, true
		}
	}
	return PatternDisclosure{}, false
}

func TestProcessTurnActivationCommand(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	result, err := room.ProcessTurn(context.Background(), "@control-room:booth", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if result.State.KernelMode != "booth" {
		t.Errorf("expected kernel booth, got %q", result.State.KernelMode)
	}
	// An activation exchange is not an interview turn.
	if result.State.Metrics.CurrentTurnIndex != 0 {
		t.Errorf("activation must not advance the turn counter, got %d",
			result.State.Metrics.CurrentTurnIndex)
	}
	if result.Directive.Strategy != StrategyHold {
		t.Errorf("expected hold, got %s", result.Directive.Strategy)
	}
	// The next guest message is still turn 0.
	if result.Directive.TargetTurn != 0 {
		t.Errorf("activation must target the unadvanced turn, got %d", result.Directive.TargetTurn)
	}
}

func TestProcessTurnRejectsTurnIndexMismatch(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	if _, err := room.ProcessTurn(context.Background(), "hello", 3, state); !errors.Is(err, ErrTurnIndexMismatch) {
		t.Errorf("expected ErrTurnIndexMismatch, got %v", err)
	}
}

func TestProcessTurnRejectsInvalidState(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()
	state.Metrics.AveragePressure = 0

	if _, err := room.ProcessTurn(context.Background(), "hello", 0, state); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestProcessTurnNeverMutatesInput(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()
	state.Timeline = []TimelineEvent{
		{ID: "a", Label: "one", Date: date(2004, 1, 10)},
		{ID: "b", Label: "two", Date: date(2004, 7, 28)},
	}
	snapshot := state.Clone()

	if _, err := room.ProcessTurn(context.Background(),
		"I guess I'll try to be better going forward.", 0, state); err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if diff := cmp.Diff(snapshot, state); diff != "" {
		t.Errorf("input state was mutated:\n%s", diff)
	}
}

func TestProcessTurnAdvancesByExactlyOne(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	messages := []string{
		"We grew up on the coast.",
		"It wasn't that bad, honestly.",
		"Mistakes were made that summer.",
	}
	for i, message := range messages {
		result, err := room.ProcessTurn(context.Background(), message, i, state)
		if err != nil {
			t.Fatalf("turn %d failed: %v", i, err)
		}
		if result.State.Metrics.CurrentTurnIndex != i+1 {
			t.Fatalf("turn %d: expected index %d, got %d",
				i, i+1, result.State.Metrics.CurrentTurnIndex)
		}
		state = result.State
	}
}

func TestProcessTurnPressureStaysGoverned(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	// Hammer the press rule; pressure must never escape [1,10].
	for i := 0; i < 8; i++ {
		result, err := room.ProcessTurn(context.Background(),
			"I promise I'll do better next time, going forward.", i, state)
		if err != nil {
			t.Fatalf("turn %d failed: %v", i, err)
		}
		p := result.State.Metrics.AveragePressure
		if p < 1 || p > 10 {
			t.Fatalf("turn %d: pressure %f escaped the governed range", i, p)
		}
		state = result.State
	}
}

func TestProcessTurnPermissionTopicsFromOpenLoops(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()
	state.OpenLoops = []OpenLoop{
		{Topic: "the custody hearing", Priority: 9},
		{Topic: "the dog", Priority: 2},
		{Topic: "the settlement", Priority: 8, Closed: true},
	}

	result, err := room.ProcessTurn(context.Background(), "Ask me anything.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	got := result.Directive.Guardrails.PermissionRequired
	if len(got) != 1 || got[0] != "the custody hearing" {
		t.Errorf("expected only the open high-priority loop, got %v", got)
	}
}

func TestProcessTurnAuditTrail(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()

	result, err := room.ProcessTurn(context.Background(), "We grew up on the coast.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if len(result.Audit) == 0 {
		t.Fatal("expected an audit trail")
	}
	stages := make(map[string]bool, len(result.Audit))
	for i, event := range result.Audit {
		if event.Seq != i {
			t.Errorf("event %d has seq %d", i, event.Seq)
		}
		if event.SessionID != state.SessionID {
			t.Errorf("event %d has session %q", i, event.SessionID)
		}
		if event.TraceID == "" {
			t.Errorf("event %d has no trace id", i)
		}
		stages[event.Stage] = true
	}
	for _, stage := range []string{"validate", "safety", "patterns", "strategy", "directive", "advance"} {
		if !stages[stage] {
			t.Errorf("audit trail is missing stage %q", stage)
		}
	}
}

func TestProcessTurnExecutesManualRevealAndPivots(t *testing.T) {
	room := NewControlRoom(nil)
	state := NewSessionState()
	plan := NewRevealPlan(RevealSpec{
		Category:          RevealDirectQuote,
		Receipt:           ReceiptCard{Type: RevealDirectQuote, Quote: "I never wanted the house", Source: "deposition tape"},
		Trigger:           TriggerManual,
		RequirePermission: true,
	})
	state.RevealLedger = []RevealPlan{plan}

	result, err := room.ProcessTurn(context.Background(), "We grew up on the coast.", 0, state)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if result.Directive.Strategy != StrategyPivot {
		t.Errorf("expected a pivot toward the reveal, got %s", result.Directive.Strategy)
	}
	executed := result.State.RevealLedger[0]
	if executed.Status != RevealExecuted {
		t.Errorf("expected the plan executed, got %s", executed.Status)
	}
	if executed.DecidedTurn != 0 {
		t.Errorf("expected decided turn 0, got %d", executed.DecidedTurn)
	}
	if len(result.Directive.PendingReveals) != 0 {
		t.Errorf("an executed plan must leave the pending list, got %d", len(result.Directive.PendingReveals))
	}
}
