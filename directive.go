package controlroom

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Posture is the physical/tonal hint pair derived from the required
// strategy.
type Posture struct {
	Lean string `json:"lean"`
	Tone string `json:"tone"`
}

// postureFor derives posture deterministically: a press leans in and stays
// skeptical; everything else leans back and stays warm.
func postureFor(strategy Strategy) Posture {
	if strategy == StrategyPress {
		return Posture{Lean: LeanIn, Tone: ToneSkeptical}
	}
	return Posture{Lean: LeanBack, Tone: ToneWarm}
}

// PressureGovernance caps how hard the response layer may push next turn.
type PressureGovernance struct {
	Current float64 `json:"current"`
	Ceiling float64 `json:"ceiling"`
}

// Guardrails are the hard constraints the response layer must respect.
type Guardrails struct {
	ForbiddenTopics    []string   `json:"forbidden_topics"`
	PermissionRequired []string   `json:"permission_required"`
	Risk               RiskLevel  `json:"risk_level"`
	SafetyMode         SafetyMode `json:"safety_mode"`
}

// PatternDisclosure pairs a freshly detected signal with the director's
// ruling on whether the host may name it to the guest this turn. Signals
// that fail the gate still ride along for booth-side awareness.
type PatternDisclosure struct {
	PatternRecord
	DisclosureAllowed bool `json:"disclosure_allowed"`
}

// Directive is the earpiece feed: the structured envelope instructing the
// response-generation collaborator what strategy, tone, and constraints to
// use for the next turn. It is the core's only outbound channel and is
// never shown verbatim to the guest.
type Directive struct {
	SessionID   string   `json:"session_id"`
	TargetTurn  int      `json:"target_turn"`
	Phase       Phase    `json:"phase"`
	ActLabel    string   `json:"act_label"`
	Strategy    Strategy `json:"required_strategy"`
	Device      Device   `json:"suggested_device,omitempty"`
	Instruction string   `json:"instruction"`
	Posture     Posture  `json:"posture"`

	Pressure   PressureGovernance `json:"pressure"`
	Guardrails Guardrails         `json:"guardrails"`

	NewPatterns    []PatternDisclosure `json:"new_patterns"`
	PendingReveals []RevealPlan        `json:"pending_reveals"`
}

// ValidateDirective checks an outbound envelope before it leaves the core.
// A malformed directive is a hard error on the return path, never a silent
// default.
func ValidateDirective(d Directive) error {
	if d.SessionID == "" {
		return fmt.Errorf("%w: empty session_id", ErrInvalidDirective)
	}
	if d.TargetTurn < 0 {
		return fmt.Errorf("%w: negative target_turn %d", ErrInvalidDirective, d.TargetTurn)
	}
	if !d.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidDirective, d.Phase)
	}
	if !d.Strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidDirective, d.Strategy)
	}
	if !d.Device.Valid() {
		return fmt.Errorf("%w: unknown device %q", ErrInvalidDirective, d.Device)
	}
	if d.Instruction == "" {
		return fmt.Errorf("%w: empty instruction", ErrInvalidDirective)
	}
	if !d.Guardrails.Risk.Valid() {
		return fmt.Errorf("%w: unknown risk level %q", ErrInvalidDirective, d.Guardrails.Risk)
	}
	if !d.Guardrails.SafetyMode.Valid() {
		return fmt.Errorf("%w: unknown safety mode %q", ErrInvalidDirective, d.Guardrails.SafetyMode)
	}
	if d.Pressure.Current < minPressure || d.Pressure.Current > maxPressure {
		return fmt.Errorf("%w: pressure %.2f outside [%.0f,%.0f]",
			ErrInvalidDirective, d.Pressure.Current, minPressure, maxPressure)
	}
	if d.Pressure.Ceiling < minPressure || d.Pressure.Ceiling > maxPressure {
		return fmt.Errorf("%w: pressure ceiling %.2f outside [%.0f,%.0f]",
			ErrInvalidDirective, d.Pressure.Ceiling, minPressure, maxPressure)
	}
	for _, p := range d.NewPatterns {
		if err := validateSignal(p.PatternRecord); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDirective, err)
		}
	}
	for _, r := range d.PendingReveals {
		if r.Status != RevealPending {
			return fmt.Errorf("%w: reveal %q listed as pending but is %q",
				ErrInvalidDirective, r.ID, r.Status)
		}
	}
	return nil
}

// DirectiveSchema exports the envelope contract as a JSON schema. Response
// collaborators that use structured output hand this to their model
// configuration instead of re-deriving the shape.
func DirectiveSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return r.Reflect(&Directive{})
}

// ceilingFor derives the pressure-governance ceiling from the turn's risk:
// critical pins the ceiling to the floor, elevated caps below the maximum,
// low leaves headroom up to the maximum.
func ceilingFor(risk RiskLevel) float64 {
	switch risk {
	case RiskCritical:
		return minPressure
	case RiskElevated:
		return 7
	default:
		return maxPressure
	}
}
