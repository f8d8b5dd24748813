package controlroom

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fail-loud boundaries. Malformed state in or out of
// the orchestrator is a hard error, never a silent default: a structurally
// invalid session must not propagate across turns.
var (
	ErrInvalidState      = errors.New("session state failed schema validation")
	ErrInvalidDirective  = errors.New("directive failed schema validation")
	ErrUnknownPattern    = errors.New("unknown pattern kind")
	ErrTurnIndexMismatch = errors.New("turn index does not match session state")
	ErrSessionNotFound   = errors.New("session not found")
	ErrRevealTerminal    = errors.New("reveal plan already in a terminal status")
)

// ValidateState checks a session state against the schema: closed
// vocabularies only, governed metrics in range, unique reveal IDs, unique
// pattern kinds. It returns nil for a valid state and a wrapped
// ErrInvalidState naming the first violation otherwise.
func ValidateState(s SessionState) error {
	if s.SessionID == "" {
		return fmt.Errorf("%w: empty session_id", ErrInvalidState)
	}
	if s.Metrics.CurrentTurnIndex < 0 {
		return fmt.Errorf("%w: negative turn index %d", ErrInvalidState, s.Metrics.CurrentTurnIndex)
	}
	if s.Metrics.AveragePressure < minPressure || s.Metrics.AveragePressure > maxPressure {
		return fmt.Errorf("%w: average_pressure %.2f outside [%.0f,%.0f]",
			ErrInvalidState, s.Metrics.AveragePressure, minPressure, maxPressure)
	}
	if s.Metrics.CurrentAct < 1 {
		return fmt.Errorf("%w: current_act %d below 1", ErrInvalidState, s.Metrics.CurrentAct)
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidState, s.Phase)
	}

	seenKinds := make(map[PatternKind]bool, len(s.PatternLedger))
	for _, p := range s.PatternLedger {
		if !p.Kind.Valid() {
			return fmt.Errorf("%w: %q in pattern ledger", ErrUnknownPattern, p.Kind)
		}
		if seenKinds[p.Kind] {
			return fmt.Errorf("%w: pattern kind %q appears twice in ledger", ErrInvalidState, p.Kind)
		}
		seenKinds[p.Kind] = true
		if p.Confidence < 0 || p.Confidence > 1 {
			return fmt.Errorf("%w: pattern %q confidence %.2f outside [0,1]",
				ErrInvalidState, p.Kind, p.Confidence)
		}
		if p.OccurrenceCount < 1 {
			return fmt.Errorf("%w: pattern %q occurrence_count %d below 1",
				ErrInvalidState, p.Kind, p.OccurrenceCount)
		}
	}

	for _, e := range s.EchoPhrases {
		if e.Phrase == "" {
			return fmt.Errorf("%w: echo record with empty phrase", ErrInvalidState)
		}
		if !e.Category.Valid() {
			return fmt.Errorf("%w: unknown echo category %q", ErrInvalidState, e.Category)
		}
	}

	seenIDs := make(map[string]bool, len(s.RevealLedger))
	for _, r := range s.RevealLedger {
		if r.ID == "" {
			return fmt.Errorf("%w: reveal plan with empty id", ErrInvalidState)
		}
		if seenIDs[r.ID] {
			return fmt.Errorf("%w: duplicate reveal plan id %q", ErrInvalidState, r.ID)
		}
		seenIDs[r.ID] = true
		if !r.Status.Valid() {
			return fmt.Errorf("%w: reveal %q has unknown status %q", ErrInvalidState, r.ID, r.Status)
		}
		if !r.Category.Valid() {
			return fmt.Errorf("%w: reveal %q has unknown category %q", ErrInvalidState, r.ID, r.Category)
		}
		if !r.Trigger.Valid() {
			return fmt.Errorf("%w: reveal %q has unknown trigger %q", ErrInvalidState, r.ID, r.Trigger)
		}
	}

	for _, i := range s.SafetyIncidents {
		if !i.Type.Valid() {
			return fmt.Errorf("%w: unknown safety incident type %q", ErrInvalidState, i.Type)
		}
	}

	for _, l := range s.OpenLoops {
		if l.Topic == "" {
			return fmt.Errorf("%w: open loop with empty topic", ErrInvalidState)
		}
		if l.Priority < 0 || l.Priority > 10 {
			return fmt.Errorf("%w: open loop %q priority %d outside [0,10]",
				ErrInvalidState, l.Topic, l.Priority)
		}
	}

	for _, c := range s.Contradictions {
		if !c.Status.Valid() {
			return fmt.Errorf("%w: contradiction %q has unknown status %q",
				ErrInvalidState, c.ID, c.Status)
		}
	}

	return nil
}

// validateSignal rejects pattern signals from detectors that drifted outside
// the closed catalogue, keeping the ledger vocabulary auditable.
func validateSignal(sig PatternRecord) error {
	if !sig.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPattern, sig.Kind)
	}
	if sig.Confidence < 0 || sig.Confidence > 1 {
		return fmt.Errorf("%w: signal %q confidence %.2f outside [0,1]",
			ErrInvalidState, sig.Kind, sig.Confidence)
	}
	if sig.OccurrenceCount < 1 {
		return fmt.Errorf("%w: signal %q occurrence_count %d below 1",
			ErrInvalidState, sig.Kind, sig.OccurrenceCount)
	}
	return nil
}
