package controlroom

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reducers are the only functions that produce new session states. Each one
// clones its input and returns the modified copy; the caller's value is
// never touched. This keeps the state safe to hand to every engine within a
// turn as plain transport.

// MergePatterns folds detected signals into the pattern ledger. A new kind
// is appended; a known kind accumulates: occurrence count up by one,
// confidence averaged with the incoming signal then nudged upward for the
// repeat, evidence extended, last-seen turn advanced. Signals outside the
// closed catalogue are rejected, not stored.
func MergePatterns(state SessionState, signals []PatternRecord) (SessionState, error) {
	out := state.Clone()
	for _, sig := range signals {
		if err := validateSignal(sig); err != nil {
			return state, fmt.Errorf("failed to merge pattern signal: %w", err)
		}

		merged := false
		for i, existing := range out.PatternLedger {
			if existing.Kind != sig.Kind {
				continue
			}
			existing.OccurrenceCount++
			existing.Confidence = clampUnit((existing.Confidence+sig.Confidence)/2 + 0.05)
			existing.Evidence = append(existing.Evidence, sig.Evidence...)
			if sig.LastSeenTurn > existing.LastSeenTurn {
				existing.LastSeenTurn = sig.LastSeenTurn
			}
			out.PatternLedger[i] = existing
			merged = true
			break
		}
		if !merged {
			sig.Evidence = append([]string(nil), sig.Evidence...)
			out.PatternLedger = append(out.PatternLedger, sig)
		}
	}
	return out, nil
}

// AppendEchoes adds captured echo records to the session.
func AppendEchoes(state SessionState, echoes []EchoRecord) SessionState {
	out := state.Clone()
	out.EchoPhrases = append(out.EchoPhrases, echoes...)
	return out
}

// MarkEchoUsed flags the echo at index as played back. Out-of-range indexes
// leave the state unchanged.
func MarkEchoUsed(state SessionState, index int) SessionState {
	if index < 0 || index >= len(state.EchoPhrases) {
		return state
	}
	out := state.Clone()
	out.EchoPhrases[index].Used = true
	return out
}

// AppendIncident records a triggered safety event. The incident list is
// append-only by construction: no reducer removes entries.
func AppendIncident(state SessionState, incident SafetyIncident) SessionState {
	out := state.Clone()
	if incident.At.IsZero() {
		incident.At = time.Now()
	}
	out.SafetyIncidents = append(out.SafetyIncidents, incident)
	return out
}

// UpsertReveal inserts a new plan or applies a status transition to an
// existing one. Transitions are monotonic: a plan in a terminal status is
// immutable, and a duplicate ID on insert is rejected.
func UpsertReveal(state SessionState, plan RevealPlan) (SessionState, error) {
	out := state.Clone()
	for i, existing := range out.RevealLedger {
		if existing.ID != plan.ID {
			continue
		}
		if existing.Status.Terminal() {
			return state, fmt.Errorf("%w: %s is %s", ErrRevealTerminal, existing.ID, existing.Status)
		}
		if !plan.Status.Valid() {
			return state, fmt.Errorf("%w: reveal status %q", ErrInvalidState, plan.Status)
		}
		out.RevealLedger[i] = plan
		return out, nil
	}

	if !plan.Status.Valid() || !plan.Category.Valid() || !plan.Trigger.Valid() {
		return state, fmt.Errorf("%w: malformed reveal plan %q", ErrInvalidState, plan.ID)
	}
	out.RevealLedger = append(out.RevealLedger, plan)
	return out, nil
}

// AdjustPressure applies an additive delta to the running average and
// clamps the result into the governed range.
func AdjustPressure(state SessionState, delta float64) SessionState {
	out := state.Clone()
	out.Metrics.AveragePressure = clampPressure(out.Metrics.AveragePressure + delta)
	return out
}

// AdvanceTurn moves the turn counter forward by exactly one.
func AdvanceTurn(state SessionState) SessionState {
	out := state.Clone()
	out.Metrics.CurrentTurnIndex++
	return out
}

// RecordClaim appends a guest assertion to the claims ledger and returns the
// new claim's ID.
func RecordClaim(state SessionState, text string, turnIndex int) (SessionState, string) {
	out := state.Clone()
	id := uuid.New().String()
	out.Claims = append(out.Claims, Claim{ID: id, Text: text, TurnIndex: turnIndex})
	return out, id
}

// RecordContradiction links a claim to a described conflict, starting
// unaddressed.
func RecordContradiction(state SessionState, claimID, description string, turnIndex int) (SessionState, string) {
	out := state.Clone()
	id := uuid.New().String()
	out.Contradictions = append(out.Contradictions, Contradiction{
		ID:          id,
		ClaimID:     claimID,
		Description: description,
		Status:      ClaimUnaddressed,
		TurnIndex:   turnIndex,
	})
	return out, id
}

// ResolveContradiction marks a contradiction addressed. Unknown IDs leave
// the state unchanged.
func ResolveContradiction(state SessionState, id string) SessionState {
	out := state.Clone()
	for i, c := range out.Contradictions {
		if c.ID == id {
			out.Contradictions[i].Status = ClaimResolved
			break
		}
	}
	return out
}

// AddOpenLoop flags a topic as unresolved with a priority in [0,10].
func AddOpenLoop(state SessionState, topic string, priority, turnIndex int) SessionState {
	out := state.Clone()
	if priority < 0 {
		priority = 0
	}
	if priority > 10 {
		priority = 10
	}
	out.OpenLoops = append(out.OpenLoops, OpenLoop{
		Topic:      topic,
		Priority:   priority,
		OpenedTurn: turnIndex,
	})
	return out
}

// CloseOpenLoop marks the first open loop with the topic as closed.
func CloseOpenLoop(state SessionState, topic string) SessionState {
	out := state.Clone()
	for i, l := range out.OpenLoops {
		if l.Topic == topic && !l.Closed {
			out.OpenLoops[i].Closed = true
			break
		}
	}
	return out
}
