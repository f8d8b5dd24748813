package controlroom

import (
	"time"

	"github.com/google/uuid"
)

// Metrics is the governed numeric core of a session.
type Metrics struct {
	// CurrentTurnIndex counts processed interview exchanges. It advances by
	// exactly one per processed turn; activation turns do not advance it.
	CurrentTurnIndex int `json:"current_turn_index"`
	// AveragePressure is the governed intensity scalar, always within [1,10].
	AveragePressure float64 `json:"average_pressure"`
	// CurrentAct is the narrative act the session is in, starting at 1.
	CurrentAct int `json:"current_act"`
}

// PatternRecord is one entry of the pattern ledger: a linguistic tell with
// its accumulated occurrence count and confidence. A kind appears at most
// once in the ledger; repeated detections accumulate rather than overwrite.
type PatternRecord struct {
	Kind            PatternKind `json:"kind"`
	Confidence      float64     `json:"confidence"`
	Evidence        []string    `json:"evidence"`
	Note            string      `json:"note"`
	FirstSeenTurn   int         `json:"first_seen_turn"`
	LastSeenTurn    int         `json:"last_seen_turn"`
	OccurrenceCount int         `json:"occurrence_count"`
}

// EchoRecord is a verbatim guest phrase held back for a delayed callback.
// An echo may not surface until the session reaches EligibleAfterAct or
// EligibleAfterTurn; immediate playback of a just-spoken phrase feels
// mechanical.
type EchoRecord struct {
	Phrase            string       `json:"phrase"`
	Category          EchoCategory `json:"category"`
	CapturedTurn      int          `json:"captured_turn"`
	CapturedAct       int          `json:"captured_act"`
	EligibleAfterAct  int          `json:"eligible_after_act"`
	EligibleAfterTurn int          `json:"eligible_after_turn"`
	Used              bool         `json:"used"`
}

// EligibleAt reports whether the echo may surface at the given act and turn.
// Either gate opening is sufficient.
func (e EchoRecord) EligibleAt(act, turn int) bool {
	return act >= e.EligibleAfterAct || turn >= e.EligibleAfterTurn
}

// ReceiptCard is the payload of a reveal: the concrete withheld material.
type ReceiptCard struct {
	Type           RevealCategory `json:"type"`
	DateStart      time.Time      `json:"date_start,omitempty"`
	DateEnd        time.Time      `json:"date_end,omitempty"`
	GapDescription string         `json:"gap_description,omitempty"`
	Quote          string         `json:"quote,omitempty"`
	Source         string         `json:"source,omitempty"`
}

// PermissionGate controls whether a reveal needs the guest's explicit
// go-ahead before its payload is disclosed.
type PermissionGate struct {
	Required bool   `json:"required"`
	AskCopy  string `json:"ask_copy,omitempty"`
}

// RevealPlan is a staged disclosure of withheld material. Its status moves
// pending → executed or pending → vetoed and never reverses.
type RevealPlan struct {
	ID                string         `json:"id"`
	Category          RevealCategory `json:"category"`
	Status            RevealStatus   `json:"status"`
	Trigger           RevealTrigger  `json:"trigger"`
	TeaseLine         string         `json:"tease_line"`
	Permission        PermissionGate `json:"permission"`
	Payload           ReceiptCard    `json:"payload"`
	IntegrationPrompt string         `json:"integration_prompt"`
	CreatedTurn       int            `json:"created_turn"`
	DecidedTurn       int            `json:"decided_turn,omitempty"`
	VetoReason        string         `json:"veto_reason,omitempty"`
}

// SafetyIncident records one triggered crisis check. The incident list is
// append-only; nothing ever deletes a recorded incident.
type SafetyIncident struct {
	TurnIndex int        `json:"turn_index"`
	Type      SafetyType `json:"type"`
	Response  string     `json:"response"`
	At        time.Time  `json:"at"`
}

// TimelineEvent is a dated life event supplied by upstream collaborators.
// The engine reads the timeline for gap detection and never mutates it.
type TimelineEvent struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// OpenLoop is a topic flagged as unresolved. Loops at or above the
// permission priority threshold may not be raised without asking first.
type OpenLoop struct {
	Topic      string `json:"topic"`
	Priority   int    `json:"priority"`
	OpenedTurn int    `json:"opened_turn"`
	Closed     bool   `json:"closed"`
}

// Claim is an assertion the guest made on the record.
type Claim struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	TurnIndex int    `json:"turn_index"`
}

// Contradiction links two incompatible claims and tracks whether the
// conflict has been addressed on air.
type Contradiction struct {
	ID          string      `json:"id"`
	ClaimID     string      `json:"claim_id"`
	Description string      `json:"description"`
	Status      ClaimStatus `json:"status"`
	TurnIndex   int         `json:"turn_index"`
}

// SessionState is the full accumulated memory of one interview session.
//
// # Concurrency
//
// SessionState is threaded by value: ProcessTurn never mutates its input and
// returns a fresh state. Concurrent turns for the same session must be
// serialized by the caller (key a mutex or queue on SessionID); out-of-order
// application would corrupt the turn-index invariant and ledger merge order.
// Turns for different sessions share nothing and may run in parallel.
type SessionState struct {
	SessionID string  `json:"session_id"`
	Metrics   Metrics `json:"metrics"`
	Phase     Phase   `json:"phase"`

	PatternLedger   []PatternRecord  `json:"pattern_ledger"`
	EchoPhrases     []EchoRecord     `json:"echo_phrases"`
	RevealLedger    []RevealPlan     `json:"reveal_ledger"`
	SafetyIncidents []SafetyIncident `json:"safety_incidents"`
	Timeline        []TimelineEvent  `json:"timeline"`
	OpenLoops       []OpenLoop       `json:"open_loops"`
	Claims          []Claim          `json:"claims_ledger"`
	Contradictions  []Contradiction  `json:"contradiction_ledger"`

	// Director bookkeeping.
	CurrentTopic         string `json:"current_topic,omitempty"`
	ConsecutiveFollowups int    `json:"consecutive_followups"`

	// KernelMode is set by an activation command and names the kernel the
	// session is pinned to. Empty means the default interview kernel.
	KernelMode string `json:"kernel_mode,omitempty"`
}

// NewSessionState creates a schema-valid empty session. The session starts
// live, in act one, at the pressure floor.
func NewSessionState() SessionState {
	return SessionState{
		SessionID: uuid.New().String(),
		Metrics: Metrics{
			CurrentTurnIndex: 0,
			AveragePressure:  minPressure,
			CurrentAct:       1,
		},
		Phase:           PhaseLive,
		PatternLedger:   []PatternRecord{},
		EchoPhrases:     []EchoRecord{},
		RevealLedger:    []RevealPlan{},
		SafetyIncidents: []SafetyIncident{},
		Timeline:        []TimelineEvent{},
		OpenLoops:       []OpenLoop{},
		Claims:          []Claim{},
		Contradictions:  []Contradiction{},
	}
}

// Clone returns a deep copy of the state. Reducers clone before writing so
// the caller's value is never touched.
func (s SessionState) Clone() SessionState {
	out := s

	out.PatternLedger = make([]PatternRecord, len(s.PatternLedger))
	for i, p := range s.PatternLedger {
		p.Evidence = append([]string(nil), p.Evidence...)
		out.PatternLedger[i] = p
	}

	out.EchoPhrases = append([]EchoRecord(nil), s.EchoPhrases...)
	out.RevealLedger = append([]RevealPlan(nil), s.RevealLedger...)
	out.SafetyIncidents = append([]SafetyIncident(nil), s.SafetyIncidents...)
	out.Timeline = append([]TimelineEvent(nil), s.Timeline...)
	out.OpenLoops = append([]OpenLoop(nil), s.OpenLoops...)
	out.Claims = append([]Claim(nil), s.Claims...)
	out.Contradictions = append([]Contradiction(nil), s.Contradictions...)

	return out
}

// Pattern returns the ledger record for a kind, if present.
func (s SessionState) Pattern(kind PatternKind) (PatternRecord, bool) {
	for _, p := range s.PatternLedger {
		if p.Kind == kind {
			return p, true
		}
	}
	return PatternRecord{}, false
}

// PendingReveals returns the pending plans in consideration order: category
// priority first, creation order within a category.
func (s SessionState) PendingReveals() []RevealPlan {
	var pending []RevealPlan
	for _, p := range s.RevealLedger {
		if p.Status == RevealPending {
			pending = append(pending, p)
		}
	}
	// Stable selection keeps creation order within each category.
	for i := 0; i < len(pending); i++ {
		best := i
		for j := i + 1; j < len(pending); j++ {
			if revealPriority[pending[j].Category] < revealPriority[pending[best].Category] {
				best = j
			}
		}
		if best != i {
			plan := pending[best]
			copy(pending[i+1:best+1], pending[i:best])
			pending[i] = plan
		}
	}
	return pending
}

// HasPendingReveal reports whether a pending plan of the category exists.
func (s SessionState) HasPendingReveal(category RevealCategory) bool {
	for _, p := range s.RevealLedger {
		if p.Status == RevealPending && p.Category == category {
			return true
		}
	}
	return false
}

// UnaddressedContradiction reports whether any recorded contradiction is
// still unaddressed.
func (s SessionState) UnaddressedContradiction() bool {
	for _, c := range s.Contradictions {
		if c.Status == ClaimUnaddressed {
			return true
		}
	}
	return false
}
