package controlroom

import "time"

// AuditEvent is one structured record of a turn-processing step. The trail
// is append-only, ordered per session, replayable, and never surfaced to
// the guest. Nothing in the engine reads audit events back; they carry no
// control flow.
type AuditEvent struct {
	Seq       int               `json:"seq"`
	SessionID string            `json:"session_id"`
	TurnIndex int               `json:"turn_index"`
	TraceID   string            `json:"trace_id"`
	Stage     string            `json:"stage"`
	Detail    map[string]string `json:"detail,omitempty"`
	At        time.Time         `json:"at"`
}

// auditTrail accumulates the events of a single turn in step order.
type auditTrail struct {
	sessionID string
	turnIndex int
	traceID   string
	events    []AuditEvent
}

// record appends one event for the named stage.
func (a *auditTrail) record(stage string, detail map[string]string) {
	a.events = append(a.events, AuditEvent{
		Seq:       len(a.events),
		SessionID: a.sessionID,
		TurnIndex: a.turnIndex,
		TraceID:   a.traceID,
		Stage:     stage,
		Detail:    detail,
		At:        time.Now(),
	})
}
