package controlroom

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// sessionRow is the persisted shape of one session: the full state as a
// jsonb document keyed by session ID. The state schema is versioned by the
// application, not the table.
type sessionRow struct {
	ID        string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	SessionID string    `db:"session_id" type:"text" constraints:"notnull,unique"`
	State     []byte    `db:"state" type:"jsonb" constraints:"notnull"`
	Created   time.Time `db:"created" type:"timestamp" constraints:"notnull"`
	Updated   time.Time `db:"updated" type:"timestamp" constraints:"notnull"`
}

// auditRow is one persisted audit event. Rows are append-only and ordered
// per session by (turn_index, seq).
type auditRow struct {
	ID        string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	SessionID string    `db:"session_id" type:"text" constraints:"notnull"`
	TurnIndex int       `db:"turn_index" type:"integer" constraints:"notnull"`
	Seq       int       `db:"seq" type:"integer" constraints:"notnull"`
	TraceID   string    `db:"trace_id" type:"text" constraints:"notnull"`
	Stage     string    `db:"stage" type:"text" constraints:"notnull"`
	Detail    []byte    `db:"detail" type:"jsonb" default:"'{}'"`
	Recorded  time.Time `db:"recorded" type:"timestamp" constraints:"notnull"`
}

// SoyStore implements Store using soy for Postgres persistence.
type SoyStore struct {
	sessions *soy.Soy[sessionRow]
	audits   *soy.Soy[auditRow]
	db       *sqlx.DB
}

// NewSoyStore creates a new soy-backed session store.
func NewSoyStore(db *sqlx.DB) (*SoyStore, error) {
	renderer := postgres.New()

	sessions, err := soy.New[sessionRow](db, "sessions", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sessions table: %w", err)
	}

	audits, err := soy.New[auditRow](db, "audit_events", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit_events table: %w", err)
	}

	return &SoyStore{
		sessions: sessions,
		audits:   audits,
		db:       db,
	}, nil
}

// Get loads a session state by ID.
func (s *SoyStore) Get(ctx context.Context, sessionID string) (SessionState, error) {
	row, err := s.sessions.Select().
		Where("session_id", "=", "session_id").
		Exec(ctx, map[string]any{"session_id": sessionID})
	if errors.Is(err, sql.ErrNoRows) {
		return SessionState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return SessionState{}, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	var state SessionState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return SessionState{}, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	if err := ValidateState(state); err != nil {
		return SessionState{}, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return state, nil
}

// Put persists a session state, inserting on first write and replacing the
// jsonb document afterwards.
func (s *SoyStore) Put(ctx context.Context, state SessionState) error {
	if err := ValidateState(state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", state.SessionID, err)
	}

	existing, err := s.sessions.Select().
		Where("session_id", "=", "session_id").
		Exec(ctx, map[string]any{"session_id": state.SessionID})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to get session %s: %w", state.SessionID, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		row := sessionRow{
			SessionID: state.SessionID,
			State:     encoded,
			Created:   time.Now(),
			Updated:   time.Now(),
		}
		if _, err := s.sessions.Insert().Exec(ctx, &row); err != nil {
			return fmt.Errorf("failed to insert session %s: %w", state.SessionID, err)
		}
		return nil
	}

	_, err = s.sessions.Modify().
		Set("state", "state").
		Set("updated", "updated").
		Where("id", "=", "id").
		Exec(ctx, map[string]any{
			"state":   encoded,
			"updated": time.Now(),
			"id":      existing.ID,
		})
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", state.SessionID, err)
	}
	return nil
}

// AppendAudit persists a turn's audit trail. Events are write-once; there
// is no update or delete path.
func (s *SoyStore) AppendAudit(ctx context.Context, events []AuditEvent) error {
	for _, e := range events {
		detail, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("failed to encode audit detail: %w", err)
		}
		row := auditRow{
			SessionID: e.SessionID,
			TurnIndex: e.TurnIndex,
			Seq:       e.Seq,
			TraceID:   e.TraceID,
			Stage:     e.Stage,
			Detail:    detail,
			Recorded:  e.At,
		}
		if _, err := s.audits.Insert().Exec(ctx, &row); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}
	return nil
}

// AuditTrail loads the ordered audit events for one session.
func (s *SoyStore) AuditTrail(ctx context.Context, sessionID string) ([]AuditEvent, error) {
	rows, err := s.audits.Query().
		Where("session_id", "=", "session_id").
		OrderBy("turn_index", "asc").
		OrderBy("seq", "asc").
		Exec(ctx, map[string]any{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}

	events := make([]AuditEvent, len(rows))
	for i, row := range rows {
		var detail map[string]string
		if len(row.Detail) > 0 {
			if err := json.Unmarshal(row.Detail, &detail); err != nil {
				return nil, fmt.Errorf("failed to decode audit detail: %w", err)
			}
		}
		events[i] = AuditEvent{
			Seq:       row.Seq,
			SessionID: row.SessionID,
			TurnIndex: row.TurnIndex,
			TraceID:   row.TraceID,
			Stage:     row.Stage,
			Detail:    detail,
			At:        row.Recorded,
		}
	}
	return events, nil
}

// Close closes the underlying database connection.
func (s *SoyStore) Close() error {
	return s.db.Close()
}
