// Package controlroom implements the turn-processing engine for a
// structured, safety-governed conversational interview.
//
// Each guest message is run through a strictly ordered decision pipeline
// that detects linguistic tells, captures callback phrases, stages
// permission-gated reveals, scores inevitability, selects a conversational
// strategy, and submits it to a policy governor. The output is a validated
// directive envelope for the response layer and an immutable-update
// successor of the session state.
//
// # Core Types
//
//   - [SessionState] - the full accumulated memory of one session, threaded
//     by value across turns
//   - [Directive] - the earpiece feed: the structured envelope instructing
//     the response layer, never shown to the guest
//   - [TurnResult] - directive, successor state, and the turn's audit trail
//
// # Processing Turns
//
// Create a [ControlRoom] and thread state through [ControlRoom.ProcessTurn]:
//
//	room := controlroom.NewControlRoom(nil)
//	state := controlroom.NewSessionState()
//
//	result, err := room.ProcessTurn(ctx, message, state.Metrics.CurrentTurnIndex, state)
//	// persist result.State, hand result.Directive to the response layer
//
// Safety is priority zero: a crisis match short-circuits the pipeline,
// records an incident, and returns a grounding directive before any
// strategy selection runs.
//
// # Signal Engines
//
// The engines are stateless; all session memory lives in the state value:
//
//   - [PatternEngine] - lexical detection of minimization, absolutist
//     language, passive shifts, actor omission, humor deflection,
//     future-tense evasion, somatic leakage, and no-choice framing
//   - [SafetyEngine] - ordered high-recall crisis checks
//   - [EchoEngine] - verbatim phrase capture with delayed eligibility
//   - [TapesEngine] - timeline-gap ("missing tapes") detection
//   - [InevitabilityEngine] - contradiction/pressure scoring
//
// # Governance
//
// The [Governor] reviews every proposed strategy and reveal and can veto
// with a substituted safe alternative; the [Director] gates whether a
// detected pattern may ever be named to the guest. Vetoes are normal,
// audited control flow.
//
// # Reducers
//
// State never mutates in place. [MergePatterns], [AppendEchoes],
// [UpsertReveal], [AdjustPressure], [AdvanceTurn] and friends clone the
// input and return the successor; reveal status transitions are monotonic
// and safety incidents are append-only.
//
// # Persistence
//
// Sessions travel through a [Store]: [MemoryStore] for in-process use,
// [SoyStore] for Postgres via soy. Callers must serialize turns per
// session; [MemoryStore.Update] does this keyed on session ID.
//
// # Lexicons
//
// The cue phrase sets are configuration, not algorithm: [DefaultLexicon]
// ships the built-ins and [LoadLexicon] reads replacements from yaml.
//
// # Observability
//
// The engine emits capitan signals throughout processing. See signals.go
// for the complete list including TurnStarted, SafetyTriggered,
// PatternDetected, RevealDecided, GovernorVetoed, and DirectiveIssued.
// Every pipeline stage also appends a structured [AuditEvent] to the turn's
// replayable trail; audit output never reaches the guest and never affects
// control flow.
package controlroom
