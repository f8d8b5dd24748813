package controlroom

import "strings"

// patternProfile fixes the base confidence and interpretive gloss for one
// detector. Confidence scales lightly with match count and is clamped to
// [0,1]; the gloss is audit-facing, never guest-facing.
type patternProfile struct {
	kind       PatternKind
	confidence float64
	note       string
}

// patternCatalogue fixes detector order so output is deterministic.
var patternCatalogue = []patternProfile{
	{PatternMinimization, 0.60, "downplaying language detected"},
	{PatternAbsolutist, 0.55, "all-or-nothing framing detected"},
	{PatternPassiveShift, 0.65, "agency displaced into passive constructions"},
	{PatternActorOmission, 0.60, "events described without an actor"},
	{PatternHumorDeflection, 0.50, "humor used to exit the subject"},
	{PatternFutureEvasion, 0.70, "commitment deflected into the future"},
	{PatternSomaticLeakage, 0.75, "physiological distress detected"},
	{PatternInevitability, 0.70, "no-choice framing detected"},
}

// PatternEngine runs the fixed catalogue of linguistic-tell detectors
// against raw guest text. It is stateless: Detect is a pure function of its
// inputs, and all session memory lives in the pattern ledger.
//
// Detection is recall-oriented: the cue sets accept false positives because
// the governor and director gate what ever reaches the guest.
type PatternEngine struct {
	lex *Lexicon
}

// NewPatternEngine creates a pattern engine. A nil lexicon selects the
// built-in cue sets.
func NewPatternEngine(lex *Lexicon) *PatternEngine {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &PatternEngine{lex: lex}
}

// Detect runs every detector against the text. Detectors are independent:
// multiple kinds may fire on the same message, each contributing exactly one
// signal with occurrence count 1.
func (e *PatternEngine) Detect(text string, turnIndex int) []PatternRecord {
	lower := strings.ToLower(text)

	var signals []PatternRecord
	for _, profile := range patternCatalogue {
		var evidence []string
		for _, cue := range e.lex.Patterns[profile.kind] {
			if strings.Contains(lower, cue) {
				evidence = append(evidence, cue)
			}
		}
		if len(evidence) == 0 {
			continue
		}

		confidence := clampUnit(profile.confidence + 0.05*float64(len(evidence)-1))
		signals = append(signals, PatternRecord{
			Kind:            profile.kind,
			Confidence:      confidence,
			Evidence:        evidence,
			Note:            profile.note,
			FirstSeenTurn:   turnIndex,
			LastSeenTurn:    turnIndex,
			OccurrenceCount: 1,
		})
	}
	return signals
}
