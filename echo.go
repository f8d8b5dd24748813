package controlroom

// EchoEngine captures emotionally loaded guest phrases verbatim for a
// delayed callback. Stateless; captured records live in the session state.
type EchoEngine struct {
	lex       *Lexicon
	actDelay  int
	turnDelay int
}

// NewEchoEngine creates an echo engine. A nil lexicon selects the built-in
// cue sets; delays come from the package defaults.
func NewEchoEngine(lex *Lexicon) *EchoEngine {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &EchoEngine{
		lex:       lex,
		actDelay:  DefaultEchoActDelay,
		turnDelay: DefaultEchoTurnDelay,
	}
}

// echoCategoryOrder fixes iteration order over the cue map so capture
// output is deterministic.
var echoCategoryOrder = []EchoCategory{
	EchoMinimizer,
	EchoInevitability,
	EchoSelfBlame,
	EchoAgencyAvoidance,
}

// Capture records every matching phrase with its eligibility gates. The
// gates enforce minimum narrative distance: an echo may not surface until
// the next act or four turns on, whichever the consumer reaches first.
func (e *EchoEngine) Capture(text string, turnIndex, currentAct int) []EchoRecord {
	var captured []EchoRecord
	for _, category := range echoCategoryOrder {
		for _, re := range e.lex.echoRes[category] {
			match := re.FindString(text)
			if match == "" {
				continue
			}
			captured = append(captured, EchoRecord{
				Phrase:            match,
				Category:          category,
				CapturedTurn:      turnIndex,
				CapturedAct:       currentAct,
				EligibleAfterAct:  currentAct + e.actDelay,
				EligibleAfterTurn: turnIndex + e.turnDelay,
				Used:              false,
			})
		}
	}
	return captured
}

// Eligible filters to unused echoes whose act or turn gate has opened.
func Eligible(echoes []EchoRecord, act, turn int) []EchoRecord {
	var out []EchoRecord
	for _, e := range echoes {
		if !e.Used && e.EligibleAt(act, turn) {
			out = append(out, e)
		}
	}
	return out
}

// NextCallback picks the oldest eligible unused echo for playback, returning
// its index into the session's echo list. The second return is false when
// nothing is eligible.
func NextCallback(state SessionState, act, turn int) (int, bool) {
	for i, e := range state.EchoPhrases {
		if !e.Used && e.EligibleAt(act, turn) {
			return i, true
		}
	}
	return 0, false
}
