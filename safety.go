package controlroom

import "regexp"

// SafetySignal is the result of a crisis check match.
type SafetySignal struct {
	Type       SafetyType
	Confidence float64
	Evidence   string
	TurnIndex  int
}

// safetyCheck pairs one crisis type with its high-recall expression.
type safetyCheck struct {
	typ SafetyType
	re  *regexp.Regexp
}

// The checks are deliberately over-broad: a false positive costs one
// grounding turn, a false negative is unacceptable. Self-harm is checked
// first; the first match wins.
var safetyChecks = []safetyCheck{
	{
		typ: SafetyImminentSelfHarm,
		re: regexp.MustCompile(`(?i)(kill(ing)? myself|end (my life|it all)|suicid\w*|want to die|don'?t want to (be alive|live)|(hurt|harm)(ing)? myself|no reason to (live|go on))`),
	},
	{
		typ: SafetyImminentHarmOther,
		re: regexp.MustCompile(`(?i)((going|want|about) to (kill|hurt|end) (him|her|them|someone)|i('ll| will) (kill|hurt) (him|her|them|someone)|make (him|her|them) pay.{0,20}(blood|life))`),
	},
	{
		typ: SafetyChildExploitation,
		re: regexp.MustCompile(`(?i)(child (porn\w*|sexual|abuse material)|csam|sexual\w* (with|of) (a )?(child|minor)|(molest|groom)(ed|ing)? (a )?(child|kid|minor))`),
	},
}

// safetyResponses is the fixed, non-clinical grounding copy per crisis
// type. The response layer delivers this verbatim instead of interviewing.
var safetyResponses = map[SafetyType]string{
	SafetyImminentSelfHarm: "Let's stop the interview here. What you just said matters " +
		"more than any story we're telling. Are you safe right now? If you're in " +
		"immediate danger, please reach someone you trust or a crisis line before " +
		"we go any further.",
	SafetyImminentHarmOther: "I'm pausing us here. What you've just described sounds " +
		"like someone could get hurt. Before anything else: is anyone in danger " +
		"right now?",
	SafetyChildExploitation: "We have to stop here. What you've just described isn't " +
		"something this interview can carry forward. If a child is at risk, that " +
		"has to be handled outside this room, now.",
}

// SafetyEngine runs the fixed, ordered crisis checks. It is priority zero:
// the orchestrator consults it before any other processing and
// short-circuits the turn on a match.
type SafetyEngine struct{}

// NewSafetyEngine creates a safety engine.
func NewSafetyEngine() *SafetyEngine {
	return &SafetyEngine{}
}

// Detect returns the first matching crisis signal, or nil when no check
// fires. Confidence is fixed near-certain; precision is not this engine's
// job.
func (e *SafetyEngine) Detect(text string, turnIndex int) *SafetySignal {
	for _, check := range safetyChecks {
		if match := check.re.FindString(text); match != "" {
			return &SafetySignal{
				Type:       check.typ,
				Confidence: 0.95,
				Evidence:   match,
				TurnIndex:  turnIndex,
			}
		}
	}
	return nil
}

// Response returns the fixed grounding copy for a crisis type.
func (e *SafetyEngine) Response(typ SafetyType) string {
	return safetyResponses[typ]
}
