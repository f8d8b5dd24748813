package controlroom

import "strings"

// InevitabilityThresholds are the fixed decision lines downstream consumers
// compare the score against.
type InevitabilityThresholds struct {
	Reveal       float64 `json:"reveal"`
	SoftConfront float64 `json:"soft_confront"`
	FirmConfront float64 `json:"firm_confront"`
}

// InevitabilityResult is the pressure-toward-truth estimate for the current
// state. The rationale is audit-only copy; it never reaches the guest.
type InevitabilityResult struct {
	Score      float64                 `json:"score"`
	Rationale  string                  `json:"rationale"`
	Thresholds InevitabilityThresholds `json:"thresholds"`
}

// InevitabilityEngine scores how strongly the accumulated evidence points at
// an unaddressed truth. A weighted additive heuristic, not a model: each
// contributing factor is auditable on its own.
type InevitabilityEngine struct {
	recurredWeight      float64
	contradictionWeight float64
	pressureWeight      float64
	highPressure        float64
	thresholds          InevitabilityThresholds
}

// NewInevitabilityEngine creates an engine with the default weights and
// thresholds.
func NewInevitabilityEngine() *InevitabilityEngine {
	return &InevitabilityEngine{
		recurredWeight:      DefaultRecurredPatternWeight,
		contradictionWeight: DefaultContradictionWeight,
		pressureWeight:      DefaultHighPressureWeight,
		highPressure:        DefaultHighPressure,
		thresholds: InevitabilityThresholds{
			Reveal:       DefaultRevealThreshold,
			SoftConfront: DefaultSoftConfrontThreshold,
			FirmConfront: DefaultFirmConfrontThreshold,
		},
	}
}

// Compute scores the state. Contributions: a recurred pattern (two or more
// occurrences of one kind), any unaddressed contradiction, and sustained
// high pressure. The sum is clamped to [0,1].
func (e *InevitabilityEngine) Compute(state SessionState) InevitabilityResult {
	var score float64
	var factors []string

	for _, p := range state.PatternLedger {
		if p.OccurrenceCount >= 2 {
			score += e.recurredWeight
			factors = append(factors, "a pattern has recurred")
			break
		}
	}

	if state.UnaddressedContradiction() {
		score += e.contradictionWeight
		factors = append(factors, "an unaddressed contradiction is on the record")
	}

	if state.Metrics.AveragePressure >= e.highPressure {
		score += e.pressureWeight
		factors = append(factors, "pressure has been running high")
	}

	rationale := "no contributing factors"
	if len(factors) > 0 {
		rationale = strings.Join(factors, "; ")
	}

	return InevitabilityResult{
		Score:      clampUnit(score),
		Rationale:  rationale,
		Thresholds: e.thresholds,
	}
}
