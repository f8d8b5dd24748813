package controlroom

// Director tracks the coarse shape of the broadcast: what phase the session
// is in, whether the interviewer is dwelling too long on one topic, and
// whether a detected pattern may ever be named to the guest. It is
// stateless; phase and followup bookkeeping live in the session state.
type Director struct {
	followupLimit        int
	disclosureConfidence float64
}

// NewDirector creates a director with the default dwell and disclosure
// gates.
func NewDirector() *Director {
	return &Director{
		followupLimit:        DefaultFollowupLimit,
		disclosureConfidence: DefaultDisclosureConfidence,
	}
}

// ObserveTopic updates the consecutive-followup counter: reset on a topic
// change, incremented when the interviewer stays put.
func (d *Director) ObserveTopic(state SessionState, topic string) SessionState {
	out := state.Clone()
	if topic != out.CurrentTopic {
		out.CurrentTopic = topic
		out.ConsecutiveFollowups = 0
		return out
	}
	out.ConsecutiveFollowups++
	return out
}

// OverDwelling reports whether the session has spent too many consecutive
// followups on the current topic.
func (d *Director) OverDwelling(state SessionState) bool {
	return state.ConsecutiveFollowups >= d.followupLimit
}

// RequestBreak moves a live session to a commercial break. Wrapped sessions
// stay wrapped.
func (d *Director) RequestBreak(state SessionState) SessionState {
	if state.Phase != PhaseLive {
		return state
	}
	out := state.Clone()
	out.Phase = PhaseCommercialBreak
	return out
}

// Resume returns a session on break to live.
func (d *Director) Resume(state SessionState) SessionState {
	if state.Phase != PhaseCommercialBreak {
		return state
	}
	out := state.Clone()
	out.Phase = PhaseLive
	return out
}

// Wrap ends the session. Wrap is terminal: there is no transition out.
func (d *Director) Wrap(state SessionState) SessionState {
	if state.Phase == PhaseWrap {
		return state
	}
	out := state.Clone()
	out.Phase = PhaseWrap
	return out
}

// PatternDisclosureAllowed reports whether a detected pattern may be
// surfaced to the guest directly: only at low risk and only once detection
// confidence clears the disclosure gate. Everything else stays booth-side.
func (d *Director) PatternDisclosureAllowed(pattern PatternRecord, risk RiskLevel) bool {
	return risk == RiskLow && pattern.Confidence >= d.disclosureConfidence
}
