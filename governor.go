package controlroom

import (
	"fmt"
	"strings"
)

// Proposal is a strategy/device/instruction triple awaiting governor review.
type Proposal struct {
	Strategy    Strategy
	Device      Device
	Instruction string
	// PressureDelta is the adjustment the cascade attached to the proposal.
	PressureDelta float64
}

// ProposalContext carries the session facts the governor judges against.
type ProposalContext struct {
	Pressure float64
	Risk     RiskLevel
}

// GovernorReview is the outcome of a proposal review. A veto is normal
// control flow, not an error: the alternative replaces the proposal and the
// reason is audited.
type GovernorReview struct {
	Vetoed              bool
	Reason              string
	AlternativeStrategy Strategy
	AlternativeDevice   Device
}

// RevealReview is the outcome of reviewing a reveal plan.
type RevealReview struct {
	Vetoed bool
	Reason string
}

// Governor is the policy layer empowered to veto strategies and reveals.
// Both reviews are pure decision functions with no side effects; exactly one
// veto rule applies at most, first match wins.
type Governor struct {
	banned []string
}

// NewGovernor creates a governor. A nil lexicon selects the built-in banned
// term denylist.
func NewGovernor(lex *Lexicon) *Governor {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Governor{banned: lex.BannedTerms}
}

// ReviewProposal applies the veto cascade:
//
//  1. Critical risk demands the grounding strategy; anything else is
//     replaced with it.
//  2. Clinical-diagnostic language in the instruction forces a neutral hold
//     with silence; the booth does not diagnose.
//  3. A press at pressure nine or above is flipped to a yield with an
//     offered fork.
func (g *Governor) ReviewProposal(p Proposal, pc ProposalContext) GovernorReview {
	if pc.Risk == RiskCritical && p.Strategy != StrategyGround {
		return GovernorReview{
			Vetoed:              true,
			Reason:              "critical risk requires the grounding strategy",
			AlternativeStrategy: StrategyGround,
			AlternativeDevice:   DeviceSilence,
		}
	}

	if term := g.bannedTerm(p.Instruction); term != "" {
		return GovernorReview{
			Vetoed:              true,
			Reason:              fmt.Sprintf("instruction contains banned term %q", term),
			AlternativeStrategy: StrategyHold,
			AlternativeDevice:   DeviceSilence,
		}
	}

	if pc.Pressure >= 9 && p.Strategy == StrategyPress {
		return GovernorReview{
			Vetoed:              true,
			Reason:              "pressing at pressure 9+ risks a shutdown",
			AlternativeStrategy: StrategyYield,
			AlternativeDevice:   DeviceFork,
		}
	}

	return GovernorReview{}
}

// bannedTerm returns the first denylist entry found in the instruction, or
// empty when the instruction is clean.
func (g *Governor) bannedTerm(instruction string) string {
	lower := strings.ToLower(instruction)
	for _, term := range g.banned {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}

// ReviewReveal enforces permission gating: a quote payload may only be
// disclosed with the guest's explicit go-ahead, so a quote plan whose gate
// is not marked required is vetoed.
func (g *Governor) ReviewReveal(plan RevealPlan, inevitability float64) RevealReview {
	if plan.Payload.Type == RevealDirectQuote && !plan.Permission.Required {
		return RevealReview{
			Vetoed: true,
			Reason: "quote payloads require an explicit permission gate",
		}
	}
	return RevealReview{}
}
