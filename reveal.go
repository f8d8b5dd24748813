package controlroom

import "github.com/google/uuid"

// RevealAction is what the orchestrator wants done with a pending plan this
// turn.
type RevealAction string

const (
	RevealActionExecute RevealAction = "execute"
	RevealActionVeto    RevealAction = "veto"
	RevealActionDefer   RevealAction = "defer"
)

// RevealDecision is the per-turn outcome for the single considered plan.
type RevealDecision struct {
	PlanID string
	Action RevealAction
	Reason string
}

// RevealSpec describes the reveal to stage.
type RevealSpec struct {
	Category          RevealCategory
	Receipt           ReceiptCard
	Trigger           RevealTrigger
	RequirePermission bool
	CreatedTurn       int
}

// teaseLines is the short type-specific teaser spoken before a reveal is
// offered.
var teaseLines = map[RevealCategory]string{
	RevealMissingTape:   "There's a stretch of time in your story that nobody seems to talk about.",
	RevealDirectQuote:   "I have the transcript of what you said that day.",
	RevealContradiction: "Two things you've told me can't both be true.",
}

// askCopy is the permission question used when a plan's gate is required.
var askCopy = map[RevealCategory]string{
	RevealMissingTape:   "Do you want to look at that stretch together?",
	RevealDirectQuote:   "May I read your own words back to you?",
	RevealContradiction: "Can we put those two statements side by side?",
}

// integrationPrompts is the reflective question asked after the payload has
// been disclosed.
var integrationPrompts = map[RevealCategory]string{
	RevealMissingTape:   "What was happening in that time that made it easier to leave no record?",
	RevealDirectQuote:   "Hearing it back now, what lands differently?",
	RevealContradiction: "If both of those felt true when you said them, what changed in between?",
}

// NewRevealPlan builds a pending plan from a spec: generated ID, teaser,
// permission gate with ask copy when required, the originating trigger, the
// full payload, and the integration prompt.
func NewRevealPlan(spec RevealSpec) RevealPlan {
	gate := PermissionGate{Required: spec.RequirePermission}
	if gate.Required {
		gate.AskCopy = askCopy[spec.Category]
	}
	return RevealPlan{
		ID:                uuid.New().String(),
		Category:          spec.Category,
		Status:            RevealPending,
		Trigger:           spec.Trigger,
		TeaseLine:         teaseLines[spec.Category],
		Permission:        gate,
		Payload:           spec.Receipt,
		IntegrationPrompt: integrationPrompts[spec.Category],
		CreatedTurn:       spec.CreatedTurn,
	}
}

// RevealOrchestrator advances reveal plans through their permission-gated
// lifecycle. It is stateless; all plans live in the session's reveal ledger.
type RevealOrchestrator struct{}

// NewRevealOrchestrator creates a reveal orchestrator.
func NewRevealOrchestrator() *RevealOrchestrator {
	return &RevealOrchestrator{}
}

// Decide examines the highest-priority pending plan, if any. Order of
// judgment: the governor may veto the plan outright; an
// inevitability-triggered plan below the reveal threshold is deferred with
// no action this turn; otherwise the plan executes. Only one plan is
// considered per turn; the rest of the queue waits.
func (o *RevealOrchestrator) Decide(state SessionState, inevitability InevitabilityResult, governor *Governor) *RevealDecision {
	pending := state.PendingReveals()
	if len(pending) == 0 {
		return nil
	}
	plan := pending[0]

	if review := governor.ReviewReveal(plan, inevitability.Score); review.Vetoed {
		return &RevealDecision{PlanID: plan.ID, Action: RevealActionVeto, Reason: review.Reason}
	}

	if plan.Trigger == TriggerInevitability && inevitability.Score < inevitability.Thresholds.Reveal {
		return &RevealDecision{
			PlanID: plan.ID,
			Action: RevealActionDefer,
			Reason: "inevitability score below reveal threshold",
		}
	}

	return &RevealDecision{PlanID: plan.ID, Action: RevealActionExecute, Reason: "trigger condition met"}
}
