package conversation

import "github.com/OWDM/dental-ai-agent/pkg/types"

// HandlerKind names one of the closed set of response handlers
type HandlerKind string

const (
	HandlerFAQ          HandlerKind = "faq"
	HandlerBooking      HandlerKind = "booking"
	HandlerManagement   HandlerKind = "management"
	HandlerPlaceholder  HandlerKind = "placeholder"
	HandlerHumanHandoff HandlerKind = "human_handoff"
)

// Decision is the deterministic merge of the classifier's intent and the
// guardrail's verdict for one turn
type Decision struct {
	Intent   types.Intent
	Handler  HandlerKind
	Escalate bool
	Reason   string
}

// Decide merges the two parallel evaluations. Escalation dominates: a
// guardrail escalation signal overrides any classified intent, and a
// session already marked escalated stays with the handoff handler. The
// mapping is total over the intent enum.
func Decide(state *types.ConversationState, intent types.Intent, verdict types.GuardrailVerdict) Decision {
	if verdict.ShouldEscalate || state.Escalated || intent == types.IntentEscalate {
		return Decision{
			Intent:   types.IntentEscalate,
			Handler:  HandlerHumanHandoff,
			Escalate: true,
			Reason:   verdict.Reason,
		}
	}

	d := Decision{Intent: intent}
	switch intent {
	case types.IntentBooking:
		d.Handler = HandlerBooking
	case types.IntentManagement:
		d.Handler = HandlerManagement
	case types.IntentFeedback:
		d.Handler = HandlerPlaceholder
	default:
		d.Intent = types.IntentFAQ
		d.Handler = HandlerFAQ
	}
	return d
}
