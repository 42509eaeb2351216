package conversation

import (
	"context"
	"strings"

	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

const classifierSystemPrompt = `You are an intent classification expert for a dental clinic AI customer service system.

Your ONLY job is to analyze the user's message and classify their intent into ONE of these categories:

1. **faq** - General questions about the clinic (DEFAULT for greetings and unclear queries):
   - Greetings: "hi", "hello", "hey"
   - Simple thanks: "thank you", "thanks", "great", "ok"
   - Business hours, location, contact information
   - Services offered and pricing
   - Insurance coverage and payment policies
   - Dental procedures information
   - Any general conversation or unclear intent

2. **booking** - Appointment booking requests (ONLY when explicitly requesting to book):
   - "I want to book an appointment"
   - "Schedule a visit"
   - "I need to see a dentist"
   - Asking about available time slots

3. **management** - Modify or cancel existing appointments (ONLY for existing appointments):
   - "Change my appointment"
   - "Cancel my booking"
   - "Reschedule my visit"
   - "What are my upcoming appointments?"

4. **feedback** - Feedback, complaints, or compliments (ONLY when providing detailed feedback):
   - Service quality issues
   - Staff interaction concerns
   - NOTE: Simple "thank you" should be classified as "faq", not "feedback"

5. **escalate** - ONLY for urgent medical emergencies or explicit human requests:
   - "I have severe pain right now"
   - "Dental emergency"
   - "My tooth is bleeding badly"
   - "I want to talk to a human"

IMPORTANT: When in doubt, classify as "faq". Only use "escalate" for true emergencies.

Respond with ONLY the category name: faq, booking, management, feedback, or escalate`

// bookingContinuationMarkers are phrases a booking-flow assistant message
// ends on while waiting for the user's next answer. Seeing one keeps the
// next turn in booking without fresh classification.
var bookingContinuationMarkers = []string{
	"which doctor",
	"service you need",
	"preferred time",
	"date and time",
	"available doctors",
	"available services",
	"select the service",
}

// historyWindow bounds how much recent context classification sees
const historyWindow = 4

// Classifier maps a conversational turn to an intent category
type Classifier struct {
	llm    interfaces.LLMClient
	logger *logger.Logger
}

// NewClassifier creates a new intent classifier
func NewClassifier(llmClient interfaces.LLMClient, log *logger.Logger) *Classifier {
	return &Classifier{
		llm:    llmClient,
		logger: log,
	}
}

// Classify resolves the intent for the session's latest user turn. The
// stickiness rule runs first: mid-booking answers stay in booking without
// an LLM call. Classification failure or an out-of-enum result defaults
// to faq.
func (c *Classifier) Classify(ctx context.Context, state *types.ConversationState) types.Intent {
	userTurn, ok := state.LastUserTurn()
	if !ok {
		return types.IntentFAQ
	}

	if sticky := c.stickyIntent(state); sticky != types.IntentUnset {
		c.logger.WithSession(state.ID).Debug("Sticky routing: staying in booking flow")
		return sticky
	}

	history := buildClassificationHistory(state, userTurn)
	reply, err := c.llm.Infer(ctx, classifierSystemPrompt, history)
	if err != nil {
		metrics.LLMFailuresTotal.WithLabelValues("intent").Inc()
		c.logger.WithSession(state.ID).Warnf("Intent classification failed, defaulting to faq: %v", err)
		return types.IntentFAQ
	}

	intent := strings.ToLower(strings.TrimSpace(reply))
	if !types.ValidIntent(intent) {
		c.logger.WithSession(state.ID).Warnf("Classifier returned unknown intent %q, defaulting to faq", intent)
		return types.IntentFAQ
	}

	return types.Intent(intent)
}

// stickyIntent applies the context-sticky routing rule: if the previous
// intent was booking and the assistant just asked a booking continuation
// question, short-circuit to booking.
func (c *Classifier) stickyIntent(state *types.ConversationState) types.Intent {
	if state.CurrentIntent != types.IntentBooking || len(state.Turns) < 2 {
		return types.IntentUnset
	}

	assistantTurn, ok := state.LastAssistantTurn()
	if !ok {
		return types.IntentUnset
	}

	text := strings.ToLower(assistantTurn.Text)
	for _, marker := range bookingContinuationMarkers {
		if strings.Contains(text, marker) {
			return types.IntentBooking
		}
	}
	return types.IntentUnset
}

// buildClassificationHistory assembles the bounded recent-history window
// plus the current message as the classification input
func buildClassificationHistory(state *types.ConversationState, userTurn types.Turn) []types.Turn {
	recent := state.RecentTurns(historyWindow)

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, turn := range recent[:len(recent)-1] {
		if turn.Role == types.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent user message: ")
	b.WriteString(userTurn.Text)
	b.WriteString("\n\nBased on the conversation context and the current message, classify the intent.")

	return []types.Turn{{Role: types.RoleUser, Text: b.String()}}
}
