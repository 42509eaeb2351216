package types

import (
	"time"

	"github.com/google/uuid"
)

// Role tags who produced a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message within a conversation session
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Intent is the functional category assigned to a turn
type Intent string

const (
	IntentFAQ        Intent = "faq"
	IntentBooking    Intent = "booking"
	IntentManagement Intent = "management"
	IntentFeedback   Intent = "feedback"
	IntentEscalate   Intent = "escalate"
	IntentUnset      Intent = ""
)

// ValidIntent reports whether s names a known intent category
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentFAQ, IntentBooking, IntentManagement, IntentFeedback, IntentEscalate:
		return true
	}
	return false
}

// Sentiment is the guardrail's verdict on a single turn
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentHostile  Sentiment = "hostile"
)

// ValidSentiment reports whether s names a known sentiment value
func ValidSentiment(s string) bool {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentHostile:
		return true
	}
	return false
}

// GuardrailVerdict is the guardrail's assessment of one user turn. The
// guardrail is pure: it never reads or writes session intent.
type GuardrailVerdict struct {
	Sentiment      Sentiment `json:"sentiment"`
	ShouldEscalate bool      `json:"should_escalate"`
	Reason         string    `json:"reason,omitempty"`
}

// SafeGuardrailVerdict is the fail-safe default used on guardrail failure
// or timeout
func SafeGuardrailVerdict() GuardrailVerdict {
	return GuardrailVerdict{Sentiment: SentimentNeutral, ShouldEscalate: false}
}

// ConversationState holds everything the dispatcher tracks for one session.
// It is mutated only by the dispatcher and the scheduling engine, and is
// destroyed at session end after archiving.
type ConversationState struct {
	ID            string           `json:"conversation_id"`
	Turns         []Turn           `json:"turns"`
	CurrentIntent Intent           `json:"current_intent"`
	Escalated     bool             `json:"escalated"`
	TicketTypes   []TicketCategory `json:"ticket_types"`
	ErrorCount    int              `json:"error_count"`
	LastError     string           `json:"last_error,omitempty"`

	PatientID    string `json:"patient_id,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
	PatientEmail string `json:"patient_email,omitempty"`
	PatientPhone string `json:"patient_phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationState initializes a session. An empty id generates one.
func NewConversationState(id string) *ConversationState {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	return &ConversationState{
		ID:        id,
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records one message and bumps the update timestamp
func (s *ConversationState) AppendTurn(role Role, text string) {
	s.Turns = append(s.Turns, Turn{Role: role, Text: text, Timestamp: time.Now()})
	s.UpdatedAt = time.Now()
}

// LastUserTurn returns the most recent user turn, if any
func (s *ConversationState) LastUserTurn() (Turn, bool) {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i], true
		}
	}
	return Turn{}, false
}

// LastAssistantTurn returns the most recent assistant turn before the
// current user message, if any
func (s *ConversationState) LastAssistantTurn() (Turn, bool) {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleAssistant {
			return s.Turns[i], true
		}
	}
	return Turn{}, false
}

// RecentTurns returns up to n most recent turns in order
func (s *ConversationState) RecentTurns(n int) []Turn {
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// RecordIntent sets the current intent and adds it to the session's ticket
// categories if not already present
func (s *ConversationState) RecordIntent(intent Intent) {
	s.CurrentIntent = intent
	cat := CategoryForIntent(intent)
	for _, existing := range s.TicketTypes {
		if existing == cat {
			return
		}
	}
	s.TicketTypes = append(s.TicketTypes, cat)
}

// RecordError increments the session error counter and keeps the message
// for debugging
func (s *ConversationState) RecordError(err error) {
	s.ErrorCount++
	if err != nil {
		s.LastError = err.Error()
	}
}
