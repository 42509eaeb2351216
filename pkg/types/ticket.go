package types

import "time"

// TicketCategory is the closed category set support tickets are classified
// into. The archiver rejects anything outside this set.
type TicketCategory string

const (
	CategoryBooking      TicketCategory = "appointment_booking"
	CategoryModification TicketCategory = "appointment_modification"
	CategoryCancellation TicketCategory = "appointment_cancellation"
	CategoryComplaint    TicketCategory = "complaint"
	CategoryGeneral      TicketCategory = "general_inquiry"
)

// AllTicketCategories lists the valid category values in a fixed order
func AllTicketCategories() []TicketCategory {
	return []TicketCategory{
		CategoryBooking,
		CategoryModification,
		CategoryCancellation,
		CategoryComplaint,
		CategoryGeneral,
	}
}

// ValidTicketCategory reports whether s is a member of the category enum
func ValidTicketCategory(s string) bool {
	switch TicketCategory(s) {
	case CategoryBooking, CategoryModification, CategoryCancellation,
		CategoryComplaint, CategoryGeneral:
		return true
	}
	return false
}

// CategoryForIntent maps a turn intent to the ticket category recorded on
// the session
func CategoryForIntent(intent Intent) TicketCategory {
	switch intent {
	case IntentBooking:
		return CategoryBooking
	case IntentManagement:
		return CategoryModification
	case IntentEscalate, IntentFeedback:
		return CategoryComplaint
	default:
		return CategoryGeneral
	}
}

// TicketStatus is the final disposition of an archived conversation
type TicketStatus string

const (
	TicketResolved  TicketStatus = "resolved"
	TicketEscalated TicketStatus = "escalated"
)

// TicketRecord is the archived, categorized summary produced at
// conversation end. Created once by the archiver, never mutated.
type TicketRecord struct {
	ID             string           `json:"id" db:"id"`
	ConversationID string           `json:"conversation_id" db:"conversation_id"`
	PatientID      *string          `json:"patient_id,omitempty" db:"patient_id"`
	Categories     []TicketCategory `json:"ticket_types" db:"ticket_types"`
	Subject        string           `json:"subject" db:"subject"`
	Status         TicketStatus     `json:"status" db:"status"`
	Transcript     []Turn           `json:"conversation_history" db:"conversation_history"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	ResolvedAt     *time.Time       `json:"resolved_at,omitempty" db:"resolved_at"`
}

// HasCategory reports whether the record carries the given category
func (t *TicketRecord) HasCategory(cat TicketCategory) bool {
	for _, c := range t.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
