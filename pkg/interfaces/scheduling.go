package interfaces

import (
	"context"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// AppointmentStore defines the interface for appointment persistence.
// The store's query granularity is day-level: conflict checks fetch the
// calendar day of the proposed start and filter in the engine.
type AppointmentStore interface {
	ListForPatient(ctx context.Context, patientEmail string) ([]*types.Appointment, error)
	ListForDay(ctx context.Context, kind types.ResourceKind, resourceID string, day time.Time) ([]*types.Appointment, error)
	GetByID(ctx context.Context, id string) (*types.Appointment, error)
	Insert(ctx context.Context, apt *types.Appointment) (*types.Appointment, error)
	Update(ctx context.Context, id string, start time.Time, durationMinutes int) (*types.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// ReferenceStore defines read-only access to clinic reference data
type ReferenceStore interface {
	ListDoctors(ctx context.Context, availableOnly bool) ([]*types.Doctor, error)
	GetDoctor(ctx context.Context, id string) (*types.Doctor, error)
	ListServices(ctx context.Context) ([]*types.Service, error)
	GetService(ctx context.Context, id string) (*types.Service, error)
	ListPatients(ctx context.Context) ([]*types.Patient, error)
	GetPatient(ctx context.Context, id string) (*types.Patient, error)
}

// TicketStore persists archived conversation tickets
type TicketStore interface {
	InsertTicket(ctx context.Context, record *types.TicketRecord) error
}

// NotificationSender delivers appointment notifications. Sends are
// fire-and-forget from the scheduling engine's perspective: a failure is
// reported as a soft warning, never rolled back into the operation.
type NotificationSender interface {
	SendBookingConfirmation(ctx context.Context, apt *types.Appointment, price float64) types.NotificationResult
	SendCancellation(ctx context.Context, apt *types.Appointment) types.NotificationResult
	SendReschedule(ctx context.Context, apt *types.Appointment, oldStart time.Time) types.NotificationResult
}
