package types

import "time"

// ResourceKind identifies whose calendar a conflict check runs against
type ResourceKind string

const (
	ResourceDoctor  ResourceKind = "doctor"
	ResourcePatient ResourceKind = "patient"
)

// Appointment represents a scheduled appointment
type Appointment struct {
	ID              string    `json:"id" db:"id"`
	PatientEmail    string    `json:"patient_email" db:"patient_email"`
	PatientName     string    `json:"patient_name" db:"patient_name"`
	DoctorID        string    `json:"doctor_id" db:"doctor_id"`
	DoctorName      string    `json:"doctor_name" db:"doctor_name"`
	DoctorEmail     string    `json:"doctor_email" db:"doctor_email"`
	ServiceID       string    `json:"service_id" db:"service_id"`
	ServiceName     string    `json:"service_name" db:"service_name"`
	Start           time.Time `json:"start_time" db:"start_time"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// End returns the exclusive end of the appointment's conflict window
func (a *Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Window returns the half-open [start, end) interval the appointment occupies
func (a *Appointment) Window() TimeWindow {
	return TimeWindow{Start: a.Start, End: a.End()}
}

// TimeWindow is a half-open [Start, End) interval on a resource's schedule
type TimeWindow struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// Overlaps reports whether two half-open windows overlap. Adjacent windows
// (one ending exactly when the other starts) do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Doctor is a reference entity owned by the external store
type Doctor struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Email          string `json:"email" db:"email"`
	Specialization string `json:"specialization" db:"specialization"`
	Available      bool   `json:"available" db:"available"`
}

// Service is a reference entity owned by the external store
type Service struct {
	ID              string  `json:"id" db:"id"`
	Name            string  `json:"name" db:"name"`
	Description     string  `json:"description" db:"description"`
	Price           float64 `json:"price" db:"price"`
	DurationMinutes int     `json:"duration_minutes" db:"duration_minutes"`
}

// Patient is a reference entity owned by the external store
type Patient struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`
}

// AppointmentCriteria carries the partial natural-language criteria used to
// resolve one of a patient's appointments
type AppointmentCriteria struct {
	PatientEmail string `json:"patient_email"`
	DoctorName   string `json:"doctor_name,omitempty"`
	ServiceName  string `json:"service_name,omitempty"`
	DateRef      string `json:"date_ref,omitempty"`
}

// Describe renders the criteria for clarification prompts, e.g.
// "with Dr. Saad for cleaning on Wednesday"
func (c AppointmentCriteria) Describe() string {
	out := ""
	if c.DoctorName != "" {
		out += " with " + c.DoctorName
	}
	if c.ServiceName != "" {
		out += " for " + c.ServiceName
	}
	if c.DateRef != "" {
		out += " on " + c.DateRef
	}
	if out == "" {
		return "matching your request"
	}
	return out[1:]
}

// NotificationResult reports the outcome of a fire-and-forget notification.
// A failed send never rolls back the appointment mutation it follows.
type NotificationResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Notification statuses
const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)
