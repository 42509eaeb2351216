package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// Engine composes the conflict detector and the resolver to implement
// create, cancel, and reschedule against the external appointment store.
type Engine struct {
	store    interfaces.AppointmentStore
	refs     interfaces.ReferenceStore
	notifier interfaces.NotificationSender
	detector *ConflictDetector
	resolver *Resolver
	locks    *resourceDayLocks
	location *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewEngine creates a new scheduling engine. All appointment times are
// interpreted in the given fixed clinic timezone.
func NewEngine(store interfaces.AppointmentStore, refs interfaces.ReferenceStore, notifier interfaces.NotificationSender, loc *time.Location, log *logger.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		store:    store,
		refs:     refs,
		notifier: notifier,
		detector: NewConflictDetector(store, log),
		resolver: NewResolver(store, log),
		locks:    newResourceDayLocks(),
		location: loc,
		logger:   log,
		now:      time.Now,
	}
}

// Resolver exposes the engine's appointment resolver for read-only lookups
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// CreateResult is the outcome of a successful booking
type CreateResult struct {
	Appointment  *types.Appointment
	Price        float64
	Notification types.NotificationResult
}

// CancelResult carries the deleted appointment's snapshot for downstream
// notification
type CancelResult struct {
	Cancelled    *types.Appointment
	Notification types.NotificationResult
}

// RescheduleResult carries old and new snapshots for downstream
// notification
type RescheduleResult struct {
	Appointment  *types.Appointment
	OldStart     time.Time
	Notification types.NotificationResult
}

// Create books a new appointment. Both the doctor's and the patient's
// calendars are checked before committing; either conflict aborts with a
// typed error naming the busy resource.
func (e *Engine) Create(ctx context.Context, patientEmail, patientName, doctorID, serviceID, startRaw string) (*CreateResult, error) {
	doctor, err := e.refs.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound,
			fmt.Sprintf("doctor with ID %s not found", doctorID), nil)
	}
	service, err := e.refs.GetService(ctx, serviceID)
	if err != nil {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound,
			fmt.Sprintf("service with ID %s not found", serviceID), nil)
	}

	start, err := ParseDateTime(startRaw, e.location)
	if err != nil {
		return nil, err
	}
	if start.Before(e.now()) {
		return nil, types.NewValidationError(types.ErrCodePastDateTime,
			"the requested time is in the past; please pick a future date and time", nil)
	}
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	release := e.locks.acquire([]string{
		lockKey(types.ResourceDoctor, doctor.Email, start),
		lockKey(types.ResourcePatient, patientEmail, start),
	})
	defer release()

	if err := e.checkBothCalendars(ctx, doctor, patientEmail, start, end, ""); err != nil {
		return nil, err
	}

	apt := &types.Appointment{
		PatientEmail:    patientEmail,
		PatientName:     patientName,
		DoctorID:        doctor.ID,
		DoctorName:      doctor.Name,
		DoctorEmail:     doctor.Email,
		ServiceID:       service.ID,
		ServiceName:     service.Name,
		Start:           start,
		DurationMinutes: service.DurationMinutes,
	}

	created, err := e.store.Insert(ctx, apt)
	if err != nil {
		return nil, types.NewExternalError(types.ErrCodeExternalError, "failed to insert appointment", err)
	}

	e.logger.Scheduling("create", created.ID, true, map[string]interface{}{
		"doctor":  doctor.Name,
		"service": service.Name,
		"start":   start,
	})

	notification := e.notifier.SendBookingConfirmation(ctx, created, service.Price)
	return &CreateResult{Appointment: created, Price: service.Price, Notification: notification}, nil
}

// Cancel resolves the target appointment from the caller's criteria and
// deletes it, returning the deleted snapshot.
func (e *Engine) Cancel(ctx context.Context, criteria types.AppointmentCriteria) (*CancelResult, error) {
	apt, err := e.resolver.Resolve(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if err := e.store.Delete(ctx, apt.ID); err != nil {
		return nil, types.NewExternalError(types.ErrCodeExternalError, "failed to delete appointment", err)
	}

	e.logger.Scheduling("cancel", apt.ID, true, map[string]interface{}{
		"doctor":  apt.DoctorName,
		"service": apt.ServiceName,
		"start":   apt.Start,
	})

	notification := e.notifier.SendCancellation(ctx, apt)
	return &CancelResult{Cancelled: apt, Notification: notification}, nil
}

// Reschedule resolves the target appointment and moves it to a new time.
// The new time may be a full date-time or a bare time-of-day, in which
// case the original date is kept. The appointment being moved is excluded
// from its own conflict check.
func (e *Engine) Reschedule(ctx context.Context, criteria types.AppointmentCriteria, newTimeRaw string) (*RescheduleResult, error) {
	apt, err := e.resolver.Resolve(ctx, criteria)
	if err != nil {
		return nil, err
	}

	newStart, err := ParseDateTimeOrTime(newTimeRaw, apt.Start, e.location)
	if err != nil {
		return nil, err
	}
	newEnd := newStart.Add(time.Duration(apt.DurationMinutes) * time.Minute)

	doctor := &types.Doctor{ID: apt.DoctorID, Name: apt.DoctorName, Email: apt.DoctorEmail}

	release := e.locks.acquire([]string{
		lockKey(types.ResourceDoctor, apt.DoctorEmail, newStart),
		lockKey(types.ResourcePatient, apt.PatientEmail, newStart),
	})
	defer release()

	if err := e.checkBothCalendars(ctx, doctor, apt.PatientEmail, newStart, newEnd, apt.ID); err != nil {
		return nil, err
	}

	oldStart := apt.Start
	updated, err := e.store.Update(ctx, apt.ID, newStart, apt.DurationMinutes)
	if err != nil {
		return nil, types.NewExternalError(types.ErrCodeExternalError, "failed to update appointment", err)
	}

	e.logger.Scheduling("reschedule", apt.ID, true, map[string]interface{}{
		"old_start": oldStart,
		"new_start": newStart,
	})

	notification := e.notifier.SendReschedule(ctx, updated, oldStart)
	return &RescheduleResult{Appointment: updated, OldStart: oldStart, Notification: notification}, nil
}

// ListForPatient returns the patient's upcoming appointments
func (e *Engine) ListForPatient(ctx context.Context, patientEmail string) ([]*types.Appointment, error) {
	appointments, err := e.store.ListForPatient(ctx, patientEmail)
	if err != nil {
		return nil, types.NewExternalError(types.ErrCodeExternalError, "failed to list appointments", err)
	}
	return appointments, nil
}

// checkBothCalendars runs the conflict detector for the doctor then the
// patient; either conflict aborts with a typed error distinguishing
// "doctor busy" from "you already have an appointment".
func (e *Engine) checkBothCalendars(ctx context.Context, doctor *types.Doctor, patientEmail string, start, end time.Time, excludeID string) error {
	doctorBusy, err := e.detector.HasConflict(ctx, types.ResourceDoctor, doctor.Email, start, end, excludeID)
	if err != nil {
		return err
	}
	if doctorBusy {
		metrics.ConflictsTotal.WithLabelValues(string(types.ResourceDoctor)).Inc()
		return types.NewConflictError(types.ErrCodeDoctorConflict,
			fmt.Sprintf("%s already has an appointment at this time", doctor.Name),
			types.ResourceDoctor)
	}

	patientBusy, err := e.detector.HasConflict(ctx, types.ResourcePatient, patientEmail, start, end, excludeID)
	if err != nil {
		return err
	}
	if patientBusy {
		metrics.ConflictsTotal.WithLabelValues(string(types.ResourcePatient)).Inc()
		return types.NewConflictError(types.ErrCodePatientConflict,
			"you already have an appointment at this time",
			types.ResourcePatient)
	}

	return nil
}
