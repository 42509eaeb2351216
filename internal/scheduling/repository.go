package scheduling

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/OWDM/dental-ai-agent/pkg/database"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// Repository implements the appointment, reference-data, and ticket
// stores over Postgres.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new scheduling repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

const appointmentColumns = `id, patient_email, patient_name, doctor_id, doctor_name, doctor_email,
	   service_id, service_name, start_time, duration_minutes, created_at, updated_at`

// ListForPatient returns the patient's upcoming appointments in
// chronological order
func (r *Repository) ListForPatient(ctx context.Context, patientEmail string) ([]*types.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_email = $1 AND start_time >= NOW()
		ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, patientEmail)
	if err != nil {
		r.logger.Errorf("Failed to list appointments for %s: %v", patientEmail, err)
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListForDay returns every appointment for the resource within the
// calendar day of the given timestamp
func (r *Repository) ListForDay(ctx context.Context, kind types.ResourceKind, resourceID string, day time.Time) ([]*types.Appointment, error) {
	column := "doctor_email"
	if kind == types.ResourcePatient {
		column = "patient_email"
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ` + column + ` = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, resourceID, dayStart, dayEnd)
	if err != nil {
		r.logger.Errorf("Failed to list %s appointments for %s: %v", kind, resourceID, err)
		return nil, fmt.Errorf("failed to list day appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByID retrieves an appointment by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1`

	apt := &types.Appointment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&apt.ID,
		&apt.PatientEmail,
		&apt.PatientName,
		&apt.DoctorID,
		&apt.DoctorName,
		&apt.DoctorEmail,
		&apt.ServiceID,
		&apt.ServiceName,
		&apt.Start,
		&apt.DurationMinutes,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("appointment not found: %s", id)
		}
		r.logger.Errorf("Failed to get appointment %s: %v", id, err)
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return apt, nil
}

// Insert creates a new appointment
func (r *Repository) Insert(ctx context.Context, apt *types.Appointment) (*types.Appointment, error) {
	if apt.ID == "" {
		apt.ID = uuid.New().String()
	}
	now := time.Now()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	query := `
		INSERT INTO appointments (
			id, patient_email, patient_name, doctor_id, doctor_name, doctor_email,
			service_id, service_name, start_time, duration_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientEmail,
		apt.PatientName,
		apt.DoctorID,
		apt.DoctorName,
		apt.DoctorEmail,
		apt.ServiceID,
		apt.ServiceName,
		apt.Start,
		apt.DurationMinutes,
		apt.CreatedAt,
		apt.UpdatedAt,
	)

	if err != nil {
		r.logger.Errorf("Failed to create appointment: %v", err)
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	r.logger.Infof("Created appointment %s for patient %s with %s", apt.ID, apt.PatientEmail, apt.DoctorName)
	return apt, nil
}

// Update moves an appointment's start and duration in place
func (r *Repository) Update(ctx context.Context, id string, start time.Time, durationMinutes int) (*types.Appointment, error) {
	query := `
		UPDATE appointments
		SET start_time = $1, duration_minutes = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, start, durationMinutes, time.Now(), id)
	if err != nil {
		r.logger.Errorf("Failed to update appointment %s: %v", id, err)
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("appointment not found: %s", id)
	}

	return r.GetByID(ctx, id)
}

// Delete removes an appointment
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		r.logger.Errorf("Failed to delete appointment %s: %v", id, err)
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("appointment not found: %s", id)
	}

	r.logger.Infof("Deleted appointment %s", id)
	return nil
}

// ListDoctors returns clinic doctors, optionally only the available ones
func (r *Repository) ListDoctors(ctx context.Context, availableOnly bool) ([]*types.Doctor, error) {
	query := `SELECT id, name, email, specialization, available FROM doctors`
	if availableOnly {
		query += ` WHERE available = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*types.Doctor
	for rows.Next() {
		d := &types.Doctor{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Specialization, &d.Available); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

// GetDoctor retrieves a doctor by ID
func (r *Repository) GetDoctor(ctx context.Context, id string) (*types.Doctor, error) {
	d := &types.Doctor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, specialization, available FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Email, &d.Specialization, &d.Available)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("doctor not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return d, nil
}

// ListServices returns all clinic services
func (r *Repository) ListServices(ctx context.Context) ([]*types.Service, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, price, duration_minutes FROM services ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*types.Service
	for rows.Next() {
		s := &types.Service{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// GetService retrieves a service by ID
func (r *Repository) GetService(ctx context.Context, id string) (*types.Service, error) {
	s := &types.Service{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, duration_minutes FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("service not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// ListPatients returns all registered patients
func (r *Repository) ListPatients(ctx context.Context) ([]*types.Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone FROM patients ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []*types.Patient
	for rows.Next() {
		p := &types.Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// GetPatient retrieves a patient by ID
func (r *Repository) GetPatient(ctx context.Context, id string) (*types.Patient, error) {
	p := &types.Patient{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// InsertTicket persists an archived conversation ticket
func (r *Repository) InsertTicket(ctx context.Context, record *types.TicketRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	history, err := json.Marshal(record.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	categories := make([]string, len(record.Categories))
	for i, c := range record.Categories {
		categories[i] = string(c)
	}

	query := `
		INSERT INTO support_tickets (
			id, conversation_id, patient_id, ticket_types, subject, status,
			conversation_history, created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.ConversationID,
		record.PatientID,
		pq.Array(categories),
		record.Subject,
		string(record.Status),
		history,
		record.CreatedAt,
		record.ResolvedAt,
	)

	if err != nil {
		r.logger.Errorf("Failed to insert ticket for conversation %s: %v", record.ConversationID, err)
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	r.logger.Infof("Archived ticket %s (%s) for conversation %s", record.ID, record.Status, record.ConversationID)
	return nil
}

// scanAppointments reads appointment rows into a slice
func scanAppointments(rows *sql.Rows) ([]*types.Appointment, error) {
	var appointments []*types.Appointment
	for rows.Next() {
		apt := &types.Appointment{}
		err := rows.Scan(
			&apt.ID,
			&apt.PatientEmail,
			&apt.PatientName,
			&apt.DoctorID,
			&apt.DoctorName,
			&apt.DoctorEmail,
			&apt.ServiceID,
			&apt.ServiceName,
			&apt.Start,
			&apt.DurationMinutes,
			&apt.CreatedAt,
			&apt.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, apt)
	}
	return appointments, rows.Err()
}
