package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWDM/dental-ai-agent/pkg/database"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

func testRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewRepository(&database.DB{DB: sqlDB}, logger.New("debug"))
	return repo, mockDB
}

var appointmentRowColumns = []string{
	"id", "patient_email", "patient_name", "doctor_id", "doctor_name", "doctor_email",
	"service_id", "service_name", "start_time", "duration_minutes", "created_at", "updated_at",
}

func TestRepository_ListForPatient(t *testing.T) {
	repo, mockDB := testRepository(t)

	start := time.Date(2025, 11, 25, 14, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(appointmentRowColumns).
		AddRow("apt-1", "sara@example.com", "Sara", "doc-1", "Dr. Saad", "saad@clinic.example",
			"svc-1", "Teeth Cleaning", start, 60, start, start)

	mockDB.ExpectQuery(`SELECT .+ FROM appointments WHERE patient_email = \$1 AND start_time >= NOW\(\)`).
		WithArgs("sara@example.com").
		WillReturnRows(rows)

	appointments, err := repo.ListForPatient(context.Background(), "sara@example.com")

	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "apt-1", appointments[0].ID)
	assert.Equal(t, 60, appointments[0].DurationMinutes)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_ListForDay_UsesResourceColumn(t *testing.T) {
	repo, mockDB := testRepository(t)

	day := time.Date(2025, 11, 25, 14, 30, 0, 0, time.UTC)
	dayStart := time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	mockDB.ExpectQuery(`SELECT .+ FROM appointments WHERE doctor_email = \$1 AND start_time >= \$2 AND start_time < \$3`).
		WithArgs("saad@clinic.example", dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

	appointments, err := repo.ListForDay(context.Background(), types.ResourceDoctor, "saad@clinic.example", day)

	require.NoError(t, err)
	assert.Empty(t, appointments)
	assert.NoError(t, mockDB.ExpectationsWereMet())

	mockDB.ExpectQuery(`SELECT .+ FROM appointments WHERE patient_email = \$1 AND start_time >= \$2 AND start_time < \$3`).
		WithArgs("sara@example.com", dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

	_, err = repo.ListForDay(context.Background(), types.ResourcePatient, "sara@example.com", day)

	require.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_Insert_GeneratesID(t *testing.T) {
	repo, mockDB := testRepository(t)

	mockDB.ExpectExec(`INSERT INTO appointments`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	apt := &types.Appointment{
		PatientEmail:    "sara@example.com",
		PatientName:     "Sara",
		DoctorID:        "doc-1",
		DoctorEmail:     "saad@clinic.example",
		ServiceID:       "svc-1",
		Start:           time.Date(2025, 11, 25, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
	created, err := repo.Insert(context.Background(), apt)

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo, mockDB := testRepository(t)

	mockDB.ExpectExec(`UPDATE appointments`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), "apt-missing", time.Now(), 60)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mockDB := testRepository(t)

	mockDB.ExpectExec(`DELETE FROM appointments WHERE id = \$1`).
		WithArgs("apt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "apt-1")

	require.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_GetService(t *testing.T) {
	repo, mockDB := testRepository(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "duration_minutes"}).
		AddRow("svc-1", "Teeth Cleaning", "Standard cleaning", 250.0, 60)

	mockDB.ExpectQuery(`SELECT id, name, description, price, duration_minutes FROM services WHERE id = \$1`).
		WithArgs("svc-1").
		WillReturnRows(rows)

	service, err := repo.GetService(context.Background(), "svc-1")

	require.NoError(t, err)
	assert.Equal(t, "Teeth Cleaning", service.Name)
	assert.Equal(t, 250.0, service.Price)
}

func TestRepository_ListDoctors_AvailableOnly(t *testing.T) {
	repo, mockDB := testRepository(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "specialization", "available"}).
		AddRow("doc-1", "Dr. Saad", "saad@clinic.example", "General Dentistry", true)

	mockDB.ExpectQuery(`SELECT id, name, email, specialization, available FROM doctors WHERE available = TRUE`).
		WillReturnRows(rows)

	doctors, err := repo.ListDoctors(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Saad", doctors[0].Name)
}

func TestRepository_InsertTicket(t *testing.T) {
	repo, mockDB := testRepository(t)

	mockDB.ExpectExec(`INSERT INTO support_tickets`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	record := &types.TicketRecord{
		ConversationID: "conv-1",
		Categories:     []types.TicketCategory{types.CategoryBooking},
		Subject:        "Appointment Booking - Dr. Saad - Teeth Cleaning",
		Status:         types.TicketResolved,
		Transcript: []types.Turn{
			{Role: types.RoleUser, Text: "I want to book a cleaning"},
			{Role: types.RoleAssistant, Text: "Booked!"},
		},
		CreatedAt:  now,
		ResolvedAt: &now,
	}

	err := repo.InsertTicket(context.Background(), record)

	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
