package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

func patientAppointments(appointments ...*types.Appointment) *MockAppointmentStore {
	store := &MockAppointmentStore{}
	store.On("ListForPatient", mock.Anything, mock.Anything).Return(appointments, nil)
	return store
}

// 2025-11-26 is a Wednesday
func upcomingAppointments() []*types.Appointment {
	return []*types.Appointment{
		{
			ID:          "apt-1",
			DoctorName:  "Dr. Saad",
			ServiceName: "Teeth Cleaning",
			Start:       time.Date(2025, 11, 26, 10, 0, 0, 0, riyadh),
		},
		{
			ID:          "apt-2",
			DoctorName:  "Dr. Lina",
			ServiceName: "Root Canal",
			Start:       time.Date(2025, 11, 27, 14, 0, 0, 0, riyadh),
		},
	}
}

func TestResolver_SingleMatchByDoctor(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	apt, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		DoctorName:   "saad",
	})

	require.NoError(t, err)
	assert.Equal(t, "apt-1", apt.ID)
}

func TestResolver_SingleMatchByService(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	apt, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		ServiceName:  "root canal",
	})

	require.NoError(t, err)
	assert.Equal(t, "apt-2", apt.ID)
}

func TestResolver_MatchByWeekday(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	apt, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		DateRef:      "Wednesday",
	})

	require.NoError(t, err)
	assert.Equal(t, "apt-1", apt.ID)
}

func TestResolver_MatchByExactDate(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	apt, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		DateRef:      "2025-11-27",
	})

	require.NoError(t, err)
	assert.Equal(t, "apt-2", apt.ID)
}

func TestResolver_MatchByMonthDay(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	apt, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		DateRef:      "November 27",
	})

	require.NoError(t, err)
	assert.Equal(t, "apt-2", apt.ID)
}

func TestResolver_CombinedCriteriaMustAllMatch(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	// Doctor matches apt-1 but the date matches apt-2: no appointment
	// satisfies both
	_, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		DoctorName:   "Saad",
		DateRef:      "2025-11-27",
	})

	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestResolver_NoMatchDescribesCriteria(t *testing.T) {
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	_, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
		DoctorName:   "Khalid",
	})

	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
	assert.Contains(t, err.Error(), "Khalid")
}

func TestResolver_AmbiguousPicksFirst(t *testing.T) {
	// No criteria beyond the patient: both appointments match
	store := patientAppointments(upcomingAppointments()...)
	resolver := NewResolver(store, logger.New("debug"))

	apt, err := resolver.Resolve(context.Background(), types.AppointmentCriteria{
		PatientEmail: "sara@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "apt-1", apt.ID)
}
