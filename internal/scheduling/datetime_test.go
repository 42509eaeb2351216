package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

func TestParseDateTime_AcceptedLayouts(t *testing.T) {
	want := time.Date(2025, 11, 25, 14, 0, 0, 0, riyadh)

	for _, raw := range []string{
		"2025-11-25 14:00",
		"2025-11-25T14:00",
		"2025-11-25 14:00:00",
		"  2025-11-25 14:00  ",
	} {
		got, err := ParseDateTime(raw, riyadh)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}
}

func TestParseDateTime_Rejected(t *testing.T) {
	for _, raw := range []string{
		"tomorrow at 3",
		"25/11/2025 14:00",
		"2025-11-25",
		"14:00",
		"",
	} {
		_, err := ParseDateTime(raw, riyadh)
		require.Error(t, err, raw)
		assert.True(t, types.IsValidation(err), raw)
	}
}

func TestParseDateTimeOrTime_BareTimeKeepsBaseDate(t *testing.T) {
	base := time.Date(2025, 11, 25, 14, 0, 0, 0, riyadh)

	got, err := ParseDateTimeOrTime("16:30", base, riyadh)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 25, 16, 30, 0, 0, riyadh), got)
}

func TestParseDateTimeOrTime_FullDateTimeMovesDate(t *testing.T) {
	base := time.Date(2025, 11, 25, 14, 0, 0, 0, riyadh)

	got, err := ParseDateTimeOrTime("2025-12-01 09:00", base, riyadh)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 9, 0, 0, 0, riyadh), got)
}

func TestParseDateTimeOrTime_Invalid(t *testing.T) {
	base := time.Date(2025, 11, 25, 14, 0, 0, 0, riyadh)

	_, err := ParseDateTimeOrTime("half past four", base, riyadh)

	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestLockKey_DayGranularity(t *testing.T) {
	morning := time.Date(2025, 11, 25, 9, 0, 0, 0, riyadh)
	evening := time.Date(2025, 11, 25, 20, 0, 0, 0, riyadh)
	nextDay := time.Date(2025, 11, 26, 9, 0, 0, 0, riyadh)

	assert.Equal(t,
		lockKey(types.ResourceDoctor, "saad@clinic.example", morning),
		lockKey(types.ResourceDoctor, "saad@clinic.example", evening))
	assert.NotEqual(t,
		lockKey(types.ResourceDoctor, "saad@clinic.example", morning),
		lockKey(types.ResourceDoctor, "saad@clinic.example", nextDay))
	assert.NotEqual(t,
		lockKey(types.ResourceDoctor, "x@clinic.example", morning),
		lockKey(types.ResourcePatient, "x@clinic.example", morning))
}

func TestResourceDayLocks_AcquireRelease(t *testing.T) {
	locks := newResourceDayLocks()
	day := time.Date(2025, 11, 25, 14, 0, 0, 0, riyadh)

	keys := []string{
		lockKey(types.ResourceDoctor, "saad@clinic.example", day),
		lockKey(types.ResourcePatient, "sara@example.com", day),
		lockKey(types.ResourceDoctor, "saad@clinic.example", day), // duplicate
	}

	release := locks.acquire(keys)
	release()

	// Reacquiring after release must not block
	done := make(chan struct{})
	go func() {
		r := locks.acquire(keys)
		r()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("locks were not released")
	}
}
