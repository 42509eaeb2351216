package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/OWDM/dental-ai-agent/internal/metrics"
	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// Resolver maps fuzzy natural-language criteria to one concrete stored
// appointment among a patient's upcoming appointments.
type Resolver struct {
	store  interfaces.AppointmentStore
	logger *logger.Logger
}

// NewResolver creates a new appointment resolver
func NewResolver(store interfaces.AppointmentStore, log *logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: log,
	}
}

// Resolve finds the single best-matching appointment for the criteria.
// Zero matches returns a not-found error naming the criteria tried. When
// several appointments match, the first in chronological order is picked;
// the ambiguity is logged and counted rather than silently swallowed.
func (r *Resolver) Resolve(ctx context.Context, criteria types.AppointmentCriteria) (*types.Appointment, error) {
	appointments, err := r.store.ListForPatient(ctx, criteria.PatientEmail)
	if err != nil {
		return nil, types.NewExternalError(types.ErrCodeExternalError, "failed to list patient appointments", err)
	}

	var matches []*types.Appointment
	for _, apt := range appointments {
		if matchesCriteria(apt, criteria) {
			matches = append(matches, apt)
		}
	}

	switch len(matches) {
	case 0:
		return nil, types.NewNotFoundError(types.ErrCodeNotFound,
			fmt.Sprintf("no appointment found %s", criteria.Describe()),
			map[string]interface{}{
				"doctor_name":  criteria.DoctorName,
				"service_name": criteria.ServiceName,
				"date_ref":     criteria.DateRef,
			})
	case 1:
		return matches[0], nil
	default:
		// Deliberate simplification: pick the earliest rather than asking
		// the user to disambiguate. Flagged so it shows up in logs/metrics.
		metrics.ResolverAmbiguousTotal.Inc()
		r.logger.WithFields(map[string]interface{}{
			"patient_email": criteria.PatientEmail,
			"match_count":   len(matches),
			"picked_id":     matches[0].ID,
		}).Warn("Multiple appointments matched criteria; picking first chronologically")
		return matches[0], nil
	}
}

// matchesCriteria reports whether an appointment survives every present
// criterion. Absent criteria match everything.
func matchesCriteria(apt *types.Appointment, criteria types.AppointmentCriteria) bool {
	if criteria.DoctorName != "" &&
		!strings.Contains(strings.ToLower(apt.DoctorName), strings.ToLower(criteria.DoctorName)) {
		return false
	}
	if criteria.ServiceName != "" &&
		!strings.Contains(strings.ToLower(apt.ServiceName), strings.ToLower(criteria.ServiceName)) {
		return false
	}
	if criteria.DateRef != "" && !matchesDateRef(apt, criteria.DateRef) {
		return false
	}
	return true
}

// matchesDateRef matches a date reference against the appointment's date
// via exact date string, weekday name, or "Month Day" form.
func matchesDateRef(apt *types.Appointment, dateRef string) bool {
	ref := strings.ToLower(strings.TrimSpace(dateRef))
	dateStr := apt.Start.Format("2006-01-02")
	weekday := strings.ToLower(apt.Start.Format("Monday"))
	monthDay := strings.ToLower(apt.Start.Format("January 2"))

	return strings.Contains(dateStr, ref) ||
		strings.Contains(weekday, ref) ||
		strings.Contains(monthDay, ref)
}
