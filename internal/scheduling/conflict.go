package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/interfaces"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// ConflictDetector checks a proposed time window against a resource's
// existing appointments. The store's query granularity is day-level, so
// candidates are fetched for the calendar day of the proposed start and
// filtered here with the half-open overlap test.
type ConflictDetector struct {
	store  interfaces.AppointmentStore
	logger *logger.Logger
}

// NewConflictDetector creates a new conflict detector
func NewConflictDetector(store interfaces.AppointmentStore, log *logger.Logger) *ConflictDetector {
	return &ConflictDetector{
		store:  store,
		logger: log,
	}
}

// HasConflict reports whether the resource already has an appointment
// overlapping [proposedStart, proposedEnd). excludeID, when non-empty,
// skips that appointment so a reschedule never conflicts with itself.
// Boundary-exact: an appointment ending at proposedStart or starting at
// proposedEnd is adjacent, not a conflict.
func (d *ConflictDetector) HasConflict(ctx context.Context, kind types.ResourceKind, resourceID string, proposedStart, proposedEnd time.Time, excludeID string) (bool, error) {
	if !proposedStart.Before(proposedEnd) {
		return false, types.NewValidationError(types.ErrCodeInvalidInput,
			fmt.Sprintf("proposed window is empty: start %s is not before end %s", proposedStart, proposedEnd), nil)
	}

	candidates, err := d.store.ListForDay(ctx, kind, resourceID, proposedStart)
	if err != nil {
		return false, types.NewExternalError(types.ErrCodeExternalError, "failed to fetch day schedule", err)
	}

	proposed := types.TimeWindow{Start: proposedStart, End: proposedEnd}
	for _, candidate := range candidates {
		if excludeID != "" && candidate.ID == excludeID {
			continue
		}
		if proposed.Overlaps(candidate.Window()) {
			d.logger.WithFields(map[string]interface{}{
				"resource_kind":  string(kind),
				"resource_id":    resourceID,
				"candidate_id":   candidate.ID,
				"proposed_start": proposedStart,
				"proposed_end":   proposedEnd,
			}).Debug("Conflict detected")
			return true, nil
		}
	}

	return false, nil
}
