package schedule

import (
	"time"

	"server/internal/domain"
)

// Reconcile marks every day strictly before today that is still active as
// completed. Comparison is by calendar date; time of day is ignored. The
// function is pure over the slice it mutates and reports whether anything
// changed, so the caller persists only when dirty. Applying it twice is a
// no-op the second time.
func Reconcile(days []domain.DaySchedule, today time.Time) bool {
	cutoff := DateOnly(today)
	changed := false
	for i := range days {
		if days[i].Status != domain.DayActive {
			continue
		}
		if DateOnly(days[i].Date).Before(cutoff) {
			days[i].Status = domain.DayCompleted
			changed = true
		}
	}
	return changed
}
