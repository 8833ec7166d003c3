package schedule

import (
	"fmt"
	"time"

	"server/internal/catalog"
	"server/internal/domain"
)

// Swap substitutes one menu item for a meal slot on a specific day.
type Swap struct {
	Date     time.Time       `json:"date"`
	MealType domain.MealType `json:"mealType"`
	MealID   int             `json:"mealId"`
}

// ApplySwaps applies meal substitutions to the schedule in place.
//
// Guards, enforced server-side:
//   - the target day must exist and its meal slot must be selected
//     (domain.ErrInvalidInput otherwise)
//   - the replacement item must exist and belong to the subscription's plan
//     tier (domain.ErrInvalidInput)
//   - the day must not be in the past and must not be completed or cancelled
//     (domain.ErrInvalidTransition)
//
// On any failure the schedule is left unchanged.
func ApplySwaps(cat *catalog.Catalog, plan domain.PlanName, days []domain.DaySchedule, swaps []Swap, today time.Time) error {
	if len(swaps) == 0 {
		return fmt.Errorf("%w: no substitutions provided", domain.ErrInvalidInput)
	}

	cutoff := DateOnly(today)

	type change struct {
		day, meal int
		item      catalog.MenuItem
	}
	changes := make([]change, 0, len(swaps))

	for _, s := range swaps {
		item, ok := cat.ByID(s.MealID)
		if !ok {
			return fmt.Errorf("%w: unknown menu item %d", domain.ErrInvalidInput, s.MealID)
		}
		if item.PlanName != plan {
			return fmt.Errorf("%w: menu item %d belongs to %q, not %q", domain.ErrInvalidInput, s.MealID, item.PlanName, plan)
		}

		date := DateOnly(s.Date)
		dayIdx := -1
		for i := range days {
			if DateOnly(days[i].Date).Equal(date) {
				dayIdx = i
				break
			}
		}
		if dayIdx < 0 {
			return fmt.Errorf("%w: no delivery scheduled on %s", domain.ErrInvalidInput, date.Format("2006-01-02"))
		}

		day := days[dayIdx]
		if date.Before(cutoff) {
			return fmt.Errorf("%w: cannot edit a past day", domain.ErrInvalidTransition)
		}
		if day.Status == domain.DayCompleted || day.Status == domain.DayCancelled {
			return fmt.Errorf("%w: cannot edit a %s day", domain.ErrInvalidTransition, day.Status)
		}

		mealIdx := -1
		for i := range day.Meals {
			if day.Meals[i].MealType == s.MealType {
				mealIdx = i
				break
			}
		}
		if mealIdx < 0 {
			return fmt.Errorf("%w: %s is not part of this subscription", domain.ErrInvalidInput, s.MealType)
		}

		changes = append(changes, change{day: dayIdx, meal: mealIdx, item: item})
	}

	// All swaps validated; apply atomically.
	for _, c := range changes {
		meal := &days[c.day].Meals[c.meal]
		meal.MealID = c.item.ID
		meal.MealTitle = c.item.Title
		meal.MealDescription = c.item.Description
	}
	return nil
}
