package schedule

import (
	"fmt"
	"math"
	"time"

	"server/internal/catalog"
	"server/internal/domain"
)

// HorizonDays is the fixed schedule window, counted from the creation date
// inclusive.
const HorizonDays = 30

// WeeklyOccurrence approximates weeks per month for the monthly price
// estimate. The estimate is shown to the user before submission; it is not a
// sum over the materialized schedule.
const WeeklyOccurrence = 4.3

var canonicalMealOrder = []domain.MealType{domain.MealBreakfast, domain.MealLunch, domain.MealDinner}

// Input carries the selections made on the subscription form.
type Input struct {
	Plan         domain.PlanName
	MealTypes    []domain.MealType
	DeliveryDays []time.Weekday
	Start        time.Time
}

// Validate checks the selections. All failures wrap domain.ErrInvalidInput.
func (in Input) Validate() error {
	if _, ok := catalog.PlanPrice(in.Plan); !ok {
		return fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, in.Plan)
	}
	if len(in.MealTypes) == 0 {
		return fmt.Errorf("%w: at least one meal type is required", domain.ErrInvalidInput)
	}
	for _, mt := range in.MealTypes {
		if _, ok := domain.ParseMealType(string(mt)); !ok {
			return fmt.Errorf("%w: unknown meal type %q", domain.ErrInvalidInput, mt)
		}
	}
	if len(in.DeliveryDays) == 0 {
		return fmt.Errorf("%w: at least one delivery day is required", domain.ErrInvalidInput)
	}
	for _, d := range in.DeliveryDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: unknown delivery day %d", domain.ErrInvalidInput, d)
		}
	}
	return nil
}

// Generate expands the selections into one DaySchedule per calendar day in
// [start, start+HorizonDays) whose weekday is selected. Each emitted day holds
// one MealAssignment per selected meal type, populated from the first catalog
// item of the plan tier, and starts in the active state.
func Generate(cat *catalog.Catalog, in Input) ([]domain.DaySchedule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, ok := cat.FirstForPlan(in.Plan)
	if !ok {
		return nil, fmt.Errorf("%w: no menu items for plan %q", domain.ErrInvalidInput, in.Plan)
	}

	selectedMeals := make(map[domain.MealType]bool, len(in.MealTypes))
	for _, mt := range in.MealTypes {
		selectedMeals[mt] = true
	}
	selectedDays := make(map[time.Weekday]bool, len(in.DeliveryDays))
	for _, d := range in.DeliveryDays {
		selectedDays[d] = true
	}

	start := DateOnly(in.Start)
	var out []domain.DaySchedule
	for i := 0; i < HorizonDays; i++ {
		date := start.AddDate(0, 0, i)
		if !selectedDays[date.Weekday()] {
			continue
		}
		meals := make([]domain.MealAssignment, 0, len(selectedMeals))
		for _, mt := range canonicalMealOrder {
			if !selectedMeals[mt] {
				continue
			}
			meals = append(meals, domain.MealAssignment{
				MealType:        mt,
				MealID:          item.ID,
				MealTitle:       item.Title,
				MealDescription: item.Description,
			})
		}
		if len(meals) == 0 {
			// Unreachable while Validate requires a non-empty meal
			// selection; an empty day must never be emitted.
			continue
		}
		out = append(out, domain.DaySchedule{
			Date:   date,
			Meals:  meals,
			Status: domain.DayActive,
		})
	}
	return out, nil
}

// MonthlyPrice computes the advertised monthly price:
// planPrice × mealTypes × deliveryDays × WeeklyOccurrence, rounded to the
// nearest rupiah. It only depends on the set sizes, so it is stable under
// reordering of the selections.
func MonthlyPrice(plan domain.PlanName, mealTypeCount, deliveryDayCount int) (int64, error) {
	price, ok := catalog.PlanPrice(plan)
	if !ok {
		return 0, fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, plan)
	}
	if mealTypeCount <= 0 || deliveryDayCount <= 0 {
		return 0, fmt.Errorf("%w: meal type and delivery day selections must be non-empty", domain.ErrInvalidInput)
	}
	total := float64(price) * float64(mealTypeCount) * float64(deliveryDayCount) * WeeklyOccurrence
	return int64(math.Round(total)), nil
}

// DateOnly truncates a timestamp to midnight UTC so schedule dates compare by
// calendar day regardless of time of day or zone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// ParseWeekday maps a day name from the subscription form to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayNames[name]
	return d, ok
}
