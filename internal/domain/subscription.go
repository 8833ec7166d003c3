package domain

import "time"

// PlanName enumerates the three catering plan tiers.
type PlanName string

const (
	PlanDiet    PlanName = "Diet Plan"
	PlanProtein PlanName = "Protein Plan"
	PlanRoyal   PlanName = "Royal Plan"
)

// ParsePlanName validates a plan name received from a client.
func ParsePlanName(s string) (PlanName, bool) {
	switch PlanName(s) {
	case PlanDiet, PlanProtein, PlanRoyal:
		return PlanName(s), true
	}
	return "", false
}

// MealType enumerates delivery slots within a day.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
)

// ParseMealType validates a meal type received from a client.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner:
		return MealType(s), true
	}
	return "", false
}

// SubscriptionStatus is the subscription-level lifecycle state.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// DayStatus is the per-day state. Unlike the subscription status it can also
// be "completed", set when the delivery date has passed.
type DayStatus string

const (
	DayActive    DayStatus = "active"
	DayCompleted DayStatus = "completed"
	DayPaused    DayStatus = "paused"
	DayCancelled DayStatus = "cancelled"
)

// MealAssignment pins one menu item to a meal slot. Title and description are
// denormalized on purpose: later catalog edits must not rewrite history.
type MealAssignment struct {
	MealType        MealType `json:"mealType"`
	MealID          int      `json:"mealId"`
	MealTitle       string   `json:"mealTitle"`
	MealDescription string   `json:"mealDescription"`
}

// DaySchedule is one calendar day's worth of meal assignments.
type DaySchedule struct {
	Date   time.Time        `json:"date"`
	Meals  []MealAssignment `json:"meals"`
	Status DayStatus        `json:"status"`
}

// Subscription is the persisted subscription record. The schedule is fully
// materialized at creation time and covers a fixed 30-day horizon.
type Subscription struct {
	ID               string             `json:"id"`
	UserEmail        string             `json:"userEmail"`
	FullName         string             `json:"fullName"`
	PhoneNumber      string             `json:"phoneNumber"`
	Allergies        string             `json:"allergies,omitempty"`
	PlanName         PlanName           `json:"planName"`
	TotalPrice       int64              `json:"totalPrice"`
	Schedule         []DaySchedule      `json:"schedule"`
	Status           SubscriptionStatus `json:"status"`
	SubscriptionDate time.Time          `json:"subscriptionDate"`
}
