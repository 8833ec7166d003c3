package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/schedule"
	"server/internal/sqlinline"
)

type createSubscriptionRequest struct {
	FullName     string   `json:"fullName"`
	PhoneNumber  string   `json:"phoneNumber"`
	Allergies    string   `json:"allergies"`
	PlanName     string   `json:"planName"`
	MealTypes    []string `json:"mealTypes"`
	DeliveryDays []string `json:"deliveryDays"`
}

func (a *App) SubscriptionCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "please log in to subscribe")
		return
	}
	if id.Role == "admin" {
		a.error(w, http.StatusForbidden, "forbidden", "admins cannot create subscriptions")
		return
	}

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.FullName == "" || req.PhoneNumber == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "fullName and phoneNumber are required")
		return
	}

	in, err := parseSelections(req, a.now())
	if err != nil {
		a.domainError(w, err)
		return
	}

	days, err := schedule.Generate(a.Catalog, in)
	if err != nil {
		a.domainError(w, err)
		return
	}
	price, err := schedule.MonthlyPrice(in.Plan, len(in.MealTypes), len(in.DeliveryDays))
	if err != nil {
		a.domainError(w, err)
		return
	}

	scheduleJSON, err := json.Marshal(days)
	if err != nil {
		a.Logger.Error().Err(err).Msg("encode schedule failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create subscription")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertSubscription,
		id.Email, req.FullName, req.PhoneNumber, strings.TrimSpace(req.Allergies),
		string(in.Plan), price, scheduleJSON)

	sub := domain.Subscription{
		UserEmail:   id.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Allergies:   strings.TrimSpace(req.Allergies),
		PlanName:    in.Plan,
		TotalPrice:  price,
		Schedule:    days,
		Status:      domain.SubscriptionActive,
	}
	if err := row.Scan(&sub.ID, &sub.SubscriptionDate); err != nil {
		a.Logger.Error().Err(err).Msg("insert subscription failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create subscription")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{"success": true, "data": sub})
}

func parseSelections(req createSubscriptionRequest, now time.Time) (schedule.Input, error) {
	plan, ok := domain.ParsePlanName(req.PlanName)
	if !ok {
		return schedule.Input{}, fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, req.PlanName)
	}

	meals := make([]domain.MealType, 0, len(req.MealTypes))
	seenMeals := map[domain.MealType]bool{}
	for _, raw := range req.MealTypes {
		mt, ok := domain.ParseMealType(raw)
		if !ok {
			return schedule.Input{}, fmt.Errorf("%w: unknown meal type %q", domain.ErrInvalidInput, raw)
		}
		if !seenMeals[mt] {
			seenMeals[mt] = true
			meals = append(meals, mt)
		}
	}

	days := make([]time.Weekday, 0, len(req.DeliveryDays))
	seenDays := map[time.Weekday]bool{}
	for _, raw := range req.DeliveryDays {
		d, ok := schedule.ParseWeekday(raw)
		if !ok {
			return schedule.Input{}, fmt.Errorf("%w: unknown delivery day %q", domain.ErrInvalidInput, raw)
		}
		if !seenDays[d] {
			seenDays[d] = true
			days = append(days, d)
		}
	}

	in := schedule.Input{Plan: plan, MealTypes: meals, DeliveryDays: days, Start: now}
	if err := in.Validate(); err != nil {
		return schedule.Input{}, err
	}
	return in, nil
}

// SubscriptionMine returns the caller's most recent subscription. Past active
// days are reconciled to completed and, when anything changed, written back
// before the response is built.
func (a *App) SubscriptionMine(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectLatestSubscriptionByEmail, id.Email)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusOK, map[string]any{"subscription": nil})
			return
		}
		a.Logger.Error().Err(err).Msg("load subscription failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load subscription")
		return
	}

	if err := a.reconcileAndPersist(r.Context(), sub); err != nil {
		a.Logger.Error().Err(err).Str("subscription_id", sub.ID).Msg("persist reconciled schedule failed")
		// Serve the reconciled view anyway; the next read retries the write.
	}

	a.json(w, http.StatusOK, map[string]any{"subscription": sub})
}

type statusUpdateRequest struct {
	Action string `json:"action"`
}

func (a *App) SubscriptionUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	action, ok := schedule.ParseAction(req.Action)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "action must be pause, resume or cancel")
		return
	}

	sub, err := a.loadOwnedSubscription(r, id, action == schedule.ActionCancel)
	if err != nil {
		a.domainError(w, err)
		return
	}

	next, err := schedule.Transition(sub.Status, action)
	if err != nil {
		a.domainError(w, err)
		return
	}

	if _, err := a.SQL.Exec(r.Context(), sqlinline.QUpdateSubscriptionStatus, sub.ID, string(next)); err != nil {
		a.Logger.Error().Err(err).Msg("update subscription status failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update subscription")
		return
	}
	sub.Status = next

	a.json(w, http.StatusOK, map[string]any{"success": true, "data": sub})
}

type scheduleUpdateRequest struct {
	Swaps []schedule.Swap `json:"swaps"`
}

// SubscriptionUpdateSchedule substitutes meals on individual days. Owner
// only; admins manage status, not menus.
func (a *App) SubscriptionUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req scheduleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	sub, err := a.loadOwnedSubscription(r, id, false)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if sub.Status == domain.SubscriptionCancelled {
		a.domainError(w, fmt.Errorf("%w: subscription is cancelled", domain.ErrInvalidTransition))
		return
	}

	today := a.now()
	// Settle past days first so the edit guard sees current day statuses.
	schedule.Reconcile(sub.Schedule, today)

	if err := schedule.ApplySwaps(a.Catalog, sub.PlanName, sub.Schedule, req.Swaps, today); err != nil {
		a.domainError(w, err)
		return
	}

	if err := a.persistSchedule(r.Context(), sub); err != nil {
		a.Logger.Error().Err(err).Msg("update schedule failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update schedule")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "data": sub})
}

// SubscriptionCancel cancels the subscription. Allowed for the owner and for
// admins; the record is kept, cancelled is a terminal status.
func (a *App) SubscriptionCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	sub, err := a.loadOwnedSubscription(r, id, true)
	if err != nil {
		a.domainError(w, err)
		return
	}

	next, err := schedule.Transition(sub.Status, schedule.ActionCancel)
	if err != nil {
		a.domainError(w, err)
		return
	}

	if _, err := a.SQL.Exec(r.Context(), sqlinline.QUpdateSubscriptionStatus, sub.ID, string(next)); err != nil {
		a.Logger.Error().Err(err).Msg("cancel subscription failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to cancel subscription")
		return
	}

	a.json(w, http.StatusOK, map[string]string{"message": "Subscription cancelled successfully"})
}

// loadOwnedSubscription fetches the subscription in the URL and checks the
// caller may act on it. Admins qualify only where adminAllowed is set
// (cancel); everything else is owner-only.
func (a *App) loadOwnedSubscription(r *http.Request, id middleware.Identity, adminAllowed bool) (*domain.Subscription, error) {
	subID := chi.URLParam(r, "id")
	if subID == "" {
		return nil, fmt.Errorf("%w: subscription id required", domain.ErrInvalidInput)
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectSubscriptionByID, subID)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, err
	}

	if sub.UserEmail != id.Email {
		if !(adminAllowed && id.Role == "admin") {
			return nil, fmt.Errorf("%w: not your subscription", domain.ErrForbidden)
		}
	}
	return sub, nil
}

func (a *App) reconcileAndPersist(ctx context.Context, sub *domain.Subscription) error {
	if !schedule.Reconcile(sub.Schedule, a.now()) {
		return nil
	}
	return a.persistSchedule(ctx, sub)
}

func (a *App) persistSchedule(ctx context.Context, sub *domain.Subscription) error {
	scheduleJSON, err := json.Marshal(sub.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	if _, err := a.SQL.Exec(ctx, sqlinline.QUpdateSubscriptionSchedule, sub.ID, scheduleJSON); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	var scheduleBytes []byte
	err := row.Scan(&sub.ID, &sub.UserEmail, &sub.FullName, &sub.PhoneNumber, &sub.Allergies,
		&sub.PlanName, &sub.TotalPrice, &scheduleBytes, &sub.Status, &sub.SubscriptionDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(scheduleBytes) > 0 {
		if err := json.Unmarshal(scheduleBytes, &sub.Schedule); err != nil {
			return nil, fmt.Errorf("decode schedule: %w", err)
		}
	}
	return &sub, nil
}
