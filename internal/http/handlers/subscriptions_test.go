package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/schedule"
	"server/internal/sqlinline"
)

func TestSubscriptionCreate_AdminForbidden(t *testing.T) {
	app := newTestApp(&fakeSQL{})

	req := jsonRequest("POST", "/v1/subscriptions", map[string]any{
		"fullName":     "Budi Santoso",
		"phoneNumber":  "+628123456789",
		"planName":     "Diet Plan",
		"mealTypes":    []string{"Breakfast"},
		"deliveryDays": []string{"Monday"},
	})
	req = asUser(req, middleware.Identity{UserID: "admin-1", Email: "admin@example.com", Role: "admin"})
	rr := httptest.NewRecorder()

	app.SubscriptionCreate(rr, req)

	if rr.Code != 403 {
		t.Fatalf("unexpected status code: got %d, want 403", rr.Code)
	}
}

func TestSubscriptionCreate_UnknownPlan(t *testing.T) {
	sql := &fakeSQL{}
	app := newTestApp(sql)

	req := jsonRequest("POST", "/v1/subscriptions", map[string]any{
		"fullName":     "Budi Santoso",
		"phoneNumber":  "+628123456789",
		"planName":     "Gold Plan",
		"mealTypes":    []string{"Breakfast"},
		"deliveryDays": []string{"Monday"},
	})
	req = asUser(req, ownerIdentity())
	rr := httptest.NewRecorder()

	app.SubscriptionCreate(rr, req)

	if rr.Code != 400 {
		t.Fatalf("unexpected status code: got %d, want 400", rr.Code)
	}
	if code := decodeErrorCode(t, rr.Body); code != "bad_request" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestSubscriptionCreate_GeneratesScheduleAndPrice(t *testing.T) {
	var insertedPrice int64
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			if query != sqlinline.QInsertSubscription {
				return NewSimpleRow(func(...any) error {
					return fmt.Errorf("unexpected query")
				})
			}
			if len(args) != 7 {
				return NewSimpleRow(func(...any) error {
					return fmt.Errorf("unexpected args count: %d", len(args))
				})
			}
			insertedPrice = args[5].(int64)
			return NewSimpleRow(func(dest ...any) error {
				*(dest[0].(*string)) = "sub-created"
				*(dest[1].(*time.Time)) = testNow
				return nil
			})
		},
	}
	app := newTestApp(sql)

	req := jsonRequest("POST", "/v1/subscriptions", map[string]any{
		"fullName":     "Budi Santoso",
		"phoneNumber":  "+628123456789",
		"allergies":    "peanuts",
		"planName":     "Diet Plan",
		"mealTypes":    []string{"Breakfast", "Dinner"},
		"deliveryDays": []string{"Monday", "Wednesday"},
	})
	req = asUser(req, ownerIdentity())
	rr := httptest.NewRecorder()

	app.SubscriptionCreate(rr, req)

	if rr.Code != 201 {
		t.Fatalf("unexpected status code: got %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}

	sub := decodeSubscriptionEnvelope(t, rr.Body)
	if sub.ID != "sub-created" {
		t.Fatalf("unexpected subscription id: %q", sub.ID)
	}
	if sub.TotalPrice != 516000 || insertedPrice != 516000 {
		t.Fatalf("unexpected price: response %d, inserted %d", sub.TotalPrice, insertedPrice)
	}
	if len(sub.Schedule) != 9 {
		t.Fatalf("expected 9 delivery days over the horizon, got %d", len(sub.Schedule))
	}
	first := sub.Schedule[0]
	if !first.Date.Equal(schedule.DateOnly(testNow)) {
		t.Fatalf("expected schedule to start on the creation day, got %s", first.Date)
	}
	if len(first.Meals) != 2 || first.Meals[0].MealType != domain.MealBreakfast || first.Meals[1].MealType != domain.MealDinner {
		t.Fatalf("unexpected meal slots: %+v", first.Meals)
	}
	if sub.Status != domain.SubscriptionActive {
		t.Fatalf("expected new subscription to be active, got %q", sub.Status)
	}
}

func TestSubscriptionMine_NoSubscription(t *testing.T) {
	app := newTestApp(&fakeSQL{})

	req := asUser(jsonRequest("GET", "/v1/subscriptions/me", nil), ownerIdentity())
	rr := httptest.NewRecorder()

	app.SubscriptionMine(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	var payload struct {
		Subscription *domain.Subscription `json:"subscription"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Subscription != nil {
		t.Fatalf("expected null subscription, got %+v", payload.Subscription)
	}
}

func TestSubscriptionMine_CompletesPastDays(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive,
		dietDay(schedule.DateOnly(testNow), domain.DayActive),
		dietDay(schedule.DateOnly(testNow).AddDate(0, 0, 7), domain.DayActive),
	)
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)
	app.Clock = func() time.Time { return testNow.AddDate(0, 0, 2) }

	req := asUser(jsonRequest("GET", "/v1/subscriptions/me", nil), ownerIdentity())
	rr := httptest.NewRecorder()

	app.SubscriptionMine(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}

	var payload struct {
		Subscription domain.Subscription `json:"subscription"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	got := payload.Subscription
	if got.Schedule[0].Status != domain.DayCompleted {
		t.Fatalf("expected past day completed, got %q", got.Schedule[0].Status)
	}
	if got.Schedule[1].Status != domain.DayActive {
		t.Fatalf("expected future day untouched, got %q", got.Schedule[1].Status)
	}

	if len(sql.execCalls) != 1 || sql.execCalls[0].query != sqlinline.QUpdateSubscriptionSchedule {
		t.Fatalf("expected one schedule write-back, got %+v", sql.execCalls)
	}
}

func TestSubscriptionMine_NoWriteWhenClean(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive,
		dietDay(schedule.DateOnly(testNow), domain.DayActive),
	)
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)

	req := asUser(jsonRequest("GET", "/v1/subscriptions/me", nil), ownerIdentity())
	rr := httptest.NewRecorder()

	app.SubscriptionMine(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	// Today's delivery is still pending; nothing changed, nothing written.
	if len(sql.execCalls) != 0 {
		t.Fatalf("expected no write-back, got %+v", sql.execCalls)
	}
}

func statusUpdateRequestFor(t *testing.T, sub domain.Subscription, action string, id middleware.Identity) (*fakeSQL, *httptest.ResponseRecorder, func(app *App)) {
	t.Helper()
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	rr := httptest.NewRecorder()
	run := func(app *App) {
		req := jsonRequest("PATCH", "/v1/subscriptions/"+sub.ID+"/status", map[string]string{"action": action})
		req = asUser(req, id)
		req = withURLParam(req, "id", sub.ID)
		app.SubscriptionUpdateStatus(rr, req)
	}
	return sql, rr, run
}

func TestSubscriptionUpdateStatus_PauseActive(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive, dietDay(schedule.DateOnly(testNow), domain.DayActive))
	sql, rr, run := statusUpdateRequestFor(t, sub, "pause", ownerIdentity())
	run(newTestApp(sql))

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	got := decodeSubscriptionEnvelope(t, rr.Body)
	if got.Status != domain.SubscriptionPaused {
		t.Fatalf("expected paused, got %q", got.Status)
	}
	if len(sql.execCalls) != 1 || sql.execCalls[0].query != sqlinline.QUpdateSubscriptionStatus {
		t.Fatalf("expected one status write, got %+v", sql.execCalls)
	}
	if sql.execCalls[0].args[1] != "paused" {
		t.Fatalf("unexpected persisted status: %v", sql.execCalls[0].args[1])
	}
}

func TestSubscriptionUpdateStatus_ResumeActiveConflict(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive, dietDay(schedule.DateOnly(testNow), domain.DayActive))
	sql, rr, run := statusUpdateRequestFor(t, sub, "resume", ownerIdentity())
	run(newTestApp(sql))

	if rr.Code != 409 {
		t.Fatalf("unexpected status code: got %d, want 409", rr.Code)
	}
	if code := decodeErrorCode(t, rr.Body); code != "invalid_transition" {
		t.Fatalf("unexpected error code: %q", code)
	}
	if len(sql.execCalls) != 0 {
		t.Fatalf("expected no write on rejected transition, got %+v", sql.execCalls)
	}
}

func TestSubscriptionUpdateStatus_UnknownAction(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive, dietDay(schedule.DateOnly(testNow), domain.DayActive))
	sql, rr, run := statusUpdateRequestFor(t, sub, "archive", ownerIdentity())
	run(newTestApp(sql))

	if rr.Code != 400 {
		t.Fatalf("unexpected status code: got %d, want 400", rr.Code)
	}
}

func TestSubscriptionUpdateStatus_OtherUserForbidden(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive, dietDay(schedule.DateOnly(testNow), domain.DayActive))
	other := middleware.Identity{UserID: "user-2", Email: "siti@example.com", Role: "user"}
	sql, rr, run := statusUpdateRequestFor(t, sub, "pause", other)
	run(newTestApp(sql))

	if rr.Code != 403 {
		t.Fatalf("unexpected status code: got %d, want 403", rr.Code)
	}
	if len(sql.execCalls) != 0 {
		t.Fatalf("expected no write, got %+v", sql.execCalls)
	}
}

func TestSubscriptionCancel_CancelledTwiceConflict(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionCancelled, dietDay(schedule.DateOnly(testNow), domain.DayCancelled))
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)

	req := asUser(jsonRequest("DELETE", "/v1/subscriptions/"+sub.ID, nil), ownerIdentity())
	req = withURLParam(req, "id", sub.ID)
	rr := httptest.NewRecorder()

	app.SubscriptionCancel(rr, req)

	if rr.Code != 409 {
		t.Fatalf("unexpected status code: got %d, want 409", rr.Code)
	}
	if code := decodeErrorCode(t, rr.Body); code != "invalid_transition" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestSubscriptionCancel_AdminCanCancel(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionActive, dietDay(schedule.DateOnly(testNow), domain.DayActive))
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)

	admin := middleware.Identity{UserID: "admin-1", Email: "admin@example.com", Role: "admin"}
	req := asUser(jsonRequest("DELETE", "/v1/subscriptions/"+sub.ID, nil), admin)
	req = withURLParam(req, "id", sub.ID)
	rr := httptest.NewRecorder()

	app.SubscriptionCancel(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if len(sql.execCalls) != 1 || sql.execCalls[0].args[1] != "cancelled" {
		t.Fatalf("expected cancelled write, got %+v", sql.execCalls)
	}
}

func TestSubscriptionUpdateSchedule_CancelledSubscription(t *testing.T) {
	sub := dietSubscription(domain.SubscriptionCancelled, dietDay(schedule.DateOnly(testNow), domain.DayCancelled))
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)

	req := jsonRequest("PATCH", "/v1/subscriptions/"+sub.ID+"/schedule", map[string]any{
		"swaps": []map[string]any{{
			"date":     schedule.DateOnly(testNow),
			"mealType": "Breakfast",
			"mealId":   4,
		}},
	})
	req = asUser(req, ownerIdentity())
	req = withURLParam(req, "id", sub.ID)
	rr := httptest.NewRecorder()

	app.SubscriptionUpdateSchedule(rr, req)

	if rr.Code != 409 {
		t.Fatalf("unexpected status code: got %d, want 409", rr.Code)
	}
}

func TestSubscriptionUpdateSchedule_SwapsMeal(t *testing.T) {
	target := schedule.DateOnly(testNow).AddDate(0, 0, 7)
	sub := dietSubscription(domain.SubscriptionActive,
		dietDay(schedule.DateOnly(testNow), domain.DayActive),
		dietDay(target, domain.DayActive),
	)
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)

	replacement, ok := app.Catalog.ByID(4)
	if !ok || replacement.PlanName != domain.PlanDiet {
		t.Fatalf("fixture expects item 4 to be a Diet Plan item, got %+v", replacement)
	}

	req := jsonRequest("PATCH", "/v1/subscriptions/"+sub.ID+"/schedule", map[string]any{
		"swaps": []map[string]any{{
			"date":     target,
			"mealType": "Breakfast",
			"mealId":   replacement.ID,
		}},
	})
	req = asUser(req, ownerIdentity())
	req = withURLParam(req, "id", sub.ID)
	rr := httptest.NewRecorder()

	app.SubscriptionUpdateSchedule(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	got := decodeSubscriptionEnvelope(t, rr.Body)
	meal := got.Schedule[1].Meals[0]
	if meal.MealID != replacement.ID || meal.MealTitle != replacement.Title {
		t.Fatalf("expected swapped meal %d %q, got %+v", replacement.ID, replacement.Title, meal)
	}
	if len(sql.execCalls) != 1 || sql.execCalls[0].query != sqlinline.QUpdateSubscriptionSchedule {
		t.Fatalf("expected one schedule write, got %+v", sql.execCalls)
	}
}

func TestSubscriptionUpdateSchedule_WrongTierRejected(t *testing.T) {
	target := schedule.DateOnly(testNow).AddDate(0, 0, 7)
	sub := dietSubscription(domain.SubscriptionActive, dietDay(target, domain.DayActive))
	sql := &fakeSQL{
		queryRowFn: func(query string, args ...any) pgx.Row {
			return subscriptionScanRow(t, sub)
		},
	}
	app := newTestApp(sql)

	protein, ok := app.Catalog.FirstForPlan(domain.PlanProtein)
	if !ok {
		t.Fatalf("no protein item in catalog")
	}

	req := jsonRequest("PATCH", "/v1/subscriptions/"+sub.ID+"/schedule", map[string]any{
		"swaps": []map[string]any{{
			"date":     target,
			"mealType": "Breakfast",
			"mealId":   protein.ID,
		}},
	})
	req = asUser(req, ownerIdentity())
	req = withURLParam(req, "id", sub.ID)
	rr := httptest.NewRecorder()

	app.SubscriptionUpdateSchedule(rr, req)

	if rr.Code != 400 {
		t.Fatalf("unexpected status code: got %d, want 400", rr.Code)
	}
	if len(sql.execCalls) != 0 {
		t.Fatalf("expected no write on rejected swap, got %+v", sql.execCalls)
	}
}
