package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/mailer"
	"server/internal/middleware"
)

// testNow is a Monday; schedule fixtures key off its weekday.
var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

const (
	ownerEmail = "budi@example.com"
	ownerID    = "user-1"
)

func newTestApp(sql infra.SQLExecutor) *App {
	return &App{
		SQL:    sql,
		Logger: zerolog.Nop(),
		Config: &infra.Config{
			JWTSecret:  "test-secret",
			AppBaseURL: "http://localhost:3000",
		},
		Catalog: catalog.Default(),
		Mailer:  mailer.Noop{},
		Clock:   func() time.Time { return testNow },
	}
}

type sqlCall struct {
	query string
	args  []any
}

// fakeSQL implements infra.SQLExecutor for handler tests. Exec calls are
// always recorded; unset hooks answer with no rows.
type fakeSQL struct {
	queryRowFn func(query string, args ...any) pgx.Row
	queryFn    func(query string, args ...any) (pgx.Rows, error)
	execErr    error
	execCalls  []sqlCall
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execCalls = append(f.execCalls, sqlCall{query: query, args: args})
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if f.queryRowFn == nil {
		return NewSimpleRow(nil)
	}
	return f.queryRowFn(query, args...)
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if f.queryFn == nil {
		return nil, fmt.Errorf("unexpected query")
	}
	return f.queryFn(query, args...)
}

func jsonRequest(method, target string, body any) *http.Request {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		rd = bytes.NewReader(b)
	}
	return httptest.NewRequest(method, target, rd)
}

func asUser(r *http.Request, id middleware.Identity) *http.Request {
	return r.WithContext(middleware.ContextWithIdentity(r.Context(), id))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func ownerIdentity() middleware.Identity {
	return middleware.Identity{UserID: ownerID, Email: ownerEmail, Role: "user"}
}

// subscriptionScanRow fakes the ten-column subscription select.
func subscriptionScanRow(t *testing.T, sub domain.Subscription) SimpleRow {
	t.Helper()
	scheduleJSON, err := json.Marshal(sub.Schedule)
	if err != nil {
		t.Fatalf("marshal schedule fixture: %v", err)
	}
	return NewSimpleRow(func(dest ...any) error {
		if len(dest) != 10 {
			return fmt.Errorf("unexpected scan args: %d", len(dest))
		}
		*(dest[0].(*string)) = sub.ID
		*(dest[1].(*string)) = sub.UserEmail
		*(dest[2].(*string)) = sub.FullName
		*(dest[3].(*string)) = sub.PhoneNumber
		*(dest[4].(*string)) = sub.Allergies
		*(dest[5].(*domain.PlanName)) = sub.PlanName
		*(dest[6].(*int64)) = sub.TotalPrice
		*(dest[7].(*[]byte)) = scheduleJSON
		*(dest[8].(*domain.SubscriptionStatus)) = sub.Status
		*(dest[9].(*time.Time)) = sub.SubscriptionDate
		return nil
	})
}

func dietSubscription(status domain.SubscriptionStatus, days ...domain.DaySchedule) domain.Subscription {
	return domain.Subscription{
		ID:               "8e2f4d9a-1111-4222-8333-444455556666",
		UserEmail:        ownerEmail,
		FullName:         "Budi Santoso",
		PhoneNumber:      "+628123456789",
		PlanName:         domain.PlanDiet,
		TotalPrice:       516000,
		Schedule:         days,
		Status:           status,
		SubscriptionDate: testNow,
	}
}

func dietDay(date time.Time, status domain.DayStatus) domain.DaySchedule {
	return domain.DaySchedule{
		Date: date,
		Meals: []domain.MealAssignment{{
			MealType:  domain.MealBreakfast,
			MealID:    1,
			MealTitle: "Grilled Salmon Quinoa Bowl",
		}},
		Status: status,
	}
}

func decodeSubscriptionEnvelope(t *testing.T, body io.Reader) domain.Subscription {
	t.Helper()
	var payload struct {
		Success bool                `json:"success"`
		Data    domain.Subscription `json:"data"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success {
		t.Fatalf("expected success envelope")
	}
	return payload.Data
}

func decodeErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return payload.Error
}
