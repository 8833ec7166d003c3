package handlers

import (
	"net/http"
	"time"

	"server/internal/sqlinline"
)

type adminSubscriptionDTO struct {
	ID               string    `json:"id"`
	PlanName         string    `json:"planName"`
	TotalPrice       int64     `json:"totalPrice"`
	Status           string    `json:"status"`
	SubscriptionDate time.Time `json:"subscriptionDate"`
	UserFullName     string    `json:"userFullName"`
	UserEmail        string    `json:"userEmail"`
}

// AdminListSubscriptions returns every subscription joined with its owner,
// newest first.
func (a *App) AdminListSubscriptions(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QAdminListSubscriptions)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list subscriptions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list subscriptions")
		return
	}
	defer rows.Close()

	items := make([]adminSubscriptionDTO, 0)
	for rows.Next() {
		var dto adminSubscriptionDTO
		if err := rows.Scan(&dto.ID, &dto.PlanName, &dto.TotalPrice, &dto.Status, &dto.SubscriptionDate, &dto.UserFullName, &dto.UserEmail); err != nil {
			a.Logger.Error().Err(err).Msg("scan subscription row failed")
			continue
		}
		items = append(items, dto)
	}
	if err := rows.Err(); err != nil {
		a.Logger.Error().Err(err).Msg("iterate subscriptions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list subscriptions")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type dashboardStatsDTO struct {
	NewSubscriptions         int64 `json:"newSubscriptions"`
	TotalActiveSubscriptions int64 `json:"totalActiveSubscriptions"`
	MRR                      int64 `json:"mrr"`
}

// AdminStats serves the dashboard counters: total subscriptions, active
// subscriptions and monthly recurring revenue over active ones.
func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QAdminDashboardStats)
	var dto dashboardStatsDTO
	if err := row.Scan(&dto.NewSubscriptions, &dto.TotalActiveSubscriptions, &dto.MRR); err != nil {
		a.Logger.Error().Err(err).Msg("load dashboard stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, dto)
}
