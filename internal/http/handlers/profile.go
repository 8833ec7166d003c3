package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/sqlinline"
)

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByID, id.UserID)
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.domainError(w, domain.ErrNotFound)
			return
		}
		a.Logger.Error().Err(err).Msg("select user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}

	a.json(w, http.StatusOK, userProfileDTO{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
	})
}

type updateProfileRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "fullName is required")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateUserProfile, id.UserID, req.FullName, strings.TrimSpace(req.PhoneNumber))
	var dto userProfileDTO
	if err := row.Scan(&dto.ID, &dto.FullName, &dto.Email, &dto.PhoneNumber, &dto.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.domainError(w, domain.ErrNotFound)
			return
		}
		a.Logger.Error().Err(err).Msg("update profile failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update profile")
		return
	}

	a.json(w, http.StatusOK, dto)
}
