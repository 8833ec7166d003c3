package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/sqlinline"
)

const resetTokenTTL = time.Hour

// neutralResetMessage is returned whether or not the account exists, so the
// endpoint cannot be used to enumerate registered emails.
const neutralResetMessage = "If an account with that email exists, a reset link has been sent."

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (a *App) PasswordForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email is required")
		return
	}

	token, hashed, err := newResetToken()
	if err != nil {
		a.Logger.Error().Err(err).Msg("generate reset token failed")
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
		return
	}

	expires := a.now().Add(resetTokenTTL)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSetResetToken, email, hashed, expires)
	var userID string
	if err := row.Scan(&userID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			a.Logger.Error().Err(err).Msg("store reset token failed")
		}
		// Unknown email gets the same answer as a known one.
		a.json(w, http.StatusOK, map[string]string{"message": neutralResetMessage})
		return
	}

	resetURL := strings.TrimRight(a.Config.AppBaseURL, "/") + "/auth/reset-password?token=" + token

	// Delivery is fire-and-forget; a mail failure must not fail the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.Mailer.SendPasswordReset(ctx, email, resetURL); err != nil {
			a.Logger.Error().Err(err).Str("email", email).Msg("send reset email failed")
		}
	}()

	a.json(w, http.StatusOK, map[string]string{"message": neutralResetMessage})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (a *App) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Token == "" || len(req.Password) < minPasswordLength {
		a.error(w, http.StatusBadRequest, "bad_request", "token and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "reset failed")
		return
	}

	hashedToken := hashResetToken(req.Token)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QResetPassword, hashedToken, string(hash))
	var userID string
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.domainError(w, domain.ErrTokenInvalid)
			return
		}
		a.Logger.Error().Err(err).Msg("reset password failed")
		a.error(w, http.StatusInternalServerError, "internal", "reset failed")
		return
	}

	a.json(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully."})
}

// newResetToken returns the raw token for the email link and its sha256 hex
// digest for storage. Only the digest ever touches the database.
func newResetToken() (token, hashed string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(raw)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
