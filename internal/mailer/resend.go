package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Mailer delivers transactional email. Callers treat delivery as
// fire-and-forget; a failed send must not fail the surrounding request.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// ResendOptions configures the Resend API client.
type ResendOptions struct {
	BaseURL    string
	APIKey     string
	From       string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Resend sends email through the Resend HTTP API.
type Resend struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
}

// NewResend builds a Resend client. When the API key is empty a no-op mailer
// is returned instead, so local development works without credentials.
func NewResend(opts ResendOptions) Mailer {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Noop{}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.resend.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Resend{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
		from:       opts.From,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendPasswordReset emails a reset link that expires in one hour.
func (r *Resend) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	payload := resendRequest{
		From:    r.from,
		To:      []string{to},
		Subject: "Reset Your Password",
		HTML: fmt.Sprintf(
			`<p>You requested a password reset. Click the link below to reset your password:</p><p><a href=%q>Reset Password</a></p><p>This link will expire in one hour.</p>`,
			resetURL,
		),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mailer: resend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// Noop discards all outgoing email.
type Noop struct{}

func (Noop) SendPasswordReset(context.Context, string, string) error { return nil }
