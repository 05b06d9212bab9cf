package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const resendEndpoint = "https://api.resend.com/emails"

// mailTimeout bounds a single delivery attempt; a slow provider must not
// stall the contact form response.
const mailTimeout = 10 * time.Second

// Mailer delivers transactional email through the Resend HTTP API.
// A Mailer with an empty API key is disabled and reports every send as
// failed without a network call.
type Mailer struct {
	apiKey   string
	from     string
	client   *http.Client
	endpoint string
}

// NewMailer creates a Resend-backed mailer. Pass an empty apiKey to run
// with delivery disabled.
func NewMailer(apiKey, from string) *Mailer {
	return &Mailer{
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: mailTimeout},
		endpoint: resendEndpoint,
	}
}

// Enabled reports whether the mailer holds an API key.
func (m *Mailer) Enabled() bool {
	return m.apiKey != ""
}

// Email is a single outbound message.
type Email struct {
	To      []string
	Cc      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
}

// Send delivers one email. Callers treat errors as non-fatal: the
// contact flow persists the inquiry first and only annotates the
// response when delivery fails.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer disabled: no API key configured")
	}
	if len(email.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := resendRequest{
		From:    m.from,
		To:      email.To,
		Cc:      email.Cc,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	// Retries of the same submission must not double-send.
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr resendError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var sent resendResponse
	if err := json.Unmarshal(respBody, &sent); err != nil {
		slog.Warn("could not parse mail response, email was sent", "error", err)
	} else {
		slog.Info("email sent", "email_id", sent.ID, "subject", email.Subject)
	}

	return nil
}
