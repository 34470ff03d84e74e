package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/logger"
)

const sendEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Message is a single outbound email.
type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Mailer is the sending surface services depend on.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Client delivers mail through the Sendgrid HTTP API.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	defaultFrom string
}

// NewClient builds a Sendgrid-backed mailer from configuration.
func NewClient(cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, errors.New("sendgrid from email is required")
	}
	if logg != nil {
		logg.Info(context.Background(), "sendgrid mailer initialized")
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		endpoint:    sendEndpoint,
		apiKey:      cfg.APIKey,
		defaultFrom: cfg.DefaultFrom,
	}, nil
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridPayload struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendgridContent `json:"content"`
}

// Send posts the message to Sendgrid. Content order matters: plain text
// must precede html in the content array.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.httpClient == nil {
		return errors.New("mailer not initialized")
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return errors.New("subject is required")
	}
	if msg.PlainText == "" && msg.HTML == "" {
		return errors.New("message body is required")
	}

	payload := sendgridPayload{
		From:    sendgridAddress{Email: c.defaultFrom},
		Subject: msg.Subject,
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []sendgridAddress `json:"to"`
	}{To: []sendgridAddress{{Email: msg.To, Name: msg.ToName}}})

	if msg.PlainText != "" {
		payload.Content = append(payload.Content, sendgridContent{Type: "text/plain", Value: msg.PlainText})
	}
	if msg.HTML != "" {
		payload.Content = append(payload.Content, sendgridContent{Type: "text/html", Value: msg.HTML})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("sendgrid returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("sendgrid returned %s", resp.Status)
	}
	return nil
}
