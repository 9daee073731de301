package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/crm-backend/internal/platform/envutil"
	"github.com/yungbote/crm-backend/internal/platform/httpx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

// Client delivers plain-text mail through the SendGrid v3 API.
type Client interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:    envutil.String("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
		FromEmail:  envutil.String("SENDGRID_FROM_EMAIL", ""),
		FromName:   envutil.String("SENDGRID_FROM_NAME", "CRM"),
		Timeout:    envutil.Duration("SENDGRID_TIMEOUT", 30*time.Second),
		MaxRetries: envutil.Int("SENDGRID_MAX_RETRIES", 3),
	}
}

// Enabled reports whether enough is configured to send mail.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.FromEmail) != ""
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sendgrid: SENDGRID_API_KEY and SENDGRID_FROM_EMAIL required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	To         Address
	Subject    string
	Text       string
	Categories []string
}

type Result struct {
	StatusCode int
	MessageID  string
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

type personalization struct {
	To []Address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, msg Message) (*Result, error) {
	msg.To.Email = strings.TrimSpace(msg.To.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Text = strings.TrimSpace(msg.Text)
	switch {
	case msg.To.Email == "":
		return nil, fmt.Errorf("sendgrid: recipient required")
	case msg.Subject == "":
		return nil, fmt.Errorf("sendgrid: subject required")
	case msg.Text == "":
		return nil, fmt.Errorf("sendgrid: text required")
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: []Address{msg.To}}},
		From:             Address{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/plain", Value: msg.Text}},
		Categories:       msg.Categories,
	}
	resp, err := c.do(ctx, "/v3/mail/send", wire)
	if err != nil {
		return nil, err
	}
	return &Result{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) do(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		resp, err := c.doOnce(ctx, path, payload)
		if err == nil {
			return resp, nil
		}
		if !httpx.IsRetryableError(err) || attempt >= c.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("Sendgrid request retrying", "path", path, "attempt", attempt+1, "sleep", sleepFor.String(), "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func (c *client) doOnce(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 {
			he.Message = er.Errors[0].Message
		}
		return resp, he
	}
	return resp, nil
}
