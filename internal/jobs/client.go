package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/crm-backend/internal/platform/httpx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

// Client calls the CRM HTTP API on behalf of background jobs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryBase  time.Duration
	retryMax   time.Duration
	log        *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retries:   cfg.Retries,
		retryBase: cfg.RetryBase,
		retryMax:  cfg.RetryMax,
		log:       log.With("component", "CRMClient"),
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ProductView struct {
	ID       string `json:"id"`
	GlobalID string `json:"global_id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
}

type CustomerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderView struct {
	ID          string         `json:"id"`
	GlobalID    string         `json:"global_id"`
	Customer    *CustomerView  `json:"customer"`
	Products    []*ProductView `json:"products"`
	TotalAmount string         `json:"total_amount"`
	OrderDate   time.Time      `json:"order_date"`
}

type RestockResponse struct {
	UpdatedProducts []ProductView `json:"updated_products"`
	Message         string        `json:"message"`
	Success         bool          `json:"success"`
	Errors          []FieldError  `json:"errors"`
}

type SummaryResponse struct {
	TotalCustomers int64  `json:"total_customers"`
	TotalProducts  int64  `json:"total_products"`
	TotalOrders    int64  `json:"total_orders"`
	TotalRevenue   string `json:"total_revenue"`
}

// Healthcheck returns the body of GET /healthcheck.
func (c *Client) Healthcheck(ctx context.Context) (string, error) {
	var body string
	err := c.do(ctx, http.MethodGet, "/healthcheck", func(raw []byte) error {
		body = strings.TrimSpace(string(raw))
		return nil
	})
	return body, err
}

func (c *Client) RestockLowStock(ctx context.Context) (*RestockResponse, error) {
	var out RestockResponse
	if err := c.do(ctx, http.MethodPost, "/api/products/low-stock/restock", decodeInto(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summary(ctx context.Context) (*SummaryResponse, error) {
	var out SummaryResponse
	if err := c.do(ctx, http.MethodGet, "/api/reports/summary", decodeInto(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrdersSince lists orders placed at or after since.
func (c *Client) OrdersSince(ctx context.Context, since time.Time) ([]OrderView, error) {
	q := url.Values{}
	q.Set("order_date_from", since.UTC().Format(time.RFC3339))
	var out struct {
		Orders []OrderView `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders?"+q.Encode(), decodeInto(&out)); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func decodeInto(v any) func([]byte) error {
	return func(raw []byte) error {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return nil
	}
}

// do sends one request, retrying transport errors and retryable statuses up
// to c.retries extra times.
func (c *Client) do(ctx context.Context, method, path string, decode func([]byte) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		resp, body, err := c.send(ctx, method, path)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return decode(body)
		}
		if err == nil {
			err = &httpx.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		lastErr = err
		if !httpx.IsRetryableError(err) || attempt == c.retries {
			break
		}

		wait := httpx.JitterSleep(httpx.Backoff(attempt, c.retryBase, c.retryMax))
		if resp != nil {
			wait = httpx.RetryAfterDuration(resp, wait, c.retryMax)
		}
		c.log.Warn("CRM request failed; retrying", "method", method, "path", path, "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s %s: %w", method, path, lastErr)
}

func (c *Client) send(ctx context.Context, method, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp, raw, nil
}
