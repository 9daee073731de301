package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := New(log, Config{APIKey: "key", BaseURL: srv.URL, FromEmail: "crm@example.com", FromName: "CRM"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSendBuildsMailRequest(t *testing.T) {
	var got mailSendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("X-Message-Id", "abc")
		w.WriteHeader(http.StatusAccepted)
	})

	res, err := c.Send(context.Background(), Message{
		To:      Address{Email: " ann@example.com ", Name: "Ann"},
		Subject: "Your recent order",
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.StatusCode != http.StatusAccepted || res.MessageID != "abc" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got.From.Email != "crm@example.com" || got.Personalizations[0].To[0].Email != "ann@example.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Content[0].Type != "text/plain" || got.Content[0].Value != "hello" {
		t.Fatalf("unexpected content: %+v", got.Content)
	}
}

func TestSendReportsAPIErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid from address"}]}`))
	})

	_, err := c.Send(context.Background(), Message{To: Address{Email: "a@b.co"}, Subject: "s", Text: "t"})
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusBadRequest || he.Message != "invalid from address" {
		t.Fatalf("unexpected error: %+v", he)
	}
	if calls != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls)
	}
}

func TestSendValidatesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	if _, err := c.Send(context.Background(), Message{Subject: "s", Text: "t"}); err == nil {
		t.Fatalf("expected missing recipient error")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{APIKey: "k"}).Enabled() {
		t.Fatalf("from address is required")
	}
	if _, err := New(nil, Config{APIKey: "k", FromEmail: "a@b.co"}); err == nil {
		t.Fatalf("expected logger error")
	}
}
