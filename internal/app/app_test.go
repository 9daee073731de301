package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWiresSQLiteApp(t *testing.T) {
	t.Setenv("LOG_MODE", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "crm.db"))
	t.Setenv("EVENT_BUS", "none")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("OTEL_ENABLED", "false")

	a, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)

	if a.DB.Driver() != "sqlite" {
		t.Fatalf("unexpected driver: %s", a.DB.Driver())
	}

	body := strings.NewReader(`{"name":"Alice","email":"alice@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/customers", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("create customer through app: %d %s", rec.Code, rec.Body.String())
	}

	summary, err := a.Services.Report.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalCustomers != 1 {
		t.Fatalf("expected 1 customer, got %d", summary.TotalCustomers)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := New(context.Background()); err == nil {
		t.Fatalf("expected config error")
	}
}
