package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsContactFields(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "")
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("customer created", "email", "alice@example.com", "phone", "+11234567890", "name", "Alice")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "[REDACTED]" {
		t.Fatalf("email not redacted: %v", fields["email"])
	}
	if fields["phone"] != "[REDACTED]" {
		t.Fatalf("phone not redacted: %v", fields["phone"])
	}
	if fields["name"] != "Alice" {
		t.Fatalf("name should pass through: %v", fields["name"])
	}
}

func TestHashesCustomerID(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "true")
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).With("component", "test")

	log.Info("lookup", "customer_id", "1f0c6d8e-0000-4000-8000-000000000001")

	got, _ := logs.All()[0].ContextMap()["customer_id"].(string)
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hashed value: %q", got)
	}
}

func TestRedactionCanBeDisabled(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "off")
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("reminder", "customer_email", "bob@example.com")

	if got := logs.All()[0].ContextMap()["customer_email"]; got != "bob@example.com" {
		t.Fatalf("expected raw email, got %v", got)
	}
}

func TestNewFileWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.log")
	log, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	log.Info("CRM is alive.", "api_status", "responsive")
	log.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, `"msg":"CRM is alive."`) || !strings.Contains(line, `"api_status":"responsive"`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestNewFileRequiresPath(t *testing.T) {
	if _, err := NewFile("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
