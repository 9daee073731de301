package jobs

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/crm-backend/internal/platform/logger"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	cfg.Retries = 2
	cfg.RetryBase = time.Millisecond
	cfg.RetryMax = 5 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(testConfig(srv.URL), testLogger(t))
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

// fileSink returns a file logger and a function reading back its entries.
func fileSink(t *testing.T) (*logger.Logger, func() []map[string]any) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.log")
	out, err := logger.NewFile(path)
	require.NoError(t, err)
	return out, func() []map[string]any {
		out.Sync()
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		var entries []map[string]any
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			var e map[string]any
			require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
			entries = append(entries, e)
		}
		require.NoError(t, sc.Err())
		return entries
	}
}

func messages(entries []map[string]any) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		msg, _ := e["msg"].(string)
		out = append(out, msg)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
