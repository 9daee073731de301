package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/crm-backend/internal/domain/aggregates"
	"github.com/yungbote/crm-backend/internal/platform/apierr"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"apierr", apierr.New(http.StatusBadRequest, "INVALID_ID_FORMAT", errors.New("malformed id")), http.StatusBadRequest, "INVALID_ID_FORMAT"},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "order.get", "missing", nil), http.StatusNotFound, "not_found"},
		{"retryable", domainagg.NewError(domainagg.CodeRetryable, "order.list", "locked", nil), http.StatusServiceUnavailable, "unavailable"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondServiceError(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message == "" {
				t.Fatalf("unexpected envelope: %+v", env)
			}
		})
	}
}
