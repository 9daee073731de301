package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/crm-backend/internal/domain/aggregates"
	"github.com/yungbote/crm-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError picks the status for an error returned by a service
// query. Transport errors carry their own status; classified store errors map
// by code; anything else is a 500.
func RespondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		status := ae.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		RespondError(c, status, ae.Code, ae.Err)
		return
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeNotFound:
		RespondError(c, http.StatusNotFound, "not_found", err)
	case domainagg.CodeValidation:
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case domainagg.CodeConflict:
		RespondError(c, http.StatusConflict, "conflict", err)
	case domainagg.CodeRetryable:
		RespondError(c, http.StatusServiceUnavailable, "unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
