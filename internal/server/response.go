package server

import (
	"context"
	"errors"
	"net/http"

	"aulaplan/internal/ai"
	"aulaplan/internal/editor"
	"aulaplan/internal/planning"
	"aulaplan/internal/sda"
	"aulaplan/internal/storage"
	"aulaplan/internal/wizard"

	"github.com/gin-gonic/gin"
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

// statusFor maps service errors to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, editor.ErrSectionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, wizard.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, planning.ErrInvalidContext):
		return http.StatusBadRequest, "invalid_context"
	case errors.Is(err, editor.ErrNotLearningSituation):
		return http.StatusBadRequest, "not_learning_situation"
	case errors.Is(err, sda.ErrActivityIndex):
		return http.StatusBadRequest, "invalid_activity_index"
	case errors.Is(err, wizard.ErrEmptyInstructions), errors.Is(err, wizard.ErrEmptyUpload):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ai.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "ai_not_configured"
	case errors.Is(err, ai.ErrUnauthorized):
		return http.StatusBadGateway, "upstream_unauthorized"
	case errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests, "upstream_rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case ai.IsUpstream(err):
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "code", code, "error", err)
	}
	RespondError(c, status, code, err)
}
