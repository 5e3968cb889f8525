package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social_dashboard/export"
	"social_dashboard/generator"
	"social_dashboard/platform"
	"social_dashboard/store"
)

// apiError is the body of every failed request. Code is set for AI
// assistant failures so the UI can show QUOTA_EXCEEDED or API_KEY_ERROR.
type apiError struct {
	Error string              `json:"error"`
	Code  generator.ErrorCode `json:"code,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, platform.ErrUnknownPlatform), errors.Is(err, store.ErrNotFound), errors.Is(err, errSessionNotFound), errors.Is(err, errJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalid), errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch generator.CodeOf(err) {
	case generator.CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case generator.CodeAPIKey:
		return http.StatusUnauthorized
	case generator.CodeProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusOf(err), apiError{Error: err.Error(), Code: generator.CodeOf(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Error: msg})
}

// writeAIError reports a failed generation. Failures that did not come from
// the provider itself, such as an unusable reply, count as provider errors.
func writeAIError(c *gin.Context, err error) {
	code := generator.CodeOf(err)
	status := statusOf(err)
	if code == "" && status == http.StatusInternalServerError {
		code = generator.CodeProvider
		status = http.StatusBadGateway
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, apiError{Error: err.Error(), Code: code})
}
