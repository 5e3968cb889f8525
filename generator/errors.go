package generator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"google.golang.org/genai"
)

// ErrorCode is the provider failure category shown to users verbatim.
type ErrorCode string

const (
	CodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	CodeAPIKey        ErrorCode = "API_KEY_ERROR"
	CodeProvider      ErrorCode = "PROVIDER_ERROR"
)

// ProviderError wraps a failed model call with its category.
type ProviderError struct {
	Provider string
	Code     ErrorCode
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Code, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CodeOf returns the category of err, or "" when err did not come from a provider.
func CodeOf(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func classify(status int, detail string) ErrorCode {
	switch status {
	case http.StatusTooManyRequests:
		return CodeQuotaExceeded
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeAPIKey
	}
	d := strings.ToLower(detail)
	switch {
	case strings.Contains(d, "quota"), strings.Contains(d, "resource_exhausted"), strings.Contains(d, "rate limit"):
		return CodeQuotaExceeded
	case strings.Contains(d, "api key"), strings.Contains(d, "api_key"), strings.Contains(d, "permission_denied"), strings.Contains(d, "unauthenticated"):
		return CodeAPIKey
	}
	return CodeProvider
}

func openAIError(err error) error {
	var code ErrorCode
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code = classify(apiErr.StatusCode, apiErr.Code+" "+apiErr.Type+" "+apiErr.Message)
	} else {
		code = classify(0, err.Error())
	}
	return &ProviderError{Provider: "openai", Code: code, Err: err}
}

func geminiError(err error) error {
	var code ErrorCode
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		code = classify(apiErr.Code, apiErr.Status+" "+apiErr.Message)
	} else {
		code = classify(0, err.Error())
	}
	return &ProviderError{Provider: "gemini", Code: code, Err: err}
}
