package ai

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

var (
	ErrMissingAPIKey = errors.New("ai api key is not configured")
	ErrUnauthorized  = errors.New("ai provider rejected the credentials")
	ErrRateLimited   = errors.New("ai provider rate limited")
	ErrUnavailable   = errors.New("ai provider unavailable")
	ErrEmptyResponse = errors.New("ai provider returned an empty response")
)

// IsUpstream reports whether err came from the AI provider rather than from
// the caller's input.
func IsUpstream(err error) bool {
	for _, target := range []error{ErrMissingAPIKey, ErrUnauthorized, ErrRateLimited, ErrUnavailable, ErrEmptyResponse} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusError maps an HTTP status from a provider to a sentinel, or nil for
// 2xx.
func statusError(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return ErrUnavailable
	case code < 200 || code >= 300:
		return ErrUnavailable
	}
	return nil
}

// classifyGenAIError wraps genai failures with the matching sentinel so
// callers can branch with errors.Is.
func classifyGenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := statusError(apiErr.Code); sentinel != nil {
			return errors.Join(sentinel, err)
		}
	}
	s := err.Error()
	switch {
	case strings.Contains(s, "429"), strings.Contains(s, "RESOURCE_EXHAUSTED"), strings.Contains(s, "quota"):
		return errors.Join(ErrRateLimited, err)
	case strings.Contains(s, "API key not valid"), strings.Contains(s, "PERMISSION_DENIED"), strings.Contains(s, "UNAUTHENTICATED"):
		return errors.Join(ErrUnauthorized, err)
	}
	return errors.Join(ErrUnavailable, err)
}
