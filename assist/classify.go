package assist

import (
	"errors"
	"net/http"
	"strings"
)

// errEmptyOutput marks a primary attempt that succeeded without any text.
var errEmptyOutput = errors.New("empty output")

// isContextLength reports whether err says the prompt exceeds the model's
// context window.
func isContextLength(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == "context_length_exceeded" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "maximum context length")
}

// isInvalidRequest reports whether the server rejected the request itself.
func isInvalidRequest(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest ||
		apiErr.StatusCode == http.StatusUnprocessableEntity ||
		apiErr.Type == "invalid_request_error"
}

// namesTokenParam reports whether err complains about the token budget
// field, which is the cue to retry with the legacy max_tokens.
func namesTokenParam(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Param == "max_tokens" || apiErr.Param == "max_completion_tokens") {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "max_tokens") ||
		strings.Contains(msg, "max_completion_tokens") ||
		strings.Contains(msg, "unsupported parameter")
}

// errorMessage returns the server's message when there is one, so details
// shown to users carry no transport noise.
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
