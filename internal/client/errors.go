package client

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	Field      string `json:"field,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("matstat: %d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("matstat: %d %s", e.StatusCode, e.Message)
}

// IsValidation reports whether the server rejected the input.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsUnauthorized reports a missing, invalid or expired token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func newAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if err := sonic.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}
