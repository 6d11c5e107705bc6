package novelapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// APIError is returned for any non-2xx response from the Novel API
type APIError struct {
	StatusCode        int               `json:"-"`
	Status            int               `json:"status"`
	Message           string            `json:"message"`
	Errors            map[string]string `json:"errors,omitempty"`
	RetryAfterSeconds int64             `json:"retryAfterSeconds,omitempty"`
	Body              []byte            `json:"-"`
	// TokenSent is set when the failed request carried a bearer token
	TokenSent bool `json:"-"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for field := range e.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, field+": "+e.Errors[field])
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("novel api error %d: %s", e.StatusCode, msg)
}

func newAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: body}
	if resp.Request != nil {
		apiErr.TokenSent = resp.Request.Header.Get("Authorization") != ""
	}
	// Non-JSON bodies (proxies, HTML error pages) keep only the status code.
	_ = json.Unmarshal(body, apiErr)
	return apiErr
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 from the API
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsSessionRejected reports whether the backend refused the bearer token the
// request carried. The backend's security filter answers a bad token with a
// bare 403 and no body, while handler-level denials always carry JSON.
func IsSessionRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.TokenSent {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.bareForbidden()
}

// IsLoginRequired reports whether logging in (again) could make the call
// succeed: a 401, or a bare 403 whether or not a token was sent.
func IsLoginRequired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.bareForbidden()
}

func (e *APIError) bareForbidden() bool {
	return e.StatusCode == http.StatusForbidden && len(bytes.TrimSpace(e.Body)) == 0
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
