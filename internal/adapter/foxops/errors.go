package foxops

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// APIError is a non-2xx response from the foxops API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("foxops API error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes onto the port sentinels so callers can
// use errors.Is without knowing about HTTP.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return port.ErrIncarnationNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return port.ErrUnauthorized
	}
	return nil
}

// newAPIError extracts a readable message from a foxops error body, which is
// either {"message": "..."} or a FastAPI {"detail": ...} payload.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case len(payload.Detail) > 0:
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				msg = detail
			} else {
				msg = string(payload.Detail)
			}
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
