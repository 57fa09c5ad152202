// Package apierror defines the typed errors surfaced by the Meridian API
// and the parsing of wire error envelopes into them.
package apierror

import (
	"fmt"
	"net/http"
)

// Type classifies an API error by the server-reported error type.
type Type string

const (
	TypeInvalidRequest Type = "invalid_request_error"
	TypeAuthentication Type = "authentication_error"
	TypeCard           Type = "card_error"
	TypePermission     Type = "permission_error"
	TypeRateLimit      Type = "rate_limit_error"
	TypeAPI            Type = "api_error"
	TypeConnection     Type = "connection_error"
)

// Error is an error returned by the Meridian API or the transport beneath
// it. Server-provided fields are preserved verbatim.
type Error struct {
	Type        Type
	Code        string
	Param       string
	DeclineCode string
	Message     string
	RequestID   string
	StatusCode  int
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (request-id: %s)", e.Type, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Connection wraps a transport-level failure (connectivity, malformed
// response). These are never retried by the SDK.
func Connection(err error) *Error {
	return &Error{
		Type:    TypeConnection,
		Message: err.Error(),
	}
}

// FromStatus classifies an HTTP status code into an error type the way
// the API documents its responses: 401 authentication, 403 permission,
// 429 rate limit, other 4xx invalid request, everything else api_error.
// Card errors carry their own type in the wire envelope and override this.
func FromStatus(status int) Type {
	switch {
	case status == http.StatusUnauthorized:
		return TypeAuthentication
	case status == http.StatusForbidden:
		return TypePermission
	case status == http.StatusTooManyRequests:
		return TypeRateLimit
	case status >= 400 && status < 500:
		return TypeInvalidRequest
	default:
		return TypeAPI
	}
}
