package apierror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesServerFields(t *testing.T) {
	body := []byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","param":"payment_method","message":"No such payment method"}}`)

	err := Parse(body, http.StatusNotFound, "req_123")
	require.NotNil(t, err)
	assert.Equal(t, TypeInvalidRequest, err.Type)
	assert.Equal(t, "resource_missing", err.Code)
	assert.Equal(t, "payment_method", err.Param)
	assert.Equal(t, "No such payment method", err.Message)
	assert.Equal(t, "req_123", err.RequestID)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestParseCardErrorOverridesStatusClassification(t *testing.T) {
	body := []byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card was declined"}}`)

	err := Parse(body, http.StatusPaymentRequired, "")
	assert.Equal(t, TypeCard, err.Type)
	assert.Equal(t, "insufficient_funds", err.DeclineCode)
}

func TestParseMalformedBody(t *testing.T) {
	err := Parse([]byte("<html>bad gateway</html>"), http.StatusBadGateway, "req_9")
	assert.Equal(t, TypeAPI, err.Type)
	assert.Equal(t, malformedResponseMessage, err.Message)

	err = Parse([]byte(`{"error":{}}`), http.StatusBadRequest, "")
	assert.Equal(t, malformedResponseMessage, err.Message)
}

func TestFromStatus(t *testing.T) {
	cases := map[int]Type{
		http.StatusUnauthorized:        TypeAuthentication,
		http.StatusForbidden:           TypePermission,
		http.StatusTooManyRequests:     TypeRateLimit,
		http.StatusBadRequest:          TypeInvalidRequest,
		http.StatusNotFound:            TypeInvalidRequest,
		http.StatusInternalServerError: TypeAPI,
	}
	for status, want := range cases {
		assert.Equal(t, want, FromStatus(status), "status %d", status)
	}
}

func TestErrorStringIncludesRequestID(t *testing.T) {
	err := &Error{Type: TypeAPI, Message: "server error", RequestID: "req_1"}
	assert.Equal(t, "api_error: server error (request-id: req_1)", err.Error())

	err.RequestID = ""
	assert.Equal(t, "api_error: server error", err.Error())
}
