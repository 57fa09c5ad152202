// Package relay carries the outcome of a confirmation/authentication
// attempt back to the original caller across a boundary that may
// outlive the orchestrator's process.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// OutcomeCode is the small-integer outcome carried across the relay
// boundary. The typed Outcome is reconstructed on the far side.
type OutcomeCode int

const (
	OutcomeUnknown OutcomeCode = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeCanceled
	OutcomeTimedOut
)

// SerializedError is the wire form of an error crossing the relay
// boundary.
type SerializedError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *SerializedError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return e.Message
}

// Payload is the result channel envelope: either an intent reference
// (client secret) with an outcome code, or an error. Exactly one is
// present; once constructed it is immutable.
type Payload struct {
	ID           string           `json:"id"`
	RequestCode  int              `json:"request_code"`
	ClientSecret string           `json:"client_secret,omitempty"`
	Outcome      OutcomeCode      `json:"outcome"`
	Err          *SerializedError `json:"error,omitempty"`
}

// ResultPayload builds a payload carrying an intent reference and an
// outcome.
func ResultPayload(id string, requestCode int, clientSecret string, outcome OutcomeCode) Payload {
	return Payload{
		ID:           id,
		RequestCode:  requestCode,
		ClientSecret: clientSecret,
		Outcome:      outcome,
	}
}

// ErrorPayload builds a payload carrying an error.
func ErrorPayload(id string, requestCode int, err error) Payload {
	return Payload{
		ID:          id,
		RequestCode: requestCode,
		Outcome:     OutcomeFailed,
		Err:         serializeError(err),
	}
}

func serializeError(err error) *SerializedError {
	var serialized *SerializedError
	if errors.As(err, &serialized) {
		return serialized
	}
	return &SerializedError{Message: err.Error()}
}

// Validate checks the exactly-one-of invariant.
func (p Payload) Validate() error {
	if p.Err != nil && p.ClientSecret != "" {
		return errors.New("relay payload carries both a result and an error")
	}
	if p.Err == nil && p.ClientSecret == "" {
		return errors.New("relay payload carries neither a result nor an error")
	}
	return nil
}

// Marshal renders the payload for storage or transport.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPayload decodes a stored payload.
func UnmarshalPayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("parse relay payload: %w", err)
	}
	return p, nil
}
