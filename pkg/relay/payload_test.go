package relay

import (
	"errors"
	"testing"
)

func TestValidateRequiresExactlyOneVariant(t *testing.T) {
	result := ResultPayload("p1", 50000, "pi_1_secret_2", OutcomeSucceeded)
	if err := result.Validate(); err != nil {
		t.Fatalf("result payload should be valid: %v", err)
	}

	errPayload := ErrorPayload("p2", 50000, errors.New("boom"))
	if err := errPayload.Validate(); err != nil {
		t.Fatalf("error payload should be valid: %v", err)
	}

	both := result
	both.Err = &SerializedError{Message: "boom"}
	if err := both.Validate(); err == nil {
		t.Fatal("payload with result and error should be invalid")
	}

	neither := Payload{ID: "p3", RequestCode: 50000}
	if err := neither.Validate(); err == nil {
		t.Fatal("payload with neither variant should be invalid")
	}
}

func TestErrorPayloadPreservesSerializedError(t *testing.T) {
	original := &SerializedError{Type: "card_error", Code: "card_declined", Message: "declined"}
	payload := ErrorPayload("p1", 50000, original)
	if payload.Err != original {
		t.Fatalf("expected serialized error to pass through, got %+v", payload.Err)
	}
	if payload.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %d", payload.Outcome)
	}
}

func TestPayloadSurvivesStorage(t *testing.T) {
	payload := ErrorPayload("p9", 50000, errors.New("challenge engine unavailable"))
	body, err := payload.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalPayload(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "p9" || got.Err == nil || got.Err.Message != "challenge engine unavailable" {
		t.Fatalf("payload did not survive storage: %+v", got)
	}
}
