// Package intents models payment and setup intents, their next actions
// and the parameters exchanged while confirming and authenticating them.
package intents

import (
	"encoding/json"
	"fmt"
)

// Status is the server-side lifecycle status of an intent.
type Status string

const (
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusRequiresConfirmation  Status = "requires_confirmation"
	StatusRequiresAction        Status = "requires_action"
	StatusProcessing            Status = "processing"
	StatusRequiresCapture       Status = "requires_capture"
	StatusSucceeded             Status = "succeeded"
	StatusCanceled              Status = "canceled"
)

// Terminal reports whether the status can no longer change without
// further client action.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusCanceled, StatusRequiresCapture:
		return true
	}
	return false
}

// Intent is a payment or setup intent as returned by the API. It is an
// immutable value; authentication never mutates it, a fresh retrieval
// supersedes it.
type Intent struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	ClientSecret string `json:"client_secret"`
	Status       Status `json:"status"`
	LiveMode     bool   `json:"livemode"`

	NextAction *NextAction `json:"next_action,omitempty"`
}

// RequiresAction reports whether the server is waiting on the client to
// perform the intent's next action.
func (i *Intent) RequiresAction() bool {
	return i.Status == StatusRequiresAction
}

// NextActionType identifies the kind of action the server requests.
type NextActionType string

const (
	NextActionRedirectToURL NextActionType = "redirect_to_url"
	NextActionUseSDK        NextActionType = "use_sdk"
)

// NextAction is the server-specified instruction for what the client
// must do before the intent can proceed. Exactly the variant matching
// Type is populated.
type NextAction struct {
	Type          NextActionType `json:"type"`
	RedirectToURL *RedirectData  `json:"redirect_to_url,omitempty"`
	UseSDK        *SDKData       `json:"use_sdk,omitempty"`
}

// RedirectData carries the browser-based (3DS1 style) authentication
// URLs.
type RedirectData struct {
	URL       string `json:"url"`
	ReturnURL string `json:"return_url,omitempty"`
}

// SDKData is the type-discriminated payload of an SDK-driven next
// action. Only the 3DS2 fingerprint type is understood; other types are
// routed as unsupported.
type SDKData struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

const sdkTypeThreeDS2Fingerprint = "three_d_secure_2_fingerprint"

// Is3DS2 reports whether the SDK data describes a 3DS2 challenge
// fingerprint.
func (d *SDKData) Is3DS2() bool {
	return d != nil && d.Type == sdkTypeThreeDS2Fingerprint
}

// UnmarshalJSON keeps the raw payload alongside the discriminator so the
// fingerprint can be decoded lazily, once the type is known.
func (d *SDKData) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("parse sdk data: %w", err)
	}
	d.Type = head.Type
	d.Raw = append(d.Raw[:0], data...)
	return nil
}

// ParseIntent decodes an intent from an API response body.
func ParseIntent(body []byte) (*Intent, error) {
	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("parse intent: %w", err)
	}
	return &intent, nil
}
