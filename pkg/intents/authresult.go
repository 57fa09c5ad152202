package intents

import (
	"encoding/json"
	"fmt"
)

// AuthParams is the request body for starting 3DS2 authentication of a
// source. It combines the fingerprint's source with values produced by
// the challenge engine for one attempt, and is discarded afterwards.
type AuthParams struct {
	SourceID           string `json:"source"`
	SDKAppID           string `json:"app_id"`
	SDKReferenceNumber string `json:"source_reference_number"`
	SDKTransactionID   string `json:"sdk_transaction_id"`
	DeviceData         string `json:"device_render_options"`
	SDKEphemeralKey    string `json:"sdk_ephemeral_public_key"`
	MessageVersion     string `json:"message_version"`
	TimeoutMinutes     int    `json:"timeout"`
}

// ARes is the access control server's response to starting 3DS2
// authentication, carrying the challenge parameters when one is
// mandated.
type ARes struct {
	ThreeDSServerTransID string `json:"threeDSServerTransID"`
	ACSChallengeMandated string `json:"acsChallengeMandated"`
	ACSSignedContent     string `json:"acsSignedContent"`
	ACSTransID           string `json:"acsTransID"`
	ACSURL               string `json:"acsURL"`
	MessageVersion       string `json:"messageVersion"`
	SDKTransID           string `json:"sdkTransID"`
}

const aresChallengeMandatedYes = "Y"

// ShouldChallenge reports whether the ACS mandated an in-app challenge.
func (a *ARes) ShouldChallenge() bool {
	return a.ACSChallengeMandated == aresChallengeMandatedYes
}

// ThreeDS2Error is the structured error variant of an authentication
// result.
type ThreeDS2Error struct {
	Code        string `json:"error_code"`
	Detail      string `json:"error_detail"`
	Description string `json:"error_description"`
	Component   string `json:"error_component"`
}

// Message assembles the error fields into a single descriptive string.
func (e *ThreeDS2Error) Message() string {
	return fmt.Sprintf("Code: %s, Detail: %s, Description: %s, Component: %s",
		e.Code, e.Detail, e.Description, e.Component)
}

// AuthResult is the server response to starting 3DS2 authentication.
// Exactly one of the variants reported by its State accessors holds:
// challenge-required, frictionless, fallback-redirect or error.
type AuthResult struct {
	ID                  string         `json:"id"`
	Ares                *ARes          `json:"ares,omitempty"`
	Source              string         `json:"source"`
	State               string         `json:"state"`
	LiveMode            bool           `json:"livemode"`
	FallbackRedirectURL string         `json:"fallback_redirect_url,omitempty"`
	Error               *ThreeDS2Error `json:"error,omitempty"`
}

// ParseAuthResult decodes a start-auth response body.
func ParseAuthResult(body []byte) (*AuthResult, error) {
	var result AuthResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse 3ds2 auth result: %w", err)
	}
	return &result, nil
}
