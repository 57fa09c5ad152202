// Package threeds2 defines the surface of the 3-D Secure 2 transaction
// engine consumed by the orchestrator. The engine itself is a black
// box: it renders the challenge UI and reports one terminal event.
package threeds2

import (
	"context"
	"time"
)

// TransactionStatusYes is the transaction status value meaning the
// cardholder authenticated successfully.
const TransactionStatusYes = "Y"

// AuthRequestParams are the engine-produced values included in the
// start-auth request for one attempt.
type AuthRequestParams struct {
	SDKAppID           string
	SDKReferenceNumber string
	SDKTransactionID   string
	DeviceData         string
	SDKEphemeralKey    string
	MessageVersion     string
}

// ChallengeParameters configure a challenge from the ARes.
type ChallengeParameters struct {
	ThreeDSServerTransactionID string
	ACSTransactionID           string
	ACSSignedContent           string
}

// CompletionEvent is the terminal event of a completed challenge.
type CompletionEvent struct {
	SDKTransactionID  string
	TransactionStatus string
}

// ErrorMessage is the structured protocol error reported by the ACS.
type ErrorMessage struct {
	TransactionID    string
	ErrorCode        string
	ErrorDescription string
	ErrorDetails     string
}

// ProtocolErrorEvent is the terminal event of a challenge that failed
// at the protocol level.
type ProtocolErrorEvent struct {
	SDKTransactionID string
	ErrorMessage     ErrorMessage
}

// RuntimeErrorEvent is the terminal event of a challenge aborted by an
// engine runtime failure.
type RuntimeErrorEvent struct {
	ErrorCode    string
	ErrorMessage string
}

// StatusReceiver receives exactly one terminal callback per challenge.
type StatusReceiver interface {
	Completed(event CompletionEvent)
	Cancelled()
	TimedOut()
	ProtocolError(event ProtocolErrorEvent)
	RuntimeError(event RuntimeErrorEvent)
}

// UIType identifies the kind of challenge UI initially presented.
type UIType string

const (
	UITypeNone         UIType = "none"
	UITypeText         UIType = "text"
	UITypeSingleSelect UIType = "single_select"
	UITypeMultiSelect  UIType = "multi_select"
	UITypeOOB          UIType = "oob"
	UITypeHTML         UIType = "html"
)

// UITypeFromCode maps the protocol's two-digit UI type codes to a
// UIType.
func UITypeFromCode(code string) UIType {
	switch code {
	case "01":
		return UITypeText
	case "02":
		return UITypeSingleSelect
	case "03":
		return UITypeMultiSelect
	case "04":
		return UITypeOOB
	case "05":
		return UITypeHTML
	default:
		return UITypeNone
	}
}

// Transaction is one engine-side 3DS2 transaction.
type Transaction interface {
	// AuthenticationRequestParameters returns the device fingerprint,
	// ephemeral key and identifiers for the start-auth request.
	AuthenticationRequestParameters() AuthRequestParams

	// DoChallenge invokes the challenge UI and reports one terminal
	// event to receiver, or a timeout after the given duration.
	DoChallenge(ctx context.Context, params ChallengeParameters, receiver StatusReceiver, timeout time.Duration)

	// InitialUIType is the UI type first shown to the customer. Valid
	// once the challenge has been presented.
	InitialUIType() UIType
}

// DirectoryServerKeys is the certificate material handed to the engine
// when creating a transaction.
type DirectoryServerKeys struct {
	RootCerts []string
	PublicKey string
	KeyID     string
}

// Service creates transactions against a directory server.
type Service interface {
	CreateTransaction(directoryServerID, messageVersion string, liveMode bool,
		directoryServerName string, keys DirectoryServerKeys) (Transaction, error)
}

// MessageVersion is the protocol message version this SDK speaks.
const MessageVersion = "2.1.0"
