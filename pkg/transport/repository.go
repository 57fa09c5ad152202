// Package transport talks to the Meridian payments API. The Repository
// interface is what the orchestrator consumes; Client is the default
// JSON-over-HTTP implementation.
package transport

import (
	"context"

	"github.com/meridianpay/meridian-go/pkg/intents"
)

// RequestOptions carry the per-request credentials.
type RequestOptions struct {
	// APIKey is the publishable key authorizing the request.
	APIKey string
	// AccountID optionally scopes the request to a connected account.
	AccountID string
}

// Repository is the set of network operations the orchestrator needs.
// Every call reports exactly one result or error; the SDK never retries
// them automatically.
type Repository interface {
	ConfirmIntent(ctx context.Context, params intents.ConfirmParams, opts RequestOptions) (*intents.Intent, error)
	RetrieveIntent(ctx context.Context, clientSecret string, opts RequestOptions) (*intents.Intent, error)
	Start3DS2Auth(ctx context.Context, params intents.AuthParams, opts RequestOptions) (*intents.AuthResult, error)
	Complete3DS2Auth(ctx context.Context, sourceID string, opts RequestOptions) (bool, error)
}
