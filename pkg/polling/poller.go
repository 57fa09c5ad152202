// Package polling implements the legacy status-check fallback: when a
// flow has no in-app completion signal, the intent is re-fetched with
// exponential backoff until its status settles.
package polling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

// ErrStillPending is returned when the retry budget or deadline is
// exhausted before the intent reaches a settled status.
var ErrStillPending = errors.New("intent status still pending after polling")

// Config bounds a polling run.
type Config struct {
	// InitialInterval is the first wait between retrievals.
	InitialInterval time.Duration
	// MaxRetries caps the number of retrievals after the first.
	MaxRetries uint64
	// Timeout is the hard wall-clock limit for the whole run.
	Timeout time.Duration
}

// DefaultConfig mirrors the legacy flow's bounds: ten attempts inside
// thirty seconds, starting at a one second interval.
func DefaultConfig() Config {
	return Config{
		InitialInterval: time.Second,
		MaxRetries:      10,
		Timeout:         30 * time.Second,
	}
}

// Poller re-fetches an intent until it is no longer waiting on an
// external action.
type Poller struct {
	repo transport.Repository
	cfg  Config
}

func New(repo transport.Repository, cfg Config) *Poller {
	return &Poller{repo: repo, cfg: cfg}
}

// Poll retrieves the intent until its status leaves requires_action, the
// retry cap is hit or the deadline passes. The last retrieved intent is
// returned alongside ErrStillPending when polling gives up.
func (p *Poller) Poll(ctx context.Context, clientSecret string, opts transport.RequestOptions) (*intents.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponential(p.cfg.InitialInterval), p.cfg.MaxRetries),
		ctx,
	)

	var last *intents.Intent
	operation := func() error {
		intent, err := p.repo.RetrieveIntent(ctx, clientSecret, opts)
		if err != nil {
			// API errors are terminal; only keep polling while the
			// status is pending.
			return backoff.Permanent(err)
		}
		last = intent
		if intent.RequiresAction() {
			return fmt.Errorf("intent %s still requires action", intent.ID)
		}
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, permanent.Unwrap()
		}
		return last, ErrStillPending
	}
	return last, nil
}

func newExponential(initial time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	return b
}
