package polling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meridianpay/meridian-go/pkg/apierror"
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

type scriptedRepo struct {
	statuses []intents.Status
	err      error
	calls    int
}

func (r *scriptedRepo) RetrieveIntent(ctx context.Context, clientSecret string, opts transport.RequestOptions) (*intents.Intent, error) {
	if r.err != nil {
		return nil, r.err
	}
	status := r.statuses[len(r.statuses)-1]
	if r.calls < len(r.statuses) {
		status = r.statuses[r.calls]
	}
	r.calls++
	return &intents.Intent{ID: "pi_1", ClientSecret: clientSecret, Status: status}, nil
}

func (r *scriptedRepo) ConfirmIntent(context.Context, intents.ConfirmParams, transport.RequestOptions) (*intents.Intent, error) {
	panic("not used")
}

func (r *scriptedRepo) Start3DS2Auth(context.Context, intents.AuthParams, transport.RequestOptions) (*intents.AuthResult, error) {
	panic("not used")
}

func (r *scriptedRepo) Complete3DS2Auth(context.Context, string, transport.RequestOptions) (bool, error) {
	panic("not used")
}

func testConfig() Config {
	return Config{
		InitialInterval: time.Millisecond,
		MaxRetries:      5,
		Timeout:         2 * time.Second,
	}
}

func TestPollStopsWhenStatusSettles(t *testing.T) {
	repo := &scriptedRepo{statuses: []intents.Status{
		intents.StatusRequiresAction,
		intents.StatusRequiresAction,
		intents.StatusSucceeded,
	}}

	intent, err := New(repo, testConfig()).Poll(context.Background(), "pi_1_secret_2", transport.RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if intent.Status != intents.StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", intent.Status)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 retrievals, got %d", repo.calls)
	}
}

func TestPollGivesUpAfterRetryBudget(t *testing.T) {
	repo := &scriptedRepo{statuses: []intents.Status{intents.StatusRequiresAction}}

	intent, err := New(repo, testConfig()).Poll(context.Background(), "pi_1_secret_2", transport.RequestOptions{})
	if !errors.Is(err, ErrStillPending) {
		t.Fatalf("expected ErrStillPending, got %v", err)
	}
	if intent == nil || intent.Status != intents.StatusRequiresAction {
		t.Fatalf("expected last retrieved intent alongside the error, got %v", intent)
	}
}

func TestPollStopsAtWallClockDeadline(t *testing.T) {
	repo := &scriptedRepo{statuses: []intents.Status{intents.StatusRequiresAction}}
	cfg := Config{
		InitialInterval: 10 * time.Millisecond,
		MaxRetries:      1 << 30,
		Timeout:         100 * time.Millisecond,
	}

	start := time.Now()
	intent, err := New(repo, cfg).Poll(context.Background(), "pi_1_secret_2", transport.RequestOptions{})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrStillPending) {
		t.Fatalf("expected ErrStillPending at the deadline, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("polling ran past the deadline, took %v", elapsed)
	}
	if intent == nil || intent.Status != intents.StatusRequiresAction {
		t.Fatalf("expected last retrieved intent alongside the error, got %v", intent)
	}
}

func TestPollStopsOnAPIError(t *testing.T) {
	apiErr := &apierror.Error{Type: apierror.TypeAuthentication, Message: "bad key"}
	repo := &scriptedRepo{err: apiErr}

	_, err := New(repo, testConfig()).Poll(context.Background(), "pi_1_secret_2", transport.RequestOptions{})
	var got *apierror.Error
	if !errors.As(err, &got) || got.Type != apierror.TypeAuthentication {
		t.Fatalf("expected the API error untouched, got %v", err)
	}
}
