package bdd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/meridianpay/meridian-go/internal/runner"
	"github.com/meridianpay/meridian-go/pkg/analytics"
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/payauth"
	"github.com/meridianpay/meridian-go/pkg/redirect"
	"github.com/meridianpay/meridian-go/pkg/relay"
	"github.com/meridianpay/meridian-go/pkg/threeds2"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

const worldClientSecret = "pi_bdd_1_secret_abc"

// AuthWorld holds one scenario's fakes and captures. The scripted
// repository stands in for the API; the relay and redirect surfaces
// capture what the orchestrator hands them.
type AuthWorld struct {
	t *testing.T

	repo   *scriptedRepo
	engine *threeds2.StubService

	payloads chan relay.Payload
	opened   chan redirect.Data

	lastPayload *relay.Payload
}

// scriptedRepo is a Repository whose responses each scenario's Given
// steps configure.
type scriptedRepo struct {
	mu sync.Mutex

	confirmIntent  *intents.Intent
	confirmErr     error
	authResult     *intents.AuthResult
	retrieveIntent *intents.Intent

	retrieveCalls int
	completeCalls int
}

func (r *scriptedRepo) ConfirmIntent(ctx context.Context, params intents.ConfirmParams, opts transport.RequestOptions) (*intents.Intent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.confirmErr != nil {
		return nil, r.confirmErr
	}
	return r.confirmIntent, nil
}

func (r *scriptedRepo) RetrieveIntent(ctx context.Context, clientSecret string, opts transport.RequestOptions) (*intents.Intent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retrieveCalls++
	if r.retrieveIntent == nil {
		return nil, errors.New("no retrieve response scripted")
	}
	return r.retrieveIntent, nil
}

func (r *scriptedRepo) Start3DS2Auth(ctx context.Context, params intents.AuthParams, opts transport.RequestOptions) (*intents.AuthResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.authResult == nil {
		return nil, errors.New("no auth result scripted")
	}
	return r.authResult, nil
}

func (r *scriptedRepo) Complete3DS2Auth(ctx context.Context, sourceID string, opts transport.RequestOptions) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeCalls++
	return true, nil
}

func (r *scriptedRepo) completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completeCalls
}

func (r *scriptedRepo) retrieved() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retrieveCalls
}

func NewAuthWorld(t *testing.T) *AuthWorld {
	return &AuthWorld{t: t}
}

func (w *AuthWorld) Register(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		w.reset()
		return ctx, nil
	})
	w.registerConfirmationSteps(sc)
}

func (w *AuthWorld) reset() {
	w.repo = &scriptedRepo{
		retrieveIntent: &intents.Intent{
			ID:           "pi_bdd_1",
			Object:       "payment_intent",
			ClientSecret: worldClientSecret,
			Status:       intents.StatusSucceeded,
		},
	}
	w.engine = &threeds2.StubService{}
	w.payloads = make(chan relay.Payload, 4)
	w.opened = make(chan redirect.Data, 4)
	w.lastPayload = nil
}

func (w *AuthWorld) newController() (*payauth.Controller, error) {
	cfg := payauth.DefaultConfig()
	cfg.ChallengeDelay = time.Millisecond

	return payauth.NewController(payauth.ControllerParams{
		Config:     cfg,
		Repository: w.repo,
		Service:    w.engine,
		Emitter:    analytics.Nop{},
		Relay: relay.NewLauncher(relay.NewMemoryStore(), relay.SinkFunc(func(p relay.Payload) {
			w.payloads <- p
		}), nil),
		Redirect: redirect.NewLauncher(cfg.RequestCode, redirect.BrowserFunc(func(_ int, data redirect.Data) error {
			w.opened <- data
			return nil
		}), nil),
		Dispatcher: runner.Sync{},
	})
}

func (w *AuthWorld) waitPayload() (relay.Payload, error) {
	if w.lastPayload != nil {
		return *w.lastPayload, nil
	}
	select {
	case p := <-w.payloads:
		w.lastPayload = &p
		return p, nil
	case <-time.After(2 * time.Second):
		return relay.Payload{}, errors.New("no relay payload delivered")
	}
}

func threeDS2NextAction() (*intents.NextAction, error) {
	var data intents.SDKData
	raw := `{"type":"three_d_secure_2_fingerprint","three_d_secure_2_source":"src_bdd_1","directory_server_name":"visa","server_transaction_id":"trans_bdd_1"}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse sdk data: %w", err)
	}
	return &intents.NextAction{Type: intents.NextActionUseSDK, UseSDK: &data}, nil
}
