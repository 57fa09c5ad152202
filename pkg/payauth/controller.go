package payauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridianpay/meridian-go/internal/runner"
	"github.com/meridianpay/meridian-go/pkg/analytics"
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/redirect"
	"github.com/meridianpay/meridian-go/pkg/relay"
	"github.com/meridianpay/meridian-go/pkg/threeds2"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

// Controller confirms an intent, decides which authentication mechanism
// the intent's next action requires, drives it to completion and relays
// exactly one outcome back to the caller.
type Controller struct {
	cfg        Config
	repo       transport.Repository
	service    threeds2.Service
	emitter    analytics.Emitter
	events     analytics.Factory
	relay      *relay.Launcher
	redirect   *redirect.Launcher
	dispatcher runner.Dispatcher
	logger     *slog.Logger
}

// ControllerParams collects the controller's collaborators.
type ControllerParams struct {
	Config     Config
	Repository transport.Repository
	Service    threeds2.Service
	Emitter    analytics.Emitter
	Relay      *relay.Launcher
	Redirect   *redirect.Launcher
	// Dispatcher is the caller's execution context; every callback
	// lands on it.
	Dispatcher runner.Dispatcher
	Logger     *slog.Logger
}

func NewController(p ControllerParams) (*Controller, error) {
	if err := p.Config.validate(); err != nil {
		return nil, err
	}
	if p.Repository == nil || p.Service == nil || p.Relay == nil ||
		p.Redirect == nil || p.Dispatcher == nil {
		return nil, errors.New("payauth: controller is missing a collaborator")
	}
	if p.Emitter == nil {
		p.Emitter = analytics.Nop{}
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		cfg:        p.Config,
		repo:       p.Repository,
		service:    p.Service,
		emitter:    p.Emitter,
		relay:      p.Relay,
		redirect:   p.Redirect,
		dispatcher: p.Dispatcher,
		logger:     p.Logger,
	}, nil
}

// ConfirmAndAuthenticate confirms the intent and resolves any required
// next action. Fire-and-forget: the outcome arrives through the host's
// result dispatch and HandleReturn. A failed confirm is terminal and
// reported once; nothing is retried.
func (c *Controller) ConfirmAndAuthenticate(host Host, params intents.ConfirmParams, opts transport.RequestOptions) {
	params = params.ForSDKUse()
	runner.Execute(c.dispatcher,
		func() (*intents.Intent, error) {
			return c.repo.ConfirmIntent(context.Background(), params, opts)
		},
		runner.Funcs[intents.Intent]{
			Success: func(intent *intents.Intent) {
				if !c.hostPresent(host, "confirm") {
					return
				}
				c.routeNextAction(host, intent, opts)
			},
			Error: func(err error) {
				if !c.hostPresent(host, "confirm") {
					return
				}
				c.relayError(err)
			},
		})
}

// StartAuthentication resumes authentication from a previously returned
// client secret without re-confirming: it retrieves the intent and
// routes its next action.
func (c *Controller) StartAuthentication(host Host, clientSecret string, opts transport.RequestOptions) {
	runner.Execute(c.dispatcher,
		func() (*intents.Intent, error) {
			return c.repo.RetrieveIntent(context.Background(), clientSecret, opts)
		},
		runner.Funcs[intents.Intent]{
			Success: func(intent *intents.Intent) {
				if !c.hostPresent(host, "retrieve") {
					return
				}
				c.routeNextAction(host, intent, opts)
			},
			Error: func(err error) {
				if !c.hostPresent(host, "retrieve") {
					return
				}
				c.relayError(err)
			},
		})
}

// ShouldHandleResult lets the caller's result dispatch decide whether a
// returned payload belongs to this controller.
func (c *Controller) ShouldHandleResult(requestCode int, payload *relay.Payload) bool {
	return requestCode == c.cfg.RequestCode && payload != nil
}

// HandleReturn is the entry point invoked when control returns from a
// launched surface. A payload carrying an error surfaces it without a
// network call; otherwise the intent is freshly retrieved and combined
// with the payload's explicit outcome.
func (c *Controller) HandleReturn(payload relay.Payload, opts transport.RequestOptions, callback ResultCallback) {
	if payload.Err != nil {
		callback.OnError(payload.Err)
		return
	}

	explicit := outcomeFromRelayCode(payload.Outcome)
	clientSecret := payload.ClientSecret
	runner.Execute(c.dispatcher,
		func() (*intents.Intent, error) {
			return c.repo.RetrieveIntent(context.Background(), clientSecret, opts)
		},
		runner.Funcs[intents.Intent]{
			Success: func(intent *intents.Intent) {
				callback.OnSuccess(NewIntentResult(intent, explicit))
			},
			Error: callback.OnError,
		})
}

// routeNextAction classifies the intent's next action and dispatches to
// the matching authentication mechanism. Unsupported action types are
// treated as no action, not as an error.
func (c *Controller) routeNextAction(host Host, intent *intents.Intent, opts transport.RequestOptions) {
	if !intent.RequiresAction() || intent.NextAction == nil {
		c.bypassAuth(intent)
		return
	}

	switch intent.NextAction.Type {
	case intents.NextActionUseSDK:
		sdkData := intent.NextAction.UseSDK
		if !sdkData.Is3DS2() {
			c.bypassAuth(intent)
			return
		}
		fingerprint, err := intents.ParseThreeDS2Fingerprint(sdkData)
		if err != nil {
			c.relayError(err)
			return
		}
		c.emitter.Emit(context.Background(),
			c.events.AuthEvent(analytics.EventAuth3DS2Start, intent.ID))
		c.begin3DS2Authentication(host, intent, fingerprint, opts)
	case intents.NextActionRedirectToURL:
		c.emitter.Emit(context.Background(),
			c.events.AuthEvent(analytics.EventAuthRedirect, intent.ID))
		c.redirect.Start(redirect.Data{
			AuthURL:   intent.NextAction.RedirectToURL.URL,
			ReturnURL: intent.NextAction.RedirectToURL.ReturnURL,
		})
	default:
		c.bypassAuth(intent)
	}
}

// begin3DS2Authentication creates an engine transaction, starts 3DS2
// authentication with the server and routes the ARes.
func (c *Controller) begin3DS2Authentication(host Host, intent *intents.Intent,
	fingerprint *intents.ThreeDS2Fingerprint, opts transport.RequestOptions) {

	transaction, err := c.service.CreateTransaction(
		fingerprint.DirectoryServer.ID,
		threeds2.MessageVersion,
		intent.LiveMode,
		fingerprint.DirectoryServer.Name,
		threeds2.DirectoryServerKeys{
			RootCerts: fingerprint.Encryption.RootCerts,
			PublicKey: fingerprint.Encryption.Certificate,
			KeyID:     fingerprint.Encryption.CertificateID,
		},
	)
	if err != nil {
		c.relayError(fmt.Errorf("create 3ds2 transaction: %w", err))
		return
	}

	areq := transaction.AuthenticationRequestParameters()
	authParams := intents.AuthParams{
		SourceID:           fingerprint.Source,
		SDKAppID:           areq.SDKAppID,
		SDKReferenceNumber: areq.SDKReferenceNumber,
		SDKTransactionID:   areq.SDKTransactionID,
		DeviceData:         areq.DeviceData,
		SDKEphemeralKey:    areq.SDKEphemeralKey,
		MessageVersion:     areq.MessageVersion,
		TimeoutMinutes:     c.cfg.ChallengeTimeout,
	}

	runner.Execute(c.dispatcher,
		func() (*intents.AuthResult, error) {
			return c.repo.Start3DS2Auth(context.Background(), authParams, opts)
		},
		runner.Funcs[intents.AuthResult]{
			Success: func(result *intents.AuthResult) {
				if !c.hostPresent(host, "start-auth") {
					return
				}
				c.route3DS2AuthResult(host, intent, transaction, fingerprint.Source, result, opts)
			},
			Error: func(err error) {
				if !c.hostPresent(host, "start-auth") {
					return
				}
				c.relayError(err)
			},
		})
}

func (c *Controller) route3DS2AuthResult(host Host, intent *intents.Intent,
	transaction threeds2.Transaction, sourceID string,
	result *intents.AuthResult, opts transport.RequestOptions) {

	switch {
	case result.Ares != nil && result.Ares.ShouldChallenge():
		c.startChallengeFlow(host, intent, transaction, sourceID, result.Ares, opts)
	case result.Ares != nil:
		c.emitter.Emit(context.Background(),
			c.events.AuthEvent(analytics.EventAuth3DS2Frictionless, intent.ID))
		c.relay.Start(relay.ResultPayload(uuid.NewString(), c.cfg.RequestCode,
			intent.ClientSecret, OutcomeSucceeded.relayCode()))
	case result.FallbackRedirectURL != "":
		c.emitter.Emit(context.Background(),
			c.events.AuthEvent(analytics.EventAuth3DS2Fallback, intent.ID))
		c.redirect.Start(redirect.Data{AuthURL: result.FallbackRedirectURL})
	default:
		message := "Invalid 3DS2 authentication response"
		if result.Error != nil {
			message = result.Error.Message()
		}
		c.relayError(fmt.Errorf("error encountered during 3DS2 authentication request. %s", message))
	}
}

// startChallengeFlow hands off to the challenge UI on the attempt's own
// background context, after a short delay so interstitial UI can
// settle.
func (c *Controller) startChallengeFlow(host Host, intent *intents.Intent,
	transaction threeds2.Transaction, sourceID string,
	ares *intents.ARes, opts transport.RequestOptions) {

	params := threeds2.ChallengeParameters{
		ThreeDSServerTransactionID: ares.ThreeDSServerTransID,
		ACSTransactionID:           ares.ACSTransID,
		ACSSignedContent:           ares.ACSSignedContent,
	}
	receiver := newChallengeReceiver(c, host, intent, transaction, sourceID, opts)
	timeout := time.Duration(c.cfg.ChallengeTimeout) * time.Minute

	time.AfterFunc(c.cfg.ChallengeDelay, func() {
		transaction.DoChallenge(context.Background(), params, receiver, timeout)
	})
}

// bypassAuth relays immediately with no explicit outcome; the caller's
// result is inferred from the intent status on re-entry.
func (c *Controller) bypassAuth(intent *intents.Intent) {
	c.relay.Start(relay.ResultPayload(uuid.NewString(), c.cfg.RequestCode,
		intent.ClientSecret, relay.OutcomeUnknown))
}

func (c *Controller) relayError(err error) {
	c.relay.Start(relay.ErrorPayload(uuid.NewString(), c.cfg.RequestCode, err))
}

func (c *Controller) hostPresent(host Host, stage string) bool {
	if host.Alive() {
		return true
	}
	c.logger.Debug("host surface gone, dropping delivery", "stage", stage)
	return false
}
