package payauth

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/meridianpay/meridian-go/internal/runner"
	"github.com/meridianpay/meridian-go/pkg/analytics"
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/relay"
	"github.com/meridianpay/meridian-go/pkg/threeds2"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

// challengeReceiver is the single-use receiver for one challenge's
// terminal event. Each terminal state emits its analytics event, maps
// to an outcome and funnels into notifyCompletion; a second terminal
// invocation is ignored.
type challengeReceiver struct {
	controller  *Controller
	host        Host
	intent      *intents.Intent
	transaction threeds2.Transaction
	sourceID    string
	requestOpts transport.RequestOptions

	done atomic.Bool
}

func newChallengeReceiver(c *Controller, host Host, intent *intents.Intent,
	transaction threeds2.Transaction, sourceID string, opts transport.RequestOptions) *challengeReceiver {
	return &challengeReceiver{
		controller:  c,
		host:        host,
		intent:      intent,
		transaction: transaction,
		sourceID:    sourceID,
		requestOpts: opts,
	}
}

func (r *challengeReceiver) Completed(event threeds2.CompletionEvent) {
	r.terminal("completed", func() {
		r.emitChallengeEvent(analytics.EventAuth3DS2ChallengeCompleted)
		outcome := OutcomeFailed
		if event.TransactionStatus == threeds2.TransactionStatusYes {
			outcome = OutcomeSucceeded
		}
		r.notifyCompletion(outcome)
	})
}

func (r *challengeReceiver) Cancelled() {
	r.terminal("cancelled", func() {
		r.emitChallengeEvent(analytics.EventAuth3DS2ChallengeCanceled)
		r.notifyCompletion(OutcomeCanceled)
	})
}

func (r *challengeReceiver) TimedOut() {
	r.terminal("timed out", func() {
		r.emitChallengeEvent(analytics.EventAuth3DS2ChallengeTimedOut)
		r.notifyCompletion(OutcomeTimedOut)
	})
}

func (r *challengeReceiver) ProtocolError(event threeds2.ProtocolErrorEvent) {
	r.terminal("protocol error", func() {
		c := r.controller
		c.emitter.Emit(context.Background(), c.events.ChallengeErrorEvent(r.intent.ID,
			map[string]string{
				"type":              "protocol_error_event",
				"sdk_trans_id":      event.SDKTransactionID,
				"error_code":        event.ErrorMessage.ErrorCode,
				"error_description": event.ErrorMessage.ErrorDescription,
				"error_details":     event.ErrorMessage.ErrorDetails,
				"trans_id":          event.ErrorMessage.TransactionID,
			}))
		r.notifyCompletion(OutcomeFailed)
	})
}

func (r *challengeReceiver) RuntimeError(event threeds2.RuntimeErrorEvent) {
	r.terminal("runtime error", func() {
		c := r.controller
		c.emitter.Emit(context.Background(), c.events.ChallengeErrorEvent(r.intent.ID,
			map[string]string{
				"type":          "runtime_error_event",
				"error_code":    event.ErrorCode,
				"error_message": event.ErrorMessage,
			}))
		r.notifyCompletion(OutcomeFailed)
	})
}

// terminal runs fn for the first terminal callback and ignores the
// rest.
func (r *challengeReceiver) terminal(state string, fn func()) {
	if !r.done.CompareAndSwap(false, true) {
		r.controller.logger.Debug("duplicate challenge terminal callback ignored", "state", state)
		return
	}
	fn()
}

func (r *challengeReceiver) emitChallengeEvent(name analytics.EventName) {
	c := r.controller
	c.emitter.Emit(context.Background(), c.events.ChallengeEvent(name, r.intent.ID,
		string(r.transaction.InitialUIType())))
}

// notifyCompletion tells the server the challenge ended and, only once
// that call succeeds, relays the final payload. The server uses the
// completion signal to finalize intent state, so the relay must never
// fire first. A complete-auth failure supersedes the challenge outcome.
func (r *challengeReceiver) notifyCompletion(outcome Outcome) {
	c := r.controller
	r.emitChallengeEvent(analytics.EventAuth3DS2ChallengePresented)

	sourceID := r.sourceID
	opts := r.requestOpts
	runner.Execute(c.dispatcher,
		func() (*bool, error) {
			ok, err := c.repo.Complete3DS2Auth(context.Background(), sourceID, opts)
			if err != nil {
				return nil, err
			}
			return &ok, nil
		},
		runner.Funcs[bool]{
			Success: func(*bool) {
				if !c.hostPresent(r.host, "complete-auth") {
					return
				}
				c.relay.Start(relay.ResultPayload(uuid.NewString(), c.cfg.RequestCode,
					r.intent.ClientSecret, outcome.relayCode()))
			},
			Error: func(err error) {
				if !c.hostPresent(r.host, "complete-auth") {
					return
				}
				c.relayError(err)
			},
		})
}
