package bdd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/meridianpay/meridian-go/pkg/apierror"
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/payauth"
	"github.com/meridianpay/meridian-go/pkg/relay"
	"github.com/meridianpay/meridian-go/pkg/threeds2"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

func (w *AuthWorld) registerConfirmationSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the API confirms the intent with status "([^"]*)"$`, w.apiConfirmsWithStatus)
	sc.Step(`^the API confirms the intent with a 3DS2 next action$`, w.apiConfirmsWith3DS2)
	sc.Step(`^the API confirms the intent with a redirect to "([^"]*)"$`, w.apiConfirmsWithRedirect)
	sc.Step(`^the API rejects the confirmation with "([^"]*)"$`, w.apiRejectsConfirmation)
	sc.Step(`^the access control server does not mandate a challenge$`, w.acsDoesNotMandateChallenge)
	sc.Step(`^the access control server mandates a challenge$`, w.acsMandatesChallenge)
	sc.Step(`^the challenge engine reports "([^"]*)"$`, w.challengeEngineReports)
	sc.Step(`^the caller confirms the payment$`, w.callerConfirmsPayment)
	sc.Step(`^a result is relayed with no explicit outcome$`, w.resultRelayedWithNoExplicitOutcome)
	sc.Step(`^a result is relayed with the explicit outcome "([^"]*)"$`, w.resultRelayedWithExplicitOutcome)
	sc.Step(`^an error is relayed containing "([^"]*)"$`, w.errorRelayedContaining)
	sc.Step(`^the challenge completion is reported to the server$`, w.challengeCompletionReported)
	sc.Step(`^re-entry reports the outcome "([^"]*)"$`, w.reentryReportsOutcome)
	sc.Step(`^re-entry surfaces the error without a network call$`, w.reentrySurfacesError)
	sc.Step(`^the redirect surface opens "([^"]*)"$`, w.redirectSurfaceOpens)
}

func (w *AuthWorld) baseIntent(status intents.Status) *intents.Intent {
	return &intents.Intent{
		ID:           "pi_bdd_1",
		Object:       "payment_intent",
		ClientSecret: worldClientSecret,
		Status:       status,
	}
}

func (w *AuthWorld) apiConfirmsWithStatus(status string) error {
	w.repo.confirmIntent = w.baseIntent(intents.Status(status))
	return nil
}

func (w *AuthWorld) apiConfirmsWith3DS2() error {
	intent := w.baseIntent(intents.StatusRequiresAction)
	nextAction, err := threeDS2NextAction()
	if err != nil {
		return err
	}
	intent.NextAction = nextAction
	w.repo.confirmIntent = intent
	return nil
}

func (w *AuthWorld) apiConfirmsWithRedirect(authURL string) error {
	intent := w.baseIntent(intents.StatusRequiresAction)
	intent.NextAction = &intents.NextAction{
		Type:          intents.NextActionRedirectToURL,
		RedirectToURL: &intents.RedirectData{URL: authURL},
	}
	w.repo.confirmIntent = intent
	return nil
}

func (w *AuthWorld) apiRejectsConfirmation(message string) error {
	w.repo.confirmErr = &apierror.Error{Type: apierror.TypeCard, Message: message}
	return nil
}

func (w *AuthWorld) acsDoesNotMandateChallenge() error {
	w.repo.authResult = &intents.AuthResult{Ares: &intents.ARes{ACSChallengeMandated: "N"}}
	return nil
}

func (w *AuthWorld) acsMandatesChallenge() error {
	w.repo.authResult = &intents.AuthResult{Ares: &intents.ARes{
		ACSChallengeMandated: "Y",
		ACSTransID:           "acs_trans_bdd_1",
		ACSSignedContent:     "signed",
	}}
	return nil
}

func (w *AuthWorld) challengeEngineReports(outcome string) error {
	switch outcome {
	case "success":
		w.engine.Outcome = threeds2.StubCompleteSuccess
	case "failure":
		w.engine.Outcome = threeds2.StubCompleteFailure
	case "cancel":
		w.engine.Outcome = threeds2.StubCancel
	case "timeout":
		w.engine.Outcome = threeds2.StubTimeout
	default:
		return fmt.Errorf("unknown engine outcome %q", outcome)
	}
	return nil
}

func (w *AuthWorld) callerConfirmsPayment() error {
	controller, err := w.newController()
	if err != nil {
		return err
	}
	controller.ConfirmAndAuthenticate(payauth.AlwaysAlive{}, intents.ConfirmParams{
		ClientSecret:    worldClientSecret,
		PaymentMethodID: "pm_bdd_1",
	}, transport.RequestOptions{APIKey: "pk_test_bdd"})
	return nil
}

func (w *AuthWorld) resultRelayedWithNoExplicitOutcome() error {
	payload, err := w.waitPayload()
	if err != nil {
		return err
	}
	if payload.Err != nil {
		return fmt.Errorf("unexpected error payload: %v", payload.Err)
	}
	if payload.Outcome != relay.OutcomeUnknown {
		return fmt.Errorf("expected no explicit outcome, got %d", payload.Outcome)
	}
	return nil
}

func outcomeCodeByName(name string) (relay.OutcomeCode, error) {
	switch name {
	case "succeeded":
		return relay.OutcomeSucceeded, nil
	case "failed":
		return relay.OutcomeFailed, nil
	case "canceled":
		return relay.OutcomeCanceled, nil
	case "timed_out":
		return relay.OutcomeTimedOut, nil
	default:
		return relay.OutcomeUnknown, fmt.Errorf("unknown outcome %q", name)
	}
}

func (w *AuthWorld) resultRelayedWithExplicitOutcome(name string) error {
	want, err := outcomeCodeByName(name)
	if err != nil {
		return err
	}
	payload, err := w.waitPayload()
	if err != nil {
		return err
	}
	if payload.Err != nil {
		return fmt.Errorf("unexpected error payload: %v", payload.Err)
	}
	if payload.Outcome != want {
		return fmt.Errorf("expected outcome %q, got code %d", name, payload.Outcome)
	}
	return nil
}

func (w *AuthWorld) errorRelayedContaining(fragment string) error {
	payload, err := w.waitPayload()
	if err != nil {
		return err
	}
	if payload.Err == nil {
		return errors.New("expected an error payload")
	}
	if !strings.Contains(payload.Err.Message, fragment) {
		return fmt.Errorf("error %q does not contain %q", payload.Err.Message, fragment)
	}
	return nil
}

func (w *AuthWorld) challengeCompletionReported() error {
	if _, err := w.waitPayload(); err != nil {
		return err
	}
	if got := w.repo.completed(); got != 1 {
		return fmt.Errorf("expected exactly one completion call, got %d", got)
	}
	return nil
}

type bddCallback struct {
	results chan payauth.IntentResult
	errs    chan error
}

func newBDDCallback() *bddCallback {
	return &bddCallback{
		results: make(chan payauth.IntentResult, 1),
		errs:    make(chan error, 1),
	}
}

func (c *bddCallback) OnSuccess(result payauth.IntentResult) { c.results <- result }
func (c *bddCallback) OnError(err error)                     { c.errs <- err }

func (w *AuthWorld) reentryReportsOutcome(name string) error {
	payload, err := w.waitPayload()
	if err != nil {
		return err
	}
	controller, err := w.newController()
	if err != nil {
		return err
	}
	if !controller.ShouldHandleResult(payload.RequestCode, &payload) {
		return fmt.Errorf("payload with request code %d was not accepted", payload.RequestCode)
	}

	cb := newBDDCallback()
	controller.HandleReturn(payload, transport.RequestOptions{APIKey: "pk_test_bdd"}, cb)

	select {
	case result := <-cb.results:
		if result.Outcome.String() != name {
			return fmt.Errorf("expected outcome %q, got %q", name, result.Outcome)
		}
		return nil
	case err := <-cb.errs:
		return fmt.Errorf("unexpected error on re-entry: %w", err)
	case <-time.After(2 * time.Second):
		return errors.New("no result delivered on re-entry")
	}
}

func (w *AuthWorld) reentrySurfacesError() error {
	payload, err := w.waitPayload()
	if err != nil {
		return err
	}
	controller, err := w.newController()
	if err != nil {
		return err
	}
	before := w.repo.retrieved()

	cb := newBDDCallback()
	controller.HandleReturn(payload, transport.RequestOptions{APIKey: "pk_test_bdd"}, cb)

	select {
	case <-cb.errs:
	default:
		return errors.New("error payloads must be surfaced synchronously")
	}
	if w.repo.retrieved() != before {
		return errors.New("error payloads must not trigger a network call")
	}
	return nil
}

func (w *AuthWorld) redirectSurfaceOpens(authURL string) error {
	select {
	case data := <-w.opened:
		if data.AuthURL != authURL {
			return fmt.Errorf("expected redirect to %q, got %q", authURL, data.AuthURL)
		}
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("redirect surface never opened")
	}
}
