package payauth

import (
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/relay"
)

// Outcome is the terminal classification of a confirmation and
// authentication attempt.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeCanceled
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

func (o Outcome) relayCode() relay.OutcomeCode {
	switch o {
	case OutcomeSucceeded:
		return relay.OutcomeSucceeded
	case OutcomeFailed:
		return relay.OutcomeFailed
	case OutcomeCanceled:
		return relay.OutcomeCanceled
	case OutcomeTimedOut:
		return relay.OutcomeTimedOut
	default:
		return relay.OutcomeUnknown
	}
}

func outcomeFromRelayCode(code relay.OutcomeCode) Outcome {
	switch code {
	case relay.OutcomeSucceeded:
		return OutcomeSucceeded
	case relay.OutcomeFailed:
		return OutcomeFailed
	case relay.OutcomeCanceled:
		return OutcomeCanceled
	case relay.OutcomeTimedOut:
		return OutcomeTimedOut
	default:
		return OutcomeUnknown
	}
}

// IntentResult is what the caller ultimately receives: the freshly
// retrieved intent and the attempt's outcome.
type IntentResult struct {
	Intent  *intents.Intent
	Outcome Outcome
}

// NewIntentResult combines an explicitly recorded outcome with the
// intent's own status. An explicit outcome always wins; otherwise the
// outcome is inferred from the status.
func NewIntentResult(intent *intents.Intent, explicit Outcome) IntentResult {
	return IntentResult{
		Intent:  intent,
		Outcome: determineOutcome(intent.Status, explicit),
	}
}

func determineOutcome(status intents.Status, explicit Outcome) Outcome {
	if explicit != OutcomeUnknown {
		return explicit
	}
	switch status {
	case intents.StatusRequiresAction, intents.StatusCanceled:
		return OutcomeCanceled
	case intents.StatusRequiresPaymentMethod:
		return OutcomeFailed
	case intents.StatusSucceeded, intents.StatusRequiresCapture, intents.StatusRequiresConfirmation:
		return OutcomeSucceeded
	default:
		return OutcomeUnknown
	}
}

// ResultCallback receives exactly one terminal notification per
// confirmation attempt.
type ResultCallback interface {
	OnSuccess(result IntentResult)
	OnError(err error)
}
