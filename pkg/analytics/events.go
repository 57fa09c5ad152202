// Package analytics emits the fire-and-forget event side-channel
// describing the path an authentication attempt took. Emission never
// blocks the payment flow and failures are swallowed.
package analytics

// EventName is a closed set of analytics event names.
type EventName string

const (
	EventAuth3DS2Start              EventName = "3ds2_authenticate"
	EventAuth3DS2Frictionless       EventName = "3ds2_frictionless_flow"
	EventAuth3DS2Fallback           EventName = "3ds2_fallback_redirect"
	EventAuth3DS2ChallengePresented EventName = "3ds2_challenge_flow_presented"
	EventAuth3DS2ChallengeCompleted EventName = "3ds2_challenge_flow_completed"
	EventAuth3DS2ChallengeCanceled  EventName = "3ds2_challenge_flow_canceled"
	EventAuth3DS2ChallengeTimedOut  EventName = "3ds2_challenge_flow_timed_out"
	EventAuth3DS2ChallengeErrored   EventName = "3ds2_challenge_flow_errored"
	EventAuthRedirect               EventName = "url_redirect_next_action"
)

// Event is one analytics record.
type Event struct {
	Name   EventName
	Params map[string]any
}

const (
	fieldAnalyticsUA = "analytics_ua"
	fieldEvent       = "event"
	fieldIntentID    = "intent_id"
	fieldUIType      = "3ds2_ui_type"
	fieldErrorData   = "error"

	analyticsUA = "analytics.meridian_go-1.0"
)

// Factory builds events with the common fields filled in.
type Factory struct{}

func (Factory) base(name EventName, intentID string) map[string]any {
	return map[string]any{
		fieldAnalyticsUA: analyticsUA,
		fieldEvent:       string(name),
		fieldIntentID:    intentID,
	}
}

// AuthEvent builds an authentication-path event carrying the intent id.
func (f Factory) AuthEvent(name EventName, intentID string) Event {
	return Event{Name: name, Params: f.base(name, intentID)}
}

// ChallengeEvent builds a challenge-flow event carrying the UI type
// shown to the customer.
func (f Factory) ChallengeEvent(name EventName, intentID, uiType string) Event {
	params := f.base(name, intentID)
	params[fieldUIType] = uiType
	return Event{Name: name, Params: params}
}

// ChallengeErrorEvent builds a challenge-errored event carrying the
// engine's structured error fields.
func (f Factory) ChallengeErrorEvent(intentID string, errorData map[string]string) Event {
	params := f.base(EventAuth3DS2ChallengeErrored, intentID)
	params[fieldErrorData] = errorData
	return Event{Name: EventAuth3DS2ChallengeErrored, Params: params}
}
