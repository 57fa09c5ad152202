package threeds2

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StubOutcome selects the terminal event a stub transaction reports.
type StubOutcome int

const (
	StubCompleteSuccess StubOutcome = iota
	StubCompleteFailure
	StubCancel
	StubTimeout
	StubProtocolError
	StubRuntimeError
)

// StubService is a deterministic in-process engine used by the demo
// binary and by tests. Every transaction it creates reports the
// configured outcome after Delay.
type StubService struct {
	Outcome StubOutcome
	Delay   time.Duration
	UIType  UIType
}

func (s *StubService) CreateTransaction(directoryServerID, messageVersion string, liveMode bool,
	directoryServerName string, keys DirectoryServerKeys) (Transaction, error) {
	uiType := s.UIType
	if uiType == "" {
		uiType = UITypeText
	}
	return &stubTransaction{
		outcome: s.Outcome,
		delay:   s.Delay,
		uiType:  uiType,
		params: AuthRequestParams{
			SDKAppID:           uuid.NewString(),
			SDKReferenceNumber: "meridian_go_stub",
			SDKTransactionID:   uuid.NewString(),
			DeviceData:         `{"platform":"stub"}`,
			SDKEphemeralKey:    `{"kty":"EC","crv":"P-256"}`,
			MessageVersion:     messageVersion,
		},
	}, nil
}

type stubTransaction struct {
	outcome StubOutcome
	delay   time.Duration
	uiType  UIType
	params  AuthRequestParams
}

func (t *stubTransaction) AuthenticationRequestParameters() AuthRequestParams {
	return t.params
}

func (t *stubTransaction) InitialUIType() UIType {
	return t.uiType
}

func (t *stubTransaction) DoChallenge(ctx context.Context, params ChallengeParameters,
	receiver StatusReceiver, timeout time.Duration) {
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return
		}
	}

	switch t.outcome {
	case StubCompleteSuccess:
		receiver.Completed(CompletionEvent{
			SDKTransactionID:  t.params.SDKTransactionID,
			TransactionStatus: TransactionStatusYes,
		})
	case StubCompleteFailure:
		receiver.Completed(CompletionEvent{
			SDKTransactionID:  t.params.SDKTransactionID,
			TransactionStatus: "N",
		})
	case StubCancel:
		receiver.Cancelled()
	case StubTimeout:
		receiver.TimedOut()
	case StubProtocolError:
		receiver.ProtocolError(ProtocolErrorEvent{
			SDKTransactionID: t.params.SDKTransactionID,
			ErrorMessage: ErrorMessage{
				TransactionID:    params.ThreeDSServerTransactionID,
				ErrorCode:        "302",
				ErrorDescription: "Data could not be decrypted",
				ErrorDetails:     "stub",
			},
		})
	case StubRuntimeError:
		receiver.RuntimeError(RuntimeErrorEvent{
			ErrorCode:    "SDK_RUNTIME_FAILURE",
			ErrorMessage: "stub runtime failure",
		})
	}
}
