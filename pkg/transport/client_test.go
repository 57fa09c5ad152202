package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridianpay/meridian-go/pkg/apierror"
	"github.com/meridianpay/meridian-go/pkg/intents"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestConfirmIntentRequestShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/payment_intents/pi_1/confirm" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pk_test_key" {
			t.Errorf("unexpected authorization %q", got)
		}
		if got := r.Header.Get("Meridian-Account"); got != "acct_1" {
			t.Errorf("unexpected account header %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("use_sdk") != "true" {
			t.Errorf("expected use_sdk=true, got %q", r.PostForm.Get("use_sdk"))
		}
		if r.PostForm.Get("payment_method") != "pm_1" {
			t.Errorf("expected payment_method=pm_1, got %q", r.PostForm.Get("payment_method"))
		}
		w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"requires_action"}`))
	})

	intent, err := client.ConfirmIntent(context.Background(), intents.ConfirmParams{
		ClientSecret:    "pi_1_secret_2",
		PaymentMethodID: "pm_1",
		UseSDK:          true,
	}, RequestOptions{APIKey: "pk_test_key", AccountID: "acct_1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if intent.ID != "pi_1" || intent.Status != intents.StatusRequiresAction {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestRetrieveIntentPassesClientSecret(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents/pi_1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("client_secret"); got != "pi_1_secret_2" {
			t.Errorf("unexpected client secret %q", got)
		}
		w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"succeeded"}`))
	})

	intent, err := client.RetrieveIntent(context.Background(), "pi_1_secret_2", RequestOptions{APIKey: "pk"})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if intent.Status != intents.StatusSucceeded {
		t.Fatalf("unexpected status %s", intent.Status)
	}
}

func TestSetupIntentsUseTheirOwnCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/setup_intents/seti_1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"seti_1","object":"setup_intent","status":"succeeded"}`))
	})

	intent, err := client.RetrieveIntent(context.Background(), "seti_1_secret_2", RequestOptions{APIKey: "pk"})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if intent.Object != "setup_intent" {
		t.Fatalf("unexpected object %q", intent.Object)
	}
}

func TestErrorResponseIsParsed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Request-Id", "req_42")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined"}}`))
	})

	_, err := client.RetrieveIntent(context.Background(), "pi_1_secret_2", RequestOptions{APIKey: "pk"})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierror.Error, got %T", err)
	}
	if apiErr.Type != apierror.TypeCard || apiErr.Code != "card_declined" || apiErr.RequestID != "req_42" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestTransportFailureIsConnectionError(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))

	_, err := client.RetrieveIntent(context.Background(), "pi_1_secret_2", RequestOptions{APIKey: "pk"})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Type != apierror.TypeConnection {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestComplete3DS2AuthReadsState(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/3ds2/challenge_complete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("source") != "src_1" {
			t.Errorf("unexpected source %q", r.PostForm.Get("source"))
		}
		w.Write([]byte(`{"state":"succeeded"}`))
	})

	ok, err := client.Complete3DS2Auth(context.Background(), "src_1", RequestOptions{APIKey: "pk"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !ok {
		t.Fatal("expected succeeded state")
	}
}

func TestStart3DS2AuthEncodesEngineParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("sdk_transaction_id") != "sdk_trans_1" {
			t.Errorf("unexpected sdk transaction id %q", r.PostForm.Get("sdk_transaction_id"))
		}
		if r.PostForm.Get("timeout") != "5" {
			t.Errorf("unexpected timeout %q", r.PostForm.Get("timeout"))
		}
		w.Write([]byte(`{"id":"threeds2_1","source":"src_1","state":"challenge_required","ares":{"acsChallengeMandated":"Y"}}`))
	})

	result, err := client.Start3DS2Auth(context.Background(), intents.AuthParams{
		SourceID:         "src_1",
		SDKTransactionID: "sdk_trans_1",
		TimeoutMinutes:   5,
	}, RequestOptions{APIKey: "pk"})
	if err != nil {
		t.Fatalf("start auth: %v", err)
	}
	if result.Ares == nil || !result.Ares.ShouldChallenge() {
		t.Fatalf("expected challenge-mandated ares, got %+v", result)
	}
}
