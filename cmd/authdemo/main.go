// Command authdemo drives one confirmation and 3DS2 challenge end to
// end against an in-process sandbox API and the simulated challenge
// engine, printing the relayed outcome. It is the reference wiring for
// embedding the SDK.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/meridianpay/meridian-go/internal/runner"
	"github.com/meridianpay/meridian-go/internal/telemetry"
	"github.com/meridianpay/meridian-go/pkg/analytics"
	"github.com/meridianpay/meridian-go/pkg/intents"
	"github.com/meridianpay/meridian-go/pkg/payauth"
	"github.com/meridianpay/meridian-go/pkg/redirect"
	"github.com/meridianpay/meridian-go/pkg/relay"
	"github.com/meridianpay/meridian-go/pkg/threeds2"
	"github.com/meridianpay/meridian-go/pkg/transport"
)

const demoClientSecret = "pi_demo_123_secret_456"

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			newLogger,
			newEmitter,
			newDispatcher,
			newResultInbox,
			newRelayLauncher,
			newRedirectLauncher,
			newEngine,
			newRepository,
			newController,
		),
		fx.Invoke(setupTelemetry, runDemo),
	)
	app.Run()
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newEmitter(logger *slog.Logger) analytics.Emitter {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := getEnv("ANALYTICS_TOPIC", "sdk-analytics.v1")
		logger.Info("publishing analytics to kafka", "brokers", brokers, "topic", topic)
		return analytics.NewKafkaEmitter(strings.Split(brokers, ","), topic, logger)
	}
	return logEmitter{logger}
}

// logEmitter prints each analytics event instead of shipping it.
type logEmitter struct{ logger *slog.Logger }

func (e logEmitter) Emit(ctx context.Context, event analytics.Event) {
	e.logger.Info("analytics", "event", string(event.Name))
}

func newDispatcher(lc fx.Lifecycle) *runner.Serial {
	d := runner.NewSerial()
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		d.Close()
		return nil
	}})
	return d
}

// resultInbox is the demo's result-dispatch mechanism: launched
// surfaces deliver payloads here and runDemo consumes them.
type resultInbox struct {
	payloads chan relay.Payload
}

func newResultInbox() *resultInbox {
	return &resultInbox{payloads: make(chan relay.Payload, 4)}
}

func (in *resultInbox) Deliver(payload relay.Payload) {
	in.payloads <- payload
}

func newRelayLauncher(lc fx.Lifecycle, inbox *resultInbox, logger *slog.Logger) (*relay.Launcher, error) {
	store, err := newPayloadStore(lc, logger)
	if err != nil {
		return nil, err
	}
	return relay.NewLauncher(store, inbox, logger), nil
}

// newPayloadStore prefers the durable Postgres store when configured,
// falling back to the in-memory store.
func newPayloadStore(lc fx.Lifecycle, logger *slog.Logger) (relay.Store, error) {
	host := os.Getenv("RELAY_DB_HOST")
	if host == "" {
		return relay.NewMemoryStore(), nil
	}
	store, err := relay.OpenPostgresStore(relay.DatabaseConfig{
		Host:     host,
		Port:     5432,
		Database: getEnv("RELAY_DB_NAME", "meridian"),
		User:     getEnv("RELAY_DB_USER", "meridian"),
		Password: os.Getenv("RELAY_DB_PASSWORD"),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("using durable relay payload store", "host", host)
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return store.Close() }})
	return store, nil
}

func newRedirectLauncher(logger *slog.Logger) *redirect.Launcher {
	browser := redirect.BrowserFunc(func(requestCode int, data redirect.Data) error {
		logger.Info("redirect surface opened", "request_code", requestCode, "url", data.AuthURL)
		return nil
	})
	return redirect.NewLauncher(payauth.DefaultRequestCode, browser, logger)
}

func newEngine() threeds2.Service {
	return &threeds2.StubService{
		Outcome: threeds2.StubCompleteSuccess,
		Delay:   200 * time.Millisecond,
	}
}

func newController(repo transport.Repository, engine threeds2.Service,
	emitter analytics.Emitter, relayLauncher *relay.Launcher,
	redirectLauncher *redirect.Launcher, dispatcher *runner.Serial,
	logger *slog.Logger) (*payauth.Controller, error) {

	cfg := payauth.DefaultConfig()
	cfg.ChallengeDelay = 100 * time.Millisecond
	return payauth.NewController(payauth.ControllerParams{
		Config:     cfg,
		Repository: repo,
		Service:    engine,
		Emitter:    emitter,
		Relay:      relayLauncher,
		Redirect:   redirectLauncher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
}

func setupTelemetry(lc fx.Lifecycle, logger *slog.Logger) {
	var shutdown func(context.Context) error
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var err error
			shutdown, err = telemetry.InitTracer("meridian-authdemo")
			if err != nil {
				logger.Warn("telemetry disabled", "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown != nil {
				return shutdown(ctx)
			}
			return nil
		},
	})
}

func runDemo(lc fx.Lifecycle, controller *payauth.Controller, inbox *resultInbox,
	logger *slog.Logger, shutdowner fx.Shutdowner) {

	lc.Append(fx.Hook{OnStart: func(context.Context) error {
		go func() {
			opts := transport.RequestOptions{APIKey: getEnv("MERIDIAN_API_KEY", "pk_test_demo")}
			controller.ConfirmAndAuthenticate(payauth.AlwaysAlive{}, intents.ConfirmParams{
				ClientSecret:    demoClientSecret,
				PaymentMethodID: "pm_card_demo",
			}, opts)

			payload := <-inbox.payloads
			if !controller.ShouldHandleResult(payload.RequestCode, &payload) {
				logger.Error("payload for unexpected request code", "code", payload.RequestCode)
				_ = shutdowner.Shutdown()
				return
			}
			done := make(chan struct{})
			controller.HandleReturn(payload, opts, demoCallback{logger: logger, done: done})
			<-done
			_ = shutdowner.Shutdown()
		}()
		return nil
	}})
}

type demoCallback struct {
	logger *slog.Logger
	done   chan struct{}
}

func (cb demoCallback) OnSuccess(result payauth.IntentResult) {
	cb.logger.Info("authentication finished",
		"intent", result.Intent.ID,
		"status", string(result.Intent.Status),
		"outcome", result.Outcome.String(),
	)
	close(cb.done)
}

func (cb demoCallback) OnError(err error) {
	cb.logger.Error("authentication failed", "error", err)
	close(cb.done)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// sandboxRepository simulates the API: confirm returns a 3DS2 next
// action, start-auth mandates a challenge, complete-auth settles the
// intent.
type sandboxRepository struct {
	completed bool
}

func newRepository() transport.Repository {
	return &sandboxRepository{}
}

func (s *sandboxRepository) ConfirmIntent(ctx context.Context, params intents.ConfirmParams, opts transport.RequestOptions) (*intents.Intent, error) {
	sdkData, _ := json.Marshal(map[string]any{
		"type":                    "three_d_secure_2_fingerprint",
		"three_d_secure_2_source": "src_demo_1",
		"directory_server_name":   "visa",
		"server_transaction_id":   "f45e2a10-33cf-4f34-8f4c-f34f1dcb0a8b",
	})
	intentID, err := intents.IDFromClientSecret(params.ClientSecret)
	if err != nil {
		return nil, err
	}
	var data intents.SDKData
	if err := json.Unmarshal(sdkData, &data); err != nil {
		return nil, err
	}
	return &intents.Intent{
		ID:           intentID,
		Object:       "payment_intent",
		ClientSecret: params.ClientSecret,
		Status:       intents.StatusRequiresAction,
		NextAction: &intents.NextAction{
			Type:   intents.NextActionUseSDK,
			UseSDK: &data,
		},
	}, nil
}

func (s *sandboxRepository) RetrieveIntent(ctx context.Context, clientSecret string, opts transport.RequestOptions) (*intents.Intent, error) {
	intentID, err := intents.IDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	status := intents.StatusRequiresAction
	if s.completed {
		status = intents.StatusSucceeded
	}
	return &intents.Intent{
		ID:           intentID,
		Object:       "payment_intent",
		ClientSecret: clientSecret,
		Status:       status,
	}, nil
}

func (s *sandboxRepository) Start3DS2Auth(ctx context.Context, params intents.AuthParams, opts transport.RequestOptions) (*intents.AuthResult, error) {
	return &intents.AuthResult{
		ID:     "threeds2_demo_1",
		Source: params.SourceID,
		State:  "challenge_required",
		Ares: &intents.ARes{
			ThreeDSServerTransID: "f45e2a10-33cf-4f34-8f4c-f34f1dcb0a8b",
			ACSChallengeMandated: "Y",
			ACSSignedContent:     "eyJhbGciOiJFUzI1NiJ9.demo",
			ACSTransID:           "dd23c757-211a-4c1b-add5-06a1450a642e",
			MessageVersion:       threeds2.MessageVersion,
			SDKTransID:           params.SDKTransactionID,
		},
	}, nil
}

func (s *sandboxRepository) Complete3DS2Auth(ctx context.Context, sourceID string, opts transport.RequestOptions) (bool, error) {
	s.completed = true
	return true, nil
}
