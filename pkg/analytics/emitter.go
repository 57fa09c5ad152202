package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Emitter delivers analytics events. Implementations must never block
// the payment flow or surface errors to it.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(ctx context.Context, event Event) {}

const defaultEndpoint = "https://q.meridianpay.com/v1/track"

// HTTPEmitter posts each event to the analytics endpoint on its own
// goroutine. Failures are logged at debug level and otherwise dropped.
type HTTPEmitter struct {
	Endpoint string
	Client   *http.Client
	Logger   *slog.Logger
}

func NewHTTPEmitter(logger *slog.Logger) *HTTPEmitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPEmitter{
		Endpoint: defaultEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
	}
}

func (e *HTTPEmitter) Emit(ctx context.Context, event Event) {
	go func() {
		body, err := json.Marshal(event.Params)
		if err != nil {
			e.Logger.Debug("analytics event not encodable", "event", event.Name, "error", err)
			return
		}
		query := url.Values{"payload": {string(body)}}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			e.Endpoint+"?"+query.Encode(), nil)
		if err != nil {
			e.Logger.Debug("analytics request not buildable", "event", event.Name, "error", err)
			return
		}
		resp, err := e.Client.Do(req)
		if err != nil {
			e.Logger.Debug("analytics delivery failed", "event", event.Name, "error", err)
			return
		}
		resp.Body.Close()
	}()
}
