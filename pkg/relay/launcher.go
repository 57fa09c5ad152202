package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Sink is the host's own result-dispatch mechanism. Deliver hands a
// payload to whatever re-enters the caller's result handling,
// demultiplexed by the payload's request code.
type Sink interface {
	Deliver(payload Payload)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(payload Payload)

func (f SinkFunc) Deliver(payload Payload) { f(payload) }

// Launcher starts the relay surface: it persists the payload for
// safe-keeping until the caller re-enters, then hands it to the host's
// result dispatch. Fire-and-forget from the orchestrator's perspective.
type Launcher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

// NewLauncher builds a relay launcher. store may be nil for hosts that
// never leave the process.
func NewLauncher(store Store, sink Sink, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Launcher{store: store, sink: sink, logger: logger}
}

// Start relays the payload. The payload is stored before delivery so a
// recreated host can recover it; a storage failure does not block
// in-process delivery.
func (l *Launcher) Start(payload Payload) {
	if err := payload.Validate(); err != nil {
		l.logger.Error("refusing to relay invalid payload", "error", err)
		return
	}
	if l.store != nil {
		if err := l.store.Put(context.Background(), payload); err != nil && !errors.Is(err, ErrAlreadyStored) {
			l.logger.Warn("relay payload not persisted", "payload_id", payload.ID, "error", err)
		}
	}
	l.sink.Deliver(payload)
}
