package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Envelope is the event schema the Kafka emitter publishes. Keep it
// small and stable.
type Envelope struct {
	EventType    string         `json:"eventType"`
	EventVersion string         `json:"eventVersion"`
	OccurredAt   time.Time      `json:"occurredAt"`
	IntentID     string         `json:"intentId"`
	Data         map[string]any `json:"data"`
}

// KafkaEmitter publishes SDK analytics into a Kafka topic, for
// server-side embedders that drain events into their own bus. Like
// every emitter it is fire-and-forget.
type KafkaEmitter struct {
	w      *kafka.Writer
	topic  string
	logger *slog.Logger
}

func NewKafkaEmitter(brokers []string, topic string, logger *slog.Logger) *KafkaEmitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &KafkaEmitter{
		w: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Balancer: &kafka.Hash{}, // partition by intent id
		}),
		topic:  topic,
		logger: logger,
	}
}

func (e *KafkaEmitter) Close() error { return e.w.Close() }

func (e *KafkaEmitter) Emit(ctx context.Context, event Event) {
	intentID, _ := event.Params["intent_id"].(string)
	envelope := Envelope{
		EventType:    string(event.Name),
		EventVersion: "1.0",
		OccurredAt:   time.Now().UTC(),
		IntentID:     intentID,
		Data:         event.Params,
	}
	val, _ := json.Marshal(envelope)

	go func() {
		err := e.w.WriteMessages(ctx, kafka.Message{
			Topic: e.topic,
			Key:   []byte(intentID),
			Value: val,
		})
		if err != nil {
			e.logger.Debug("analytics publish failed", "event", event.Name, "error", err)
		}
	}()
}
