package producer

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
)

// publishEvent writes one outbox row to its topic. The aggregate id keys
// the message so decisions for the same request stay ordered per partition.
func publishEvent(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
	}

	return writer.WriteMessages(ctx, kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	})
}
