package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"delivery-scheduler-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	contexts []jetstream.ConsumeContext
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a handler for one event type.
// With a durable name the consumer is shared and messages are acked explicitly;
// without one every instance gets its own ordered consumer starting at new messages.
func (s *Subscriber) Subscribe(ctx context.Context, eventType string, durableName string, handler events.Handler) error {
	subject := events.Subject(eventType)

	var (
		consumer jetstream.Consumer
		err      error
	)
	if durableName != "" {
		consumer, err = s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
			Durable:       durableName,
			FilterSubject: subject,
			AckPolicy:     jetstream.AckExplicitPolicy,
		})
	} else {
		consumer, err = s.js.OrderedConsumer(ctx, StreamName, jetstream.OrderedConsumerConfig{
			FilterSubjects: []string{subject},
			DeliverPolicy:  jetstream.DeliverNewPolicy,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := decode(msg)
		if err != nil {
			log.Printf("Error unmarshalling event data: %v", err)
			// ordered consumers do not accept acks
			if durableName != "" {
				msg.Term()
			}
			return
		}

		if err := handler(context.Background(), event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			if durableName != "" {
				msg.Nak() // Retry
			}
			return
		}

		if durableName != "" {
			msg.Ack()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.contexts = append(s.contexts, consumeCtx)

	log.Printf("Subscribed to %s (durable=%q)", subject, durableName)
	return nil
}

func decode(msg jetstream.Msg) (events.BaseEvent, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		return events.BaseEvent{}, err
	}

	eventType := msg.Headers().Get(headerEventType)
	if eventType == "" {
		eventType = strings.TrimPrefix(msg.Subject(), events.SubjectPrefix+".")
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, msg.Headers().Get(headerOccurredAt))
	if err != nil {
		occurredAt = time.Now()
	}

	return events.NewEvent(eventType, payload, occurredAt), nil
}

// Close stops every consumer and closes the connection.
func (s *Subscriber) Close() {
	for _, c := range s.contexts {
		c.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

// Broadcast subscribes with per-instance ordered consumers, so every running
// instance sees every event
func (s *Subscriber) Broadcast() events.Subscriber {
	return broadcast{s}
}

type broadcast struct {
	s *Subscriber
}

func (b broadcast) Subscribe(ctx context.Context, eventType string, handler events.Handler) error {
	return b.s.Subscribe(ctx, eventType, "", handler)
}
