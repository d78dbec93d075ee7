package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus carries events inside the process over a watermill go channel.
// It is the bus of last resort when no broker is reachable.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

func NewChannelBus(pubSub *gochannel.GoChannel) *ChannelBus {
	return &ChannelBus{pubSub: pubSub}
}

func (b *ChannelBus) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(NewEvent(event.EventType(), event.Payload(), event.Timestamp()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	return b.pubSub.Publish(Subject(event.EventType()), msg)
}

// Subscribe consumes one event type until ctx is done
func (b *ChannelBus) Subscribe(ctx context.Context, eventType string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, Subject(eventType))
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var event BaseEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				// malformed messages are dropped rather than redelivered forever
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	return nil
}
var _ Subscriber = (*ChannelBus)(nil)
