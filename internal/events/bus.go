package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topic carries every entity change.
const Topic = "entity.changes"

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeEvent announces a committed write.
type ChangeEvent struct {
	ID       string      `json:"id"`
	Kind     domain.Kind `json:"kind"`
	Op       Op          `json:"op"`
	EntityID int64       `json:"entityId"`
	At       time.Time   `json:"at"`
}

func NewChangeEvent(kind domain.Kind, op Op, entityID int64) ChangeEvent {
	return ChangeEvent{
		ID:       uuid.NewString(),
		Kind:     kind,
		Op:       op,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
}

// Bus is an in-process pub/sub for change events.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, NewWatermillLogger(log)),
		log:    log,
	}
}

func (b *Bus) Publish(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	msg := message.NewMessage(ev.ID, payload)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Subscribe streams decoded events until ctx is done. Messages that fail to
// decode are acked and dropped.
func (b *Bus) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", Topic, err)
	}

	out := make(chan ChangeEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev ChangeEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.log.Warn("dropping undecodable change event", zap.String("message_uuid", msg.UUID), zap.Error(err))
				msg.Ack()
				continue
			}
			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
