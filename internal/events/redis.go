// Package events publishes application workflow events on Redis pub/sub.
// The channel is the event type, so gateways can subscribe per kind.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"careers/listing-service/internal/kanban"
)

// Publisher implements kanban.EventPublisher.
type Publisher struct {
	rdb redis.UniversalClient
}

var _ kanban.EventPublisher = (*Publisher)(nil)

// NewPublisher returns a Publisher on rdb.
func NewPublisher(rdb redis.UniversalClient) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish sends ev as JSON on the channel named after its type.
func (p *Publisher) Publish(ctx context.Context, ev kanban.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, ev.Type, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Subscribe delivers every workflow event until ctx is done. The returned
// channel is closed when the subscription ends.
func Subscribe(ctx context.Context, rdb redis.UniversalClient) (<-chan kanban.Event, error) {
	sub := rdb.Subscribe(ctx, kanban.EventStatusChanged, kanban.EventNoteAdded, kanban.EventDeleted)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	out := make(chan kanban.Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev kanban.Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
