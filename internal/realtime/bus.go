// Package realtime relays list change events through Redis pub/sub so every
// API instance can serve the websocket stream for any list.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const listEventChannelPrefix = "list:events:" // Channel per list: list:events:{list_id}

const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Event describes one change to a list or one of its items.
type Event struct {
	ListID     string    `json:"listId"`
	Collection string    `json:"collection"` // "lists" or "items"
	DocID      string    `json:"docId"`
	Kind       string    `json:"kind"`
	At         time.Time `json:"at"`
}

type Bus struct {
	client *redis.Client
}

func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, listEventChannel(ev.ListID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe streams events for one list until the returned cancel func is
// called. Undecodable payloads are logged and skipped.
func (b *Bus) Subscribe(ctx context.Context, listID string) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, listEventChannel(listID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to list events: %w", err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("dropping undecodable list event", "listID", listID, "error", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return events, cancel, nil
}

func listEventChannel(listID string) string {
	return fmt.Sprintf("%s%s", listEventChannelPrefix, listID)
}
