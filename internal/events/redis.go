package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const streamPrefix = "events:"

// StreamNotifier publishes events onto Redis Streams, one stream per event kind
// (events:card_registered, events:transaction_processed, ...). Consumers read
// each kind independently; the stream preserves per-kind ordering.
type StreamNotifier struct {
	client *redis.Client
	maxLen int64
}

// NewStreamNotifier builds a Redis Streams notifier. maxLen bounds each stream
// approximately; zero keeps streams unbounded.
func NewStreamNotifier(client *redis.Client, maxLen int64) *StreamNotifier {
	return &StreamNotifier{client: client, maxLen: maxLen}
}

// Publish appends the event to the stream for its kind.
func (n *StreamNotifier) Publish(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamPrefix + kind,
		Values: map[string]any{"kind": kind, "payload": string(body)},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}

	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", kind, err)
	}
	return nil
}
