package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"cloud.google.com/go/pubsub"
)

// PubSubEmitter publishes alerts to a Google Pub/Sub topic so downstream
// responders (trusted-contact notifiers, case dashboards) can subscribe.
type PubSubEmitter struct {
	ctx    context.Context
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubEmitter connects to Pub/Sub. ctx should be the process lifetime
// context; publishes reuse it after the originating request ends.
func NewPubSubEmitter(ctx context.Context, projectID, topicID string) (*PubSubEmitter, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &PubSubEmitter{
		ctx:    ctx,
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

func (e *PubSubEmitter) Emit(alert Alert) {
	go func() {
		b, err := json.Marshal(alert)
		if err != nil {
			log.Printf("[WARN] pubsub alert marshal failed: %v", err)
			return
		}

		res := e.topic.Publish(e.ctx, &pubsub.Message{
			Data: b,
			Attributes: map[string]string{
				"kind":     string(alert.Kind),
				"severity": strconv.Itoa(alert.Severity),
			},
		})
		if _, err := res.Get(e.ctx); err != nil {
			log.Printf("[WARN] pubsub alert publish failed: %v", err)
		}
	}()
}

// Close flushes and releases the client.
func (e *PubSubEmitter) Close() error {
	e.topic.Stop()
	return e.client.Close()
}
