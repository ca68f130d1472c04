package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"google.golang.org/api/option"
)

type TopicResolver interface {
	Topic(alias string) string
}

// Publisher publishes to Pub/Sub topics addressed by ID or by a configured alias.
type Publisher struct {
	client   *pubsub.Client
	resolver TopicResolver

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// NewPublisher detects the project from the credentials when projectID is empty.
func NewPublisher(ctx context.Context, projectID string, resolver TopicResolver, opts ...option.ClientOption) (*Publisher, error) {
	if projectID == "" {
		projectID = pubsub.DetectProjectID
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:   client,
		resolver: resolver,
		topics:   make(map[string]*pubsub.Topic),
	}, nil
}

func (p *Publisher) topic(alias string) *pubsub.Topic {
	id := alias
	if p.resolver != nil {
		id = p.resolver.Topic(alias)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.topics[id]
	if !ok {
		t = p.client.Topic(id)
		p.topics[id] = t
	}
	return t
}

// Publish blocks until the server acknowledged the message and returns its server ID.
func (p *Publisher) Publish(ctx context.Context, topic string, data []byte, attributes map[string]string) (string, error) {
	if topic == "" {
		return "", fmt.Errorf("%w - topic is required", lib.BadUserInputError)
	}

	result := p.topic(topic).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing to %s: %w", topic, err)
	}

	slog.DebugContext(ctx, "message published", "topic", topic, "server_id", serverID, "bytes", len(data))
	return serverID, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	for _, t := range p.topics {
		t.Stop()
	}
	p.topics = make(map[string]*pubsub.Topic)
	p.mu.Unlock()

	return p.client.Close()
}
