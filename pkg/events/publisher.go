package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/pkg/jobs"
)

// Well-known event topics emitted by the registration engine.
const (
	TopicSectionCreated        = "section.created"
	TopicScheduleAssigned      = "schedule.assigned"
	TopicStudentEnrolled       = "registration.enrolled"
	TopicStudentWithdrawn      = "registration.withdrawn"
	TopicRegistrationConfirmed = "registration.confirmed"
	TopicRegistrationStatus    = "registration.status-changed"
	TopicSemesterStarted       = "semester.started"
	TopicSemesterPaymentDue    = "semester.payment-due"
)

// Publisher delivers a domain event to external consumers. Delivery is
// best-effort, at-most-once; core correctness never depends on it.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// NopPublisher swallows all events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// RedisPublisher publishes JSON-encoded events to Redis channels.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher builds a publisher over the provided client. The prefix
// namespaces channels, e.g. "academic-core.registration.enrolled".
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", topic, err)
	}
	channel := topic
	if p.prefix != "" {
		channel = p.prefix + "." + topic
	}
	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", topic, err)
	}
	return nil
}

// AsyncPublisher moves publishes off the request path through a worker
// queue. Publish never blocks on the broker and never surfaces broker
// errors to the caller.
type AsyncPublisher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

type eventJob struct {
	Topic   string
	Payload interface{}
}

// NewAsyncPublisher wraps next with a queue of the given size.
func NewAsyncPublisher(next Publisher, workers, buffer int, logger *zap.Logger) *AsyncPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		ev, ok := job.Payload.(eventJob)
		if !ok {
			return fmt.Errorf("unexpected event payload type %T", job.Payload)
		}
		return next.Publish(ctx, ev.Topic, ev.Payload)
	}
	queue := jobs.NewQueue("domain-events", handler, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: buffer,
		Logger:     logger,
	})
	return &AsyncPublisher{queue: queue, logger: logger}
}

// Start launches the dispatch workers.
func (p *AsyncPublisher) Start(ctx context.Context) { p.queue.Start(ctx) }

// Stop drains the workers.
func (p *AsyncPublisher) Stop() { p.queue.Stop() }

// Publish implements Publisher.
func (p *AsyncPublisher) Publish(_ context.Context, topic string, payload interface{}) error {
	err := p.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    topic,
		Payload: eventJob{Topic: topic, Payload: payload},
	})
	if err != nil {
		p.logger.Sugar().Warnw("dropping domain event", "topic", topic, "error", err)
	}
	return nil
}
