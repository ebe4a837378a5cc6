package broker

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/louisbranch/crowdcue/internal/platform/broker")

// KafkaPublisher appends records to Kafka and waits for the broker's
// durable-commit acknowledgment on every publish.
type KafkaPublisher struct {
	client *kgo.Client
}

// NewKafkaPublisher connects a publisher to the given seed brokers.
func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("new kafka client: %w", err)
	}
	return &KafkaPublisher{client: client}, nil
}

// Publish produces one record synchronously. It returns nil only after the
// broker confirms the record is persisted.
func (p *KafkaPublisher) Publish(ctx context.Context, rec Record) error {
	ctx, span := tracer.Start(ctx, "broker.publish", trace.WithAttributes(
		attribute.String("messaging.destination.name", rec.Topic),
		attribute.String("messaging.kafka.message.key", rec.Key),
	))
	defer span.End()

	result := p.client.ProduceSync(ctx, &kgo.Record{
		Topic: rec.Topic,
		Key:   []byte(rec.Key),
		Value: rec.Value,
	})
	if err := result.FirstErr(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("produce to %s: %w", rec.Topic, err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// KafkaConsumer reads the party update topics as one consumer group member
// with auto-commit disabled.
type KafkaConsumer struct {
	brokers []string
	group   string
	pattern string
	client  *kgo.Client
}

// NewKafkaConsumer prepares a consumer; the connection is established by
// Subscribe so that startup can retry it.
func NewKafkaConsumer(brokers []string, group, pattern string) (*KafkaConsumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if group == "" {
		return nil, fmt.Errorf("consumer group is required")
	}
	if pattern == "" {
		pattern = TopicPartyUpdatesPattern
	}
	return &KafkaConsumer{brokers: brokers, group: group, pattern: pattern}, nil
}

// Subscribe connects to the brokers and joins the consumer group, consuming
// topics by name pattern from the earliest retained offset. It is safe to
// call again after a failure.
func (c *KafkaConsumer) Subscribe(ctx context.Context) error {
	if c.client != nil {
		return nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(c.brokers...),
		kgo.ConsumerGroup(c.group),
		kgo.ConsumeTopics(c.pattern),
		kgo.ConsumeRegex(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return fmt.Errorf("new kafka consumer: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return fmt.Errorf("ping kafka: %w", err)
	}
	c.client = client
	return nil
}

// Poll blocks for the next batch of records.
func (c *KafkaConsumer) Poll(ctx context.Context) ([]Record, error) {
	if c.client == nil {
		return nil, fmt.Errorf("consumer is not subscribed")
	}
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs := fetches.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("poll %s: %w", errs[0].Topic, errs[0].Err)
	}

	var recs []Record
	fetches.EachRecord(func(r *kgo.Record) {
		recs = append(recs, Record{
			Topic:     r.Topic,
			Key:       string(r.Key),
			Value:     r.Value,
			Partition: r.Partition,
			Offset:    r.Offset,
		})
	})
	return recs, nil
}

// Commit marks the given records as processed for the consumer group.
func (c *KafkaConsumer) Commit(ctx context.Context, recs ...Record) error {
	if c.client == nil {
		return fmt.Errorf("consumer is not subscribed")
	}
	if len(recs) == 0 {
		return nil
	}
	krecs := make([]*kgo.Record, 0, len(recs))
	for _, rec := range recs {
		krecs = append(krecs, &kgo.Record{
			Topic:     rec.Topic,
			Partition: rec.Partition,
			Offset:    rec.Offset,
		})
	}
	if err := c.client.CommitRecords(ctx, krecs...); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

// Close leaves the group and releases the client.
func (c *KafkaConsumer) Close() {
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}
