// Package app implements the listener service: the state materializer that
// replays the shared log into per-party snapshots, and the streaming gateway
// that hands each observer the current snapshot plus the live tail.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/crowdcue/internal/party"
	"github.com/louisbranch/crowdcue/internal/party/event"
	"github.com/louisbranch/crowdcue/internal/platform/broker"
)

const retryInterval = 3 * time.Second

var tracer = otel.Tracer("github.com/louisbranch/crowdcue/internal/services/listener/app")

// Materializer is the single consumer of the shared log. It processes records
// strictly sequentially, which is what gives every party an in-order
// transition sequence given the broker's per-key ordering.
type Materializer struct {
	consumer broker.Consumer
	registry *Registry
}

// NewMaterializer creates a materializer writing into registry.
func NewMaterializer(consumer broker.Consumer, registry *Registry) *Materializer {
	return &Materializer{consumer: consumer, registry: registry}
}

// Run consumes the log until ctx ends or the log closes. On return every
// delivery queue is marked closed so pending readers terminate.
func (m *Materializer) Run(ctx context.Context) error {
	defer m.registry.Close()

	if err := m.subscribe(ctx); err != nil {
		return err
	}
	log.Printf("materializer consuming %s", broker.TopicPartyUpdatesPattern)

	for {
		recs, err := m.consumer.Poll(ctx)
		if err != nil {
			if errors.Is(err, broker.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			log.Printf("poll log: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryInterval):
			}
			continue
		}
		for _, rec := range recs {
			m.process(ctx, rec)
			// Skipped and rejected records are never retried, so every
			// record commits once processing finished.
			if err := m.consumer.Commit(ctx, rec); err != nil {
				log.Printf("commit offset %d: %v", rec.Offset, err)
			}
		}
	}
}

// subscribe establishes the log subscription, retrying on a fixed interval
// indefinitely. An unreachable broker at startup is an eventually-satisfiable
// precondition, not a fatal error.
func (m *Materializer) subscribe(ctx context.Context) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := m.consumer.Subscribe(ctx); err != nil {
			log.Printf("subscribe to log: %v", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(retryInterval)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		return fmt.Errorf("subscribe to log: %w", err)
	}
	return nil
}

// process applies one record. Malformed records and rejected events are
// logged and skipped; neither stalls consumption.
func (m *Materializer) process(ctx context.Context, rec broker.Record) {
	_, span := tracer.Start(ctx, "listener.materialize", trace.WithAttributes(
		attribute.String("messaging.kafka.message.key", rec.Key),
		attribute.Int64("messaging.kafka.message.offset", rec.Offset),
	))
	defer span.End()

	code, err := party.ParseCode(rec.Key)
	if err != nil {
		log.Printf("skip record at offset %d: bad routing key %q", rec.Offset, rec.Key)
		return
	}
	evt, err := event.Decode(rec.Value)
	if err != nil {
		span.RecordError(err)
		log.Printf("skip record at offset %d for party %s: %v", rec.Offset, code, err)
		return
	}
	span.SetAttributes(attribute.String("party.event.type", string(evt.EventType())))
	if _, accepted := m.registry.Apply(code, evt); !accepted {
		log.Printf("rejected %s for party %s", evt.EventType(), code)
	}
}
