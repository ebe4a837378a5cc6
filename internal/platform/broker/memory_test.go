package broker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLogOrdering(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		rec := Record{Topic: TopicPartyUpdates, Key: "ABC123", Value: []byte(v)}
		if err := log.Publish(ctx, rec); err != nil {
			t.Fatalf("publish %s: %v", v, err)
		}
	}

	consumer := log.NewConsumer()
	if err := consumer.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	recs, err := consumer.Poll(ctx)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(recs[i].Value) != want {
			t.Fatalf("record %d = %q, want %q", i, recs[i].Value, want)
		}
	}
}

func TestMemoryConsumerBlocksUntilPublish(t *testing.T) {
	log := NewMemoryLog()
	consumer := log.NewConsumer()
	ctx := context.Background()

	got := make(chan []Record, 1)
	go func() {
		recs, err := consumer.Poll(ctx)
		if err != nil {
			t.Errorf("poll: %v", err)
			return
		}
		got <- recs
	}()

	time.Sleep(10 * time.Millisecond)
	if err := log.Publish(ctx, Record{Key: "ABC123", Value: []byte("x")}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case recs := <-got:
		if len(recs) != 1 || string(recs[0].Value) != "x" {
			t.Fatalf("unexpected records: %v", recs)
		}
	case <-time.After(time.Second):
		t.Fatal("poll did not wake after publish")
	}
}

func TestMemoryConsumerPollHonorsContext(t *testing.T) {
	log := NewMemoryLog()
	consumer := log.NewConsumer()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := consumer.Poll(ctx)
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poll did not terminate on cancel")
	}
}

func TestMemoryLogCloseDrainsThenReportsClosed(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()
	if err := log.Publish(ctx, Record{Key: "ABC123", Value: []byte("x")}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	log.Close()

	if err := log.Publish(ctx, Record{Key: "ABC123", Value: []byte("y")}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on publish after close, got %v", err)
	}

	consumer := log.NewConsumer()
	recs, err := consumer.Poll(ctx)
	if err != nil {
		t.Fatalf("poll should drain pending records, got %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if _, err := consumer.Poll(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after drain, got %v", err)
	}
}

func TestMemoryConsumerCommitTracksHighWater(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := log.Publish(ctx, Record{Key: "ABC123"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	consumer := log.NewConsumer()
	recs, err := consumer.Poll(ctx)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if err := consumer.Commit(ctx, recs...); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := consumer.Committed(); got != 3 {
		t.Fatalf("committed = %d, want 3", got)
	}
}
