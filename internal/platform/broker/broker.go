// Package broker abstracts the shared, key-partitioned event log.
//
// All party events land on one shared topic; the record key is the party
// join code, so the broker's key partitioning keeps every party's events in
// one ordered partition. Correctness of downstream materialization depends
// on that, which is why the key is never randomized.
package broker

import (
	"context"
	"errors"
)

// TopicPartyUpdates is the shared topic carrying all party events.
const TopicPartyUpdates = "party-updates"

// TopicPartyUpdatesPattern matches the party update topics on subscribe, so
// a later split into per-party topics needs no consumer change.
const TopicPartyUpdatesPattern = "^party-updates"

// ErrClosed indicates the log or consumer has been closed.
var ErrClosed = errors.New("broker: closed")

// Record is one record on the log.
type Record struct {
	Topic     string
	Key       string
	Value     []byte
	Partition int32
	Offset    int64
}

// Publisher appends records to the log. Publish returns nil only once the
// broker acknowledges durable persistence, never on local buffering alone.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
	Close()
}

// Consumer reads records from the log in per-key order.
//
// Subscribe establishes the subscription and may be retried; Poll blocks
// until records arrive, the consumer is closed, or ctx is done. Commit marks
// records as processed. Auto-commit is disabled everywhere: the materializer
// owns the commit policy.
type Consumer interface {
	Subscribe(ctx context.Context) error
	Poll(ctx context.Context) ([]Record, error)
	Commit(ctx context.Context, recs ...Record) error
	Close()
}
