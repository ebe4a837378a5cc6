package broker

import (
	"context"
	"sync"
)

// MemoryLog is an in-process implementation of the shared log, used by tests
// and local single-binary runs. It keeps one totally ordered record sequence,
// which trivially satisfies the per-key ordering the Kafka deployment
// provides through partitioning.
type MemoryLog struct {
	mu      sync.Mutex
	cond    *sync.Cond
	records []Record
	closed  bool
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	l := &MemoryLog{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Publish appends a record. The append under lock is the in-memory stand-in
// for a durable-commit acknowledgment.
func (l *MemoryLog) Publish(_ context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	rec.Offset = int64(len(l.records))
	l.records = append(l.records, rec)
	l.cond.Broadcast()
	return nil
}

// Close rejects further publishes and wakes all pending consumers.
func (l *MemoryLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.cond.Broadcast()
}

// NewConsumer attaches a consumer cursor starting at the earliest record.
func (l *MemoryLog) NewConsumer() *MemoryConsumer {
	return &MemoryConsumer{log: l}
}

// MemoryConsumer reads a MemoryLog from the start, tracking its own cursor
// and committed position.
type MemoryConsumer struct {
	log       *MemoryLog
	cursor    int64
	committed int64
}

// Subscribe implements Consumer. The in-memory log is always reachable.
func (c *MemoryConsumer) Subscribe(context.Context) error {
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	if c.log.closed {
		return ErrClosed
	}
	return nil
}

// Poll blocks until records past the cursor exist, the log closes, or ctx is
// done. Records already appended are drained even after Close.
func (c *MemoryConsumer) Poll(ctx context.Context) ([]Record, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.log.mu.Lock()
			c.log.cond.Broadcast()
			c.log.mu.Unlock()
		case <-done:
		}
	}()

	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if int(c.cursor) < len(c.log.records) {
			batch := make([]Record, len(c.log.records)-int(c.cursor))
			copy(batch, c.log.records[c.cursor:])
			c.cursor = int64(len(c.log.records))
			return batch, nil
		}
		if c.log.closed {
			return nil, ErrClosed
		}
		c.log.cond.Wait()
	}
}

// Commit advances the committed position past the given records.
func (c *MemoryConsumer) Commit(_ context.Context, recs ...Record) error {
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	for _, rec := range recs {
		if rec.Offset+1 > c.committed {
			c.committed = rec.Offset + 1
		}
	}
	return nil
}

// Committed reports how many records have been committed.
func (c *MemoryConsumer) Committed() int64 {
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	return c.committed
}

// Close implements Consumer. Closing the consumer closes the shared log so
// pending polls terminate; tests share one log per scenario.
func (c *MemoryConsumer) Close() {
	c.log.Close()
}
