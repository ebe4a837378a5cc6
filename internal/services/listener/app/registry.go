package app

import (
	"fmt"
	"sync"

	"github.com/louisbranch/crowdcue/internal/party"
	"github.com/louisbranch/crowdcue/internal/party/event"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

// Registry maps join codes to their latest materialized state and live
// observers. It is shared between the materializer, the sole writer, and the
// gateway's readers. Get-or-create is atomic so the first event for a party
// and the first listen request can arrive in either order.
type Registry struct {
	mu      sync.Mutex
	entries map[party.Code]*entry
	closed  bool
}

type entry struct {
	latest    *party.State
	observers map[*observer]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[party.Code]*entry)}
}

// entryFor returns the entry for code, creating it if needed. Callers must
// hold r.mu.
func (r *Registry) entryFor(code party.Code) *entry {
	e, ok := r.entries[code]
	if !ok {
		e = &entry{observers: make(map[*observer]struct{})}
		r.entries[code] = e
	}
	return e
}

// Apply runs evt against the entry's last-known state. On acceptance the new
// snapshot replaces the old one and is queued to every live observer; on
// rejection nothing changes and nothing is delivered.
func (r *Registry) Apply(code party.Code, evt event.Event) (party.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return party.State{}, false
	}

	e := r.entryFor(code)
	// Only the creation event seeds state. Any other variant arriving before
	// a party exists is rejected, never applied against an empty snapshot.
	if e.latest == nil && evt.EventType() != event.TypeCreated {
		return party.State{}, false
	}
	var base party.State
	if e.latest != nil {
		base = *e.latest
	}
	next, accepted := evt.Apply(base)
	if !accepted {
		return base, false
	}
	e.latest = &next
	for obs := range e.observers {
		obs.push(next)
	}
	return next, true
}

// Latest returns the party's current snapshot, if any state has been
// materialized for it.
func (r *Registry) Latest(code party.Code) (party.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[code]
	if !ok || e.latest == nil {
		return party.State{}, false
	}
	return *e.latest, true
}

// Subscribe registers a new observer and returns the current snapshot. The
// snapshot read and the registration happen under one lock, so the observer
// sees every transition after the snapshot exactly once and none before it.
// A party with no materialized state yet is reported as not ready.
func (r *Registry) Subscribe(code party.Code) (party.State, *observer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return party.State{}, nil, fmt.Errorf("subscription registry is closed")
	}

	e := r.entryFor(code)
	if e.latest == nil {
		return party.State{}, nil, apperrors.WithMetadata(apperrors.CodePartyNotReady,
			"no state materialized for party yet",
			map[string]string{"party_code": code.String()})
	}
	obs := newObserver()
	e.observers[obs] = struct{}{}
	return *e.latest, obs, nil
}

// unsubscribe detaches obs and stops its delivery. Other observers of the
// same party are unaffected.
func (r *Registry) unsubscribe(code party.Code, obs *observer) {
	r.mu.Lock()
	if e, ok := r.entries[code]; ok {
		delete(e.observers, obs)
	}
	r.mu.Unlock()
	obs.close()
}

// Close marks every delivery queue closed so pending readers terminate
// instead of hanging. Further Apply and Subscribe calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, e := range r.entries {
		for obs := range e.observers {
			obs.close()
		}
		e.observers = make(map[*observer]struct{})
	}
}

// observer is one connected reader's delivery queue. The queue is unbounded
// so a slow or stalled reader never blocks the materializer; a pump goroutine
// feeds the outbound channel at whatever pace the reader drains it.
type observer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []party.State
	closed bool
	out    chan party.State
	done   chan struct{}
}

func newObserver() *observer {
	o := &observer{
		out:  make(chan party.State),
		done: make(chan struct{}),
	}
	o.cond = sync.NewCond(&o.mu)
	go o.pump()
	return o
}

// Updates is the live tail. The channel closes when the observer is detached
// or the registry shuts down.
func (o *observer) Updates() <-chan party.State { return o.out }

func (o *observer) push(state party.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.queue = append(o.queue, state)
	o.cond.Signal()
}

func (o *observer) close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.cond.Signal()
	o.mu.Unlock()
	close(o.done)
}

func (o *observer) pump() {
	for {
		o.mu.Lock()
		for len(o.queue) == 0 && !o.closed {
			o.cond.Wait()
		}
		if len(o.queue) == 0 {
			o.mu.Unlock()
			close(o.out)
			return
		}
		next := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()

		select {
		case o.out <- next:
		case <-o.done:
			close(o.out)
			return
		}
	}
}
