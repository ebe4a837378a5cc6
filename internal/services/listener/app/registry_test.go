package app

import (
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/crowdcue/internal/party"
	"github.com/louisbranch/crowdcue/internal/party/event"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

const waitTimeout = 2 * time.Second

func recvState(t *testing.T, updates <-chan party.State) party.State {
	t.Helper()
	select {
	case state, open := <-updates:
		if !open {
			t.Fatal("updates channel closed unexpectedly")
		}
		return state
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a state transition")
	}
	return party.State{}
}

func recvClosed(t *testing.T, updates <-chan party.State) {
	t.Helper()
	select {
	case state, open := <-updates:
		if open {
			t.Fatalf("expected channel close, got state for %q", state.JoinCode)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestApplyMaterializesState(t *testing.T) {
	reg := NewRegistry()
	state, accepted := reg.Apply("ABC123", event.Created{Code: "ABC123", PartyName: "Friday", HostID: "host1"})
	if !accepted {
		t.Fatal("creation event must be accepted")
	}
	if state.PartyName != "Friday" || state.HostID != "host1" {
		t.Fatalf("unexpected state: %+v", state)
	}

	latest, ok := reg.Latest("ABC123")
	if !ok {
		t.Fatal("expected materialized state")
	}
	if latest.PartyID != state.PartyID {
		t.Fatal("latest snapshot differs from applied state")
	}
}

func TestApplyBeforeCreationIsRejected(t *testing.T) {
	reg := NewRegistry()

	events := []event.Event{
		event.MemberJoined{UserID: "alice"},
		event.SongEnqueued{Song: party.NewSong("t", "a", "sp1")},
		event.SongVoteCast{UserID: "alice", SpotifyID: "sp1", Vote: party.VoteUp},
		event.PlaybackChanged{},
	}
	for _, evt := range events {
		if _, accepted := reg.Apply("ZZZ999", evt); accepted {
			t.Fatalf("%s must not seed state for a party that was never created", evt.EventType())
		}
	}
	if _, ok := reg.Latest("ZZZ999"); ok {
		t.Fatal("no state may be materialized before the creation event")
	}
	if _, _, err := reg.Subscribe("ZZZ999"); !errors.Is(err, apperrors.New(apperrors.CodePartyNotReady, "")) {
		t.Fatalf("expected not-ready error, got %v", err)
	}

	// Creation still seeds state, and later events apply normally.
	if _, accepted := reg.Apply("ZZZ999", event.Created{Code: "ZZZ999", PartyName: "Late", HostID: "host1"}); !accepted {
		t.Fatal("creation event must be accepted")
	}
	state, accepted := reg.Apply("ZZZ999", event.MemberJoined{UserID: "alice"})
	if !accepted || !state.HasMember("alice") {
		t.Fatalf("join after creation must apply, got accepted=%v state=%+v", accepted, state)
	}
}

func TestSubscribeNotReady(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.Subscribe("ZZZ999")
	if !errors.Is(err, apperrors.New(apperrors.CodePartyNotReady, "")) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}

func TestSubscribeSnapshotThenTail(t *testing.T) {
	reg := NewRegistry()
	reg.Apply("ABC123", event.Created{Code: "ABC123", PartyName: "Friday", HostID: "host1"})
	reg.Apply("ABC123", event.MemberJoined{UserID: "alice"})

	snapshot, obs, err := reg.Subscribe("ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer reg.unsubscribe("ABC123", obs)

	if !snapshot.HasMember("alice") {
		t.Fatal("snapshot must reflect every transition applied before subscribing")
	}
	select {
	case state := <-obs.Updates():
		t.Fatalf("received pre-subscription history: %+v", state)
	case <-time.After(50 * time.Millisecond):
	}

	reg.Apply("ABC123", event.MemberJoined{UserID: "bob"})
	next := recvState(t, obs.Updates())
	if !next.HasMember("bob") {
		t.Fatal("tail must deliver the transition applied after subscribing")
	}
}

func TestRejectedEventNotDelivered(t *testing.T) {
	reg := NewRegistry()
	reg.Apply("ABC123", event.Created{Code: "ABC123", PartyName: "Friday", HostID: "host1"})
	reg.Apply("ABC123", event.MemberJoined{UserID: "alice"})

	_, obs, err := reg.Subscribe("ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer reg.unsubscribe("ABC123", obs)

	if _, accepted := reg.Apply("ABC123", event.MemberJoined{UserID: "alice"}); accepted {
		t.Fatal("duplicate join must be rejected")
	}
	select {
	case state := <-obs.Updates():
		t.Fatalf("rejected event must not be delivered, got %+v", state)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEveryObserverReceivesEveryTransition(t *testing.T) {
	reg := NewRegistry()
	reg.Apply("ABC123", event.Created{Code: "ABC123", PartyName: "Friday", HostID: "host1"})

	_, first, err := reg.Subscribe("ABC123")
	if err != nil {
		t.Fatalf("subscribe first: %v", err)
	}
	_, second, err := reg.Subscribe("ABC123")
	if err != nil {
		t.Fatalf("subscribe second: %v", err)
	}

	reg.Apply("ABC123", event.MemberJoined{UserID: "alice"})
	for _, obs := range []*observer{first, second} {
		if state := recvState(t, obs.Updates()); !state.HasMember("alice") {
			t.Fatal("observer missed a transition")
		}
	}

	reg.unsubscribe("ABC123", first)
	recvClosed(t, first.Updates())

	reg.Apply("ABC123", event.MemberJoined{UserID: "bob"})
	if state := recvState(t, second.Updates()); !state.HasMember("bob") {
		t.Fatal("remaining observer must be unaffected by another's cancel")
	}
	reg.unsubscribe("ABC123", second)
}

func TestSlowObserverNeverBlocksApply(t *testing.T) {
	reg := NewRegistry()
	reg.Apply("ABC123", event.Created{Code: "ABC123", PartyName: "Friday", HostID: "host1"})

	_, obs, err := reg.Subscribe("ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer reg.unsubscribe("ABC123", obs)

	const transitions = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < transitions; i++ {
			reg.Apply("ABC123", event.SongEnqueued{
				Song: party.NewSong("t", "a", party.NewCode().String()),
			})
		}
	}()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("apply blocked on an undrained observer")
	}

	var prev int
	for i := 0; i < transitions; i++ {
		state := recvState(t, obs.Updates())
		if len(state.SongQueue) <= prev {
			t.Fatalf("transition %d out of order: queue len %d after %d",
				i, len(state.SongQueue), prev)
		}
		prev = len(state.SongQueue)
	}
}

func TestCloseTerminatesObserversAndSubscriptions(t *testing.T) {
	reg := NewRegistry()
	reg.Apply("ABC123", event.Created{Code: "ABC123", PartyName: "Friday", HostID: "host1"})

	_, obs, err := reg.Subscribe("ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	reg.Close()
	recvClosed(t, obs.Updates())

	if _, _, err := reg.Subscribe("ABC123"); err == nil {
		t.Fatal("subscribe after close must fail")
	}
	if _, accepted := reg.Apply("ABC123", event.MemberJoined{UserID: "alice"}); accepted {
		t.Fatal("apply after close must be a no-op")
	}
}
