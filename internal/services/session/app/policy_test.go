package app

import (
	"errors"
	"testing"

	"github.com/louisbranch/crowdcue/internal/auth"
	"github.com/louisbranch/crowdcue/internal/party"
	"github.com/louisbranch/crowdcue/internal/party/event"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

func TestCheckWritePolicy(t *testing.T) {
	playback := event.PlaybackChanged{Playback: party.Playback{Song: party.NewSong("t", "a", "sp1")}}
	cases := []struct {
		name      string
		role      auth.Role
		evt       event.Event
		forbidden bool
	}{
		{"guest cannot create", auth.RoleGuest, event.Created{Code: "ABC123"}, true},
		{"guest cannot drive playback", auth.RoleGuest, playback, true},
		{"guest can join", auth.RoleGuest, event.MemberJoined{UserID: "alice"}, false},
		{"guest can enqueue", auth.RoleGuest, event.SongEnqueued{Song: party.NewSong("t", "a", "sp1")}, false},
		{"guest can vote", auth.RoleGuest, event.SongVoteCast{UserID: "alice", SpotifyID: "sp1", Vote: party.VoteUp}, false},
		{"host can create", auth.RoleHost, event.Created{Code: "ABC123"}, false},
		{"host can drive playback", auth.RoleHost, playback, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckWritePolicy(tc.role, tc.evt)
			forbidden := errors.Is(err, apperrors.New(apperrors.CodePolicyForbidden, ""))
			if forbidden != tc.forbidden {
				t.Fatalf("forbidden = %v, want %v (err %v)", forbidden, tc.forbidden, err)
			}
		})
	}
}

func TestCheckWritePolicyRejectsNilEvent(t *testing.T) {
	if err := CheckWritePolicy(auth.RoleHost, nil); err == nil {
		t.Fatal("expected error for nil event")
	}
}
