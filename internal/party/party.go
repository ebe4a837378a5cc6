// Package party holds the immutable party state model and its transition
// helpers. The package is pure: no I/O, no clocks beyond construction.
package party

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CodeLength is the fixed length of a join code.
const CodeLength = 6

// ErrInvalidCode indicates a join code that is not exactly six characters.
var ErrInvalidCode = errors.New("party code must be exactly 6 characters")

// Code is a short, human-shareable party identifier. It doubles as the
// routing key on the event log, so all events for one party land in the
// same ordered partition.
type Code string

// NewCode derives a fresh join code from a random UUID.
func NewCode() Code {
	return Code(strings.ToUpper(uuid.NewString())[:CodeLength])
}

// ParseCode validates a raw string as a join code.
func ParseCode(raw string) (Code, error) {
	if len(raw) != CodeLength {
		return "", ErrInvalidCode
	}
	return Code(raw), nil
}

// String returns the raw code value.
func (c Code) String() string { return string(c) }

// Valid reports whether the code has the required length.
func (c Code) Valid() bool { return len(c) == CodeLength }

// Playback describes the track currently playing and the position within it.
type Playback struct {
	Song       Song  `json:"song"`
	PositionMs int64 `json:"position_ms"`
}

// State is an immutable snapshot of one party. Transitions never patch a
// State in place; every accepted event produces a new value, which is what
// lets readers hold a snapshot while the materializer moves on.
type State struct {
	JoinCode   Code            `json:"join_code"`
	PartyName  string          `json:"party_name"`
	HostID     string          `json:"host_id"`
	CreatedAt  time.Time       `json:"created_at"`
	PartyID    string          `json:"party_id"`
	Members    map[string]bool `json:"members"`
	SongQueue  []Song          `json:"song_queue"`
	NowPlaying *Playback       `json:"now_playing,omitempty"`
}

// NewState builds the initial snapshot for a freshly created party: empty
// membership, empty queue, nothing playing.
func NewState(code Code, name, hostID string) State {
	return State{
		JoinCode:  code,
		PartyName: name,
		HostID:    hostID,
		CreatedAt: time.Now().UTC(),
		PartyID:   uuid.NewString(),
		Members:   map[string]bool{},
		SongQueue: nil,
	}
}

// HasMember reports whether userID already joined the party.
func (s State) HasMember(userID string) bool {
	return s.Members[userID]
}

// WithMember returns a new snapshot with userID added to the membership set.
// It rejects a duplicate join, leaving the snapshot untouched.
func (s State) WithMember(userID string) (State, bool) {
	if s.Members[userID] {
		return s, false
	}
	members := make(map[string]bool, len(s.Members)+1)
	for id := range s.Members {
		members[id] = true
	}
	members[userID] = true
	next := s
	next.Members = members
	return next, true
}

// WithSongEnqueued returns a new snapshot with song appended to the end of
// the queue. Queue order is the only externally meaningful song ordering.
func (s State) WithSongEnqueued(song Song) State {
	queue := make([]Song, 0, len(s.SongQueue)+1)
	queue = append(queue, s.SongQueue...)
	queue = append(queue, song)
	next := s
	next.SongQueue = queue
	return next
}

// WithVote returns a new snapshot with the vote recorded against the queued
// song identified by spotifyID. It rejects when the song is not queued or
// when the vote is identical to the voter's existing vote.
func (s State) WithVote(userID, spotifyID string, vote Vote) (State, bool) {
	for i, song := range s.SongQueue {
		if song.SpotifyID != spotifyID {
			continue
		}
		voted, ok := song.WithVote(userID, vote)
		if !ok {
			return s, false
		}
		queue := make([]Song, len(s.SongQueue))
		copy(queue, s.SongQueue)
		queue[i] = voted
		next := s
		next.SongQueue = queue
		return next, true
	}
	return s, false
}

// WithPlayback returns a new snapshot with the currently-playing track
// replaced wholesale.
func (s State) WithPlayback(playback Playback) State {
	next := s
	next.NowPlaying = &playback
	return next
}
