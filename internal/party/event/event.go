// Package event defines the closed set of party events and how each one
// applies to a party snapshot.
//
// Apply returns the next snapshot plus an acceptance flag. A false flag is a
// domain rejection (duplicate join, vote on an unknown song, redundant vote),
// not an error: the caller keeps the prior snapshot and moves on. Transport
// and serialization failures are reported separately by the codec.
package event

import (
	"github.com/louisbranch/crowdcue/internal/party"
)

// Type discriminates event variants on the wire.
type Type string

const (
	// TypeCreated records the creation of a party.
	TypeCreated Type = "party.created"
	// TypeMemberJoined records a user joining a party.
	TypeMemberJoined Type = "party.member_joined"
	// TypeSongEnqueued records a song appended to the queue.
	TypeSongEnqueued Type = "party.song_enqueued"
	// TypeSongVoteCast records a vote on a queued song.
	TypeSongVoteCast Type = "party.song_vote_cast"
	// TypePlaybackChanged records a replacement of the playback state.
	TypePlaybackChanged Type = "party.playback_changed"
)

// Event is one immutable party event. The set of implementations is closed;
// the codec's switch is the exhaustiveness check when a variant is added.
type Event interface {
	EventType() Type
	Apply(state party.State) (party.State, bool)
}

// Created starts a party from scratch. It ignores any prior state.
type Created struct {
	Code      party.Code `json:"code"`
	PartyName string     `json:"party_name"`
	HostID    string     `json:"host_id"`
}

// EventType implements Event.
func (e Created) EventType() Type { return TypeCreated }

// Apply always accepts and produces a brand-new snapshot with empty
// membership and queue, timestamped at construction.
func (e Created) Apply(party.State) (party.State, bool) {
	return party.NewState(e.Code, e.PartyName, e.HostID), true
}

// MemberJoined adds a user to the party membership set.
type MemberJoined struct {
	UserID string `json:"user_id"`
}

// EventType implements Event.
func (e MemberJoined) EventType() Type { return TypeMemberJoined }

// Apply rejects a duplicate join; otherwise membership grows by one.
func (e MemberJoined) Apply(state party.State) (party.State, bool) {
	return state.WithMember(e.UserID)
}

// SongEnqueued appends a song to the end of the queue.
type SongEnqueued struct {
	Song party.Song `json:"song"`
}

// EventType implements Event.
func (e SongEnqueued) EventType() Type { return TypeSongEnqueued }

// Apply always accepts; queue order stays append-only FIFO.
func (e SongEnqueued) Apply(state party.State) (party.State, bool) {
	return state.WithSongEnqueued(e.Song), true
}

// SongVoteCast records a user's vote on a queued song.
type SongVoteCast struct {
	UserID    string     `json:"user_id"`
	SpotifyID string     `json:"spotify_id"`
	Vote      party.Vote `json:"vote"`
}

// EventType implements Event.
func (e SongVoteCast) EventType() Type { return TypeSongVoteCast }

// Apply rejects when the song is not in the queue or the vote is identical
// to the voter's existing vote.
func (e SongVoteCast) Apply(state party.State) (party.State, bool) {
	return state.WithVote(e.UserID, e.SpotifyID, e.Vote)
}

// PlaybackChanged replaces the currently-playing track wholesale.
type PlaybackChanged struct {
	Playback party.Playback `json:"playback"`
}

// EventType implements Event.
func (e PlaybackChanged) EventType() Type { return TypePlaybackChanged }

// Apply always accepts.
func (e PlaybackChanged) Apply(state party.State) (party.State, bool) {
	return state.WithPlayback(e.Playback), true
}
