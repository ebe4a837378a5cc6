package party

// Vote is a signed vote value on a queued song.
type Vote int

const (
	// VoteUp counts +1 toward a song's total.
	VoteUp Vote = 1
	// VoteDown counts -1 toward a song's total.
	VoteDown Vote = -1
)

// Valid reports whether the vote is one of the two known values.
func (v Vote) Valid() bool { return v == VoteUp || v == VoteDown }

// Song is a queued track plus its vote ledger. The ledger keeps one active
// vote per voter; TotalVotes always equals the sum of the active votes.
type Song struct {
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	SpotifyID  string          `json:"spotify_id"`
	Voters     map[string]Vote `json:"voters,omitempty"`
	TotalVotes int             `json:"total_votes"`
}

// NewSong builds a song with an empty vote ledger.
func NewSong(title, artist, spotifyID string) Song {
	return Song{Title: title, Artist: artist, SpotifyID: spotifyID}
}

// WithVote returns a copy of the song with the voter's vote recorded.
// Resubmitting an identical vote is rejected as a no-op. Changing an
// existing vote adjusts the total by the signed delta rather than adding
// the new value outright.
func (s Song) WithVote(userID string, vote Vote) (Song, bool) {
	existing, voted := s.Voters[userID]
	if voted && existing == vote {
		return s, false
	}

	voters := make(map[string]Vote, len(s.Voters)+1)
	for id, v := range s.Voters {
		voters[id] = v
	}
	voters[userID] = vote

	next := s
	next.Voters = voters
	if voted {
		next.TotalVotes += int(vote) - int(existing)
	} else {
		next.TotalVotes += int(vote)
	}
	return next, true
}
