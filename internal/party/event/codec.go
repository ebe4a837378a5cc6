package event

import (
	"encoding/json"
	"fmt"
)

// envelope is the self-describing wire form: an explicit type tag plus the
// variant payload, so a reader can recover which variant it holds.
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes an event into its tagged wire form.
func Encode(evt Event) ([]byte, error) {
	if evt == nil {
		return nil, fmt.Errorf("event is required")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", evt.EventType(), err)
	}
	data, err := json.Marshal(envelope{Type: evt.EventType(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", evt.EventType(), err)
	}
	return data, nil
}

// Decode parses a tagged wire record back into its event variant. An unknown
// or missing type tag is a malformed-record error, never a silent skip.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	switch env.Type {
	case TypeCreated:
		return decodePayload[Created](env)
	case TypeMemberJoined:
		return decodePayload[MemberJoined](env)
	case TypeSongEnqueued:
		return decodePayload[SongEnqueued](env)
	case TypeSongVoteCast:
		return decodePayload[SongVoteCast](env)
	case TypePlaybackChanged:
		return decodePayload[PlaybackChanged](env)
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

func decodePayload[E Event](env envelope) (Event, error) {
	var evt E
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return evt, nil
}
