package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PlayerID identifies a player for the lifetime of a session. The server
// sends numbers; roster keys arrive as strings. Both decode to the same
// value.
type PlayerID string

// NoPlayer is the zero PlayerID.
const NoPlayer PlayerID = ""

// Numeric reports whether p is a decimal u16, the only form the server
// assigns and the only form the command grammar accepts.
func (p PlayerID) Numeric() bool {
	_, err := strconv.ParseUint(string(p), 10, 16)
	return err == nil
}

// UnmarshalJSON accepts a JSON number or string.
func (p *PlayerID) UnmarshalJSON(data []byte) error {
	id, err := decodeID(data)
	if err != nil {
		return fmt.Errorf("player id: %w", err)
	}
	*p = PlayerID(id)
	return nil
}

// MarshalJSON emits numeric ids as numbers, anything else as a string.
func (p PlayerID) MarshalJSON() ([]byte, error) {
	return encodeID(string(p))
}

// RoomID identifies the room the session joined.
type RoomID string

// UnmarshalJSON accepts a JSON number or string.
func (r *RoomID) UnmarshalJSON(data []byte) error {
	id, err := decodeID(data)
	if err != nil {
		return fmt.Errorf("room id: %w", err)
	}
	*r = RoomID(id)
	return nil
}

// MarshalJSON emits numeric ids as numbers, anything else as a string.
func (r RoomID) MarshalJSON() ([]byte, error) {
	return encodeID(string(r))
}

func decodeID(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func encodeID(id string) ([]byte, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(id)
}

// CardSlot identifies one physical card position: the owner and the
// zero-based index in that owner's hand.
type CardSlot struct {
	Owner PlayerID
	Index int
}

// Valid reports whether the slot can go on the wire: a numeric owner and
// a non-negative index.
func (s CardSlot) Valid() bool {
	return s.Owner.Numeric() && s.Index >= 0
}

func (s CardSlot) String() string {
	return fmt.Sprintf("%s/%d", s.Owner, s.Index)
}
