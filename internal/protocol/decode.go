// internal/protocol/decode.go
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedEnvelope means the frame is not a tagged envelope at all.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrUnknownTag means the envelope parsed but its tag is not known.
	// Decode still returns an UnknownMessage alongside it.
	ErrUnknownTag = errors.New("unknown tag")
)

// NotRecognized is the plain-text frame the server sends for a command
// verb it does not know.
const NotRecognized = "Command not recognized"

// rejectionReasons are the bare-string errors the server replies with
// when it refuses a command.
var rejectionReasons = map[string]bool{
	"NameAlreadyExists":                 true,
	"EmptyName":                         true,
	"NotEnoughPlayers":                  true,
	"TooManyPlayers":                    true,
	"OperationNotAllowedAtCurrentState": true,
	"InvalidCardIndex":                  true,
	"UnableToParseCommand":              true,
	"RoomNotFound":                      true,
}

// Decode parses one inbound text frame. Envelopes are either {"Tag": payload}
// or, for payload-less variants and server errors, a bare JSON string.
func Decode(frame []byte) (Message, error) {
	data := bytes.TrimSpace(frame)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformedEnvelope)
	}
	if string(data) == NotRecognized {
		return CommandRejected{Reason: NotRecognized}, nil
	}

	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		return decodeUnit(name)
	case '{':
		var env map[string]json.RawMessage
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		if len(env) != 1 {
			return nil, fmt.Errorf("%w: expected one tag, got %d", ErrMalformedEnvelope, len(env))
		}
		for name, payload := range env {
			msg, err := decodePayload(Tag(name), payload)
			if err != nil && !errors.Is(err, ErrUnknownTag) {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return msg, err
		}
	}
	return nil, fmt.Errorf("%w: %.40q", ErrMalformedEnvelope, data)
}

func decodeUnit(name string) (Message, error) {
	switch {
	case Tag(name) == TagGameStarted:
		return GameStarted{}, nil
	case rejectionReasons[name]:
		return CommandRejected{Reason: name}, nil
	}
	return UnknownMessage{Name: name}, fmt.Errorf("%w: %q", ErrUnknownTag, name)
}

func decodePayload(tag Tag, p json.RawMessage) (Message, error) {
	switch tag {
	case TagPlayerJoined:
		var m PlayerJoined
		return done(&m, json.Unmarshal(p, &m))
	case TagPlayerLeft:
		var m PlayerLeft
		return done(&m, json.Unmarshal(p, &m.PlayerID))
	case TagPlayerIsReady:
		var m PlayerIsReady
		return done(&m, json.Unmarshal(p, &m.PlayerID))
	case TagGameStarted:
		return GameStarted{}, nil
	case TagPeekingPhaseStarted:
		var m PeekingPhaseStarted
		return done(&m, decodeTuple(p, &m.Cards[0], &m.Cards[1]))
	case TagPlayerTurn:
		var m PlayerTurn
		return done(&m, json.Unmarshal(p, &m.PlayerID))
	case TagCardWasDrawn:
		var m CardWasDrawn
		return done(&m, json.Unmarshal(p, &m.PlayerID))
	case TagDrawnCard:
		var m DrawnCard
		return done(&m, json.Unmarshal(p, &m.Card))
	case TagCardSwapped:
		var m CardSwapped
		return done(&m, decodeTuple(p, &m.PlayerID, &m.Index))
	case TagCardDiscarded:
		var m CardDiscarded
		return done(&m, decodeTuple(p, &m.PlayerID, &m.Card))
	case TagPowerActivated:
		var m PowerActivated
		return done(&m, decodeTuple(p, &m.PlayerID, &m.Power))
	case TagPowerUsed:
		var m PowerUsed
		return done(&m, decodeTuple(p, &m.Power, &m.PlayerID, &m.Index, &m.Target, &m.TargetIndex))
	case TagPeekedCard:
		var m PeekedCard
		return done(&m, json.Unmarshal(p, &m.Card))
	case TagSameCardAttempt:
		var m SameCardAttempt
		if err := decodeTuple(p, &m.ThrowerID, &m.TargetID, &m.TargetIndex, &m.Card, &m.Result); err != nil {
			return m, err
		}
		switch m.Result {
		case ResultSuccess, ResultNotTheSame, ResultTooLate:
			return m, nil
		}
		return m, fmt.Errorf("unknown same-card result %q", m.Result)
	case TagCardReplaced:
		var m CardReplaced
		return done(&m, decodeTuple(p, &m.DonorID, &m.DonorIndex, &m.RecipientID, &m.RecipientIndex))
	case TagPlayerWentCrabul:
		var m PlayerWentCrabul
		return done(&m, json.Unmarshal(p, &m.PlayerID))
	case TagGameTerminated:
		var m GameTerminated
		return done(&m, json.Unmarshal(p, &m.Results))
	case TagTurnEndedByTimeout:
		var m TurnEndedByTimeout
		return done(&m, json.Unmarshal(p, &m.PlayerID))
	case TagPowerDiscarded:
		var m PowerDiscarded
		return done(&m, decodeTuple(p, &m.PlayerID, &m.Power))
	case TagForcedBlindSwap:
		var m ForcedBlindSwap
		return done(&m, decodeTuple(p, &m.PlayerID, &m.Index, &m.OtherID, &m.OtherIndex))
	case TagCommandRejected:
		var m CommandRejected
		return done(&m, json.Unmarshal(p, &m.Reason))
	}
	return UnknownMessage{Name: string(tag), Payload: append([]byte(nil), p...)},
		fmt.Errorf("%w: %q", ErrUnknownTag, tag)
}

// done dereferences m only after err has been computed.
func done[T Message](m *T, err error) (Message, error) { return *m, err }

// decodeTuple unpacks a JSON array positionally into dst. The array must
// have exactly len(dst) elements.
func decodeTuple(p json.RawMessage, dst ...any) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(p, &elems); err != nil {
		return err
	}
	if len(elems) != len(dst) {
		return fmt.Errorf("expected %d elements, got %d", len(dst), len(elems))
	}
	for i, e := range elems {
		if err := json.Unmarshal(e, dst[i]); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}
