package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Suit constants, packed into upper 4 bits of Card. The order matches the
// numbering used by the card image set.
const (
	SuitClubs    uint8 = 0
	SuitDiamonds uint8 = 1
	SuitHearts   uint8 = 2
	SuitSpade    uint8 = 3
	SuitJoker    uint8 = 4
)

// Rank bounds for suited cards. Rank 1 is the Ace, 13 the King.
const (
	RankAce   uint8 = 1
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
type Card uint8

// Joker is the single rankless card. The deck carries two of them.
const Joker Card = Card(SuitJoker << 4)

// UnknownCard stands in for any value the server sent that this client
// does not recognize. It renders as a visible placeholder.
const UnknownCard Card = 0xFF

var suitNames = [...]string{
	SuitClubs:    "Clubs",
	SuitDiamonds: "Diamonds",
	SuitHearts:   "Hearts",
	SuitSpade:    "Spade",
}

// NewCard constructs a suited Card. Out-of-range input yields UnknownCard.
func NewCard(suit, rank uint8) Card {
	if suit > SuitSpade || rank < RankAce || rank > RankKing {
		return UnknownCard
	}
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4). Zero for the Joker.
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// IsJoker reports whether c is the Joker.
func (c Card) IsJoker() bool { return c == Joker }

// Known reports whether c is a recognized card value.
func (c Card) Known() bool {
	if c == Joker {
		return true
	}
	return c.Suit() <= SuitSpade && c.Rank() >= RankAce && c.Rank() <= RankKing
}

// SuitName returns the wire name of the suit ("Clubs", "Spade", ...).
func (c Card) SuitName() string {
	if c == Joker {
		return "Joker"
	}
	if !c.Known() {
		return "Unknown"
	}
	return suitNames[c.Suit()]
}

func (c Card) String() string {
	if c == Joker || !c.Known() {
		return c.SuitName()
	}
	return fmt.Sprintf("%s %d", c.SuitName(), c.Rank())
}

// MarshalJSON encodes the card the way the server does: "Joker" or a
// single-key object such as {"Hearts":7}.
func (c Card) MarshalJSON() ([]byte, error) {
	if c == Joker {
		return []byte(`"Joker"`), nil
	}
	if !c.Known() {
		return nil, fmt.Errorf("cannot encode unknown card 0x%02x", uint8(c))
	}
	return []byte(`{"` + suitNames[c.Suit()] + `":` + strconv.Itoa(int(c.Rank())) + `}`), nil
}

// UnmarshalJSON accepts "Joker" or {"<Suit>": rank}. Anything else decodes
// to UnknownCard without error: an unrecognized card is a recoverable
// data problem, never a reason to drop the surrounding message.
func (c *Card) UnmarshalJSON(data []byte) error {
	*c = UnknownCard
	defer func() {
		if *c == UnknownCard {
			log.Warnf("Warning: unrecognized card value %s", data)
		}
	}()

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name == "Joker" {
			*c = Joker
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || len(obj) != 1 {
		return nil
	}
	for key, raw := range obj {
		var rank uint8
		if err := json.Unmarshal(raw, &rank); err != nil {
			return nil
		}
		for suit, s := range suitNames {
			if s == key {
				*c = NewCard(uint8(suit), rank)
				return nil
			}
		}
	}
	return nil
}

// Image paths used by the presentation layer.
const (
	FaceDownImage = "cards/retro.svg"
	JokerImage    = "cards/joker.svg"
	UnknownImage  = "cards/unknown.svg"
)

// ImagePath maps a card to its image. Unknown cards get a placeholder
// rather than an error.
func ImagePath(c Card) string {
	switch {
	case c == Joker:
		return JokerImage
	case !c.Known():
		return UnknownImage
	}
	return fmt.Sprintf("cards/%d_%d.svg", c.Suit(), c.Rank())
}
