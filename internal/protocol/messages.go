// internal/protocol/messages.go
package protocol

import "github.com/jason-s-yu/crabul/engine"

// Tag is the envelope discriminator the server sends.
type Tag string

const (
	TagPlayerJoined        Tag = "PlayerJoined"
	TagPlayerLeft          Tag = "PlayerLeft"
	TagPlayerIsReady       Tag = "PlayerIsReady"
	TagGameStarted         Tag = "GameStarted"
	TagPeekingPhaseStarted Tag = "PeekingPhaseStarted"
	TagPlayerTurn          Tag = "PlayerTurn"
	TagCardWasDrawn        Tag = "CardWasDrawn"
	TagDrawnCard           Tag = "DrawnCard"
	TagCardSwapped         Tag = "CardSwapped"
	TagCardDiscarded       Tag = "CardDiscarded"
	TagPowerActivated      Tag = "PowerActivated"
	TagPowerUsed           Tag = "PowerUsed"
	TagPeekedCard          Tag = "PeekedCard"
	TagSameCardAttempt     Tag = "SameCardAttempt"
	TagCardReplaced        Tag = "CardReplaced"
	TagPlayerWentCrabul    Tag = "PlayerWentCrabul"
	TagGameTerminated      Tag = "GameTerminated"
	TagTurnEndedByTimeout  Tag = "TurnEndedByTimeout"
	TagPowerDiscarded      Tag = "PowerDiscarded"
	TagForcedBlindSwap     Tag = "ForcedBlindSwap"
	TagCommandRejected     Tag = "CommandRejected"
)

// Domain groups tags by the component that owns them.
type Domain uint8

const (
	DomainUnknown Domain = iota
	DomainRoom
	DomainGame
	DomainControl
)

func (d Domain) String() string {
	switch d {
	case DomainRoom:
		return "Room"
	case DomainGame:
		return "Game"
	case DomainControl:
		return "Control"
	}
	return "Unknown"
}

var tagDomains = map[Tag]Domain{
	TagPlayerJoined:        DomainRoom,
	TagPlayerLeft:          DomainRoom,
	TagPlayerIsReady:       DomainRoom,
	TagGameStarted:         DomainGame,
	TagPeekingPhaseStarted: DomainGame,
	TagPlayerTurn:          DomainGame,
	TagCardWasDrawn:        DomainGame,
	TagDrawnCard:           DomainGame,
	TagCardSwapped:         DomainGame,
	TagCardDiscarded:       DomainGame,
	TagPowerActivated:      DomainGame,
	TagPowerUsed:           DomainGame,
	TagPeekedCard:          DomainGame,
	TagSameCardAttempt:     DomainGame,
	TagCardReplaced:        DomainGame,
	TagPlayerWentCrabul:    DomainGame,
	TagGameTerminated:      DomainGame,
	TagTurnEndedByTimeout:  DomainGame,
	TagPowerDiscarded:      DomainGame,
	TagForcedBlindSwap:     DomainGame,
	TagCommandRejected:     DomainControl,
}

// Domain returns the owning domain of t, or DomainUnknown.
func (t Tag) Domain() Domain { return tagDomains[t] }

// Tags lists every tag this client understands, in declaration order.
func Tags() []Tag {
	return []Tag{
		TagPlayerJoined, TagPlayerLeft, TagPlayerIsReady, TagGameStarted,
		TagPeekingPhaseStarted, TagPlayerTurn, TagCardWasDrawn, TagDrawnCard,
		TagCardSwapped, TagCardDiscarded, TagPowerActivated, TagPowerUsed,
		TagPeekedCard, TagSameCardAttempt, TagCardReplaced, TagPlayerWentCrabul,
		TagGameTerminated, TagTurnEndedByTimeout, TagPowerDiscarded,
		TagForcedBlindSwap, TagCommandRejected,
	}
}

// Message is one decoded server message. The set of implementations is
// closed: only this package defines them.
type Message interface {
	Tag() Tag
	isMessage()
}

// DomainOf returns the domain of m.
func DomainOf(m Message) Domain { return m.Tag().Domain() }

// SameCardResult is the outcome of a duplicate throw.
type SameCardResult string

const (
	ResultSuccess    SameCardResult = "Success"
	ResultNotTheSame SameCardResult = "NotTheSame"
	ResultTooLate    SameCardResult = "TooLate"
)

// PlayerJoined carries the full roster snapshot after any join.
type PlayerJoined struct {
	RoomID     engine.RoomID              `json:"room_id"`
	PlayerID   engine.PlayerID            `json:"player_id"`
	PlayerName string                     `json:"player_name"`
	PlayerList map[engine.PlayerID]string `json:"player_list"`
}

// PlayerLeft removes a player from the roster.
type PlayerLeft struct{ PlayerID engine.PlayerID }

// PlayerIsReady marks a player ready in the waiting room.
type PlayerIsReady struct{ PlayerID engine.PlayerID }

// GameStarted closes the waiting room.
type GameStarted struct{}

// PeekingPhaseStarted reveals the local player's cards in slots 0 and 1.
type PeekingPhaseStarted struct{ Cards [2]engine.Card }

// PlayerTurn hands the turn to PlayerID.
type PlayerTurn struct{ PlayerID engine.PlayerID }

// CardWasDrawn is broadcast when anyone draws from the deck.
type CardWasDrawn struct{ PlayerID engine.PlayerID }

// DrawnCard is sent only to the drawing player.
type DrawnCard struct{ Card engine.Card }

// CardSwapped reports a drawn card replacing the card at Index.
type CardSwapped struct {
	PlayerID engine.PlayerID
	Index    int
}

// CardDiscarded puts Card on top of the discard pile.
type CardDiscarded struct {
	PlayerID engine.PlayerID
	Card     engine.Card
}

// PowerActivated grants PlayerID the power of a discarded card.
type PowerActivated struct {
	PlayerID engine.PlayerID
	Power    engine.Power
}

// PowerUsed describes a resolved power. Which optional fields are set
// depends on the power.
type PowerUsed struct {
	Power       engine.Power
	PlayerID    engine.PlayerID
	Index       *int
	Target      *engine.PlayerID
	TargetIndex *int
}

// PeekedCard reveals a card to the local player only.
type PeekedCard struct{ Card engine.Card }

// SameCardAttempt reports a duplicate throw of Target's card at
// TargetIndex. Card is the thrown card, when revealed.
type SameCardAttempt struct {
	ThrowerID   engine.PlayerID
	TargetID    engine.PlayerID
	TargetIndex int
	Card        *engine.Card
	Result      SameCardResult
}

// CardReplaced closes a duplicate pause: the donor gave its card at
// DonorIndex, which now sits at RecipientIndex in the recipient's hand.
type CardReplaced struct {
	DonorID        engine.PlayerID
	DonorIndex     int
	RecipientID    engine.PlayerID
	RecipientIndex int
}

// PlayerWentCrabul starts the final round.
type PlayerWentCrabul struct{ PlayerID engine.PlayerID }

// Score is one player's final hand.
type Score struct {
	PlayerID   engine.PlayerID `json:"player_id"`
	Cards      []engine.Card   `json:"cards"`
	TotalScore int             `json:"total_score"`
}

// Results are the final scores and the winner.
type Results struct {
	Winner engine.PlayerID `json:"winner"`
	Scores []Score         `json:"scores"`
}

// GameTerminated ends the game.
type GameTerminated struct{ Results Results }

// TurnEndedByTimeout closes a turn the server stopped waiting on.
type TurnEndedByTimeout struct{ PlayerID engine.PlayerID }

// PowerDiscarded drops a pending power unused.
type PowerDiscarded struct {
	PlayerID engine.PlayerID
	Power    engine.Power
}

// ForcedBlindSwap is the server resolving a timed-out blind swap at random.
type ForcedBlindSwap struct {
	PlayerID   engine.PlayerID
	Index      int
	OtherID    engine.PlayerID
	OtherIndex int
}

// CommandRejected carries a server error string such as
// "OperationNotAllowedAtCurrentState".
type CommandRejected struct{ Reason string }

// UnknownMessage preserves a frame whose tag this client does not know.
type UnknownMessage struct {
	Name    string
	Payload []byte
}

func (PlayerJoined) Tag() Tag        { return TagPlayerJoined }
func (PlayerLeft) Tag() Tag          { return TagPlayerLeft }
func (PlayerIsReady) Tag() Tag       { return TagPlayerIsReady }
func (GameStarted) Tag() Tag         { return TagGameStarted }
func (PeekingPhaseStarted) Tag() Tag { return TagPeekingPhaseStarted }
func (PlayerTurn) Tag() Tag          { return TagPlayerTurn }
func (CardWasDrawn) Tag() Tag        { return TagCardWasDrawn }
func (DrawnCard) Tag() Tag           { return TagDrawnCard }
func (CardSwapped) Tag() Tag         { return TagCardSwapped }
func (CardDiscarded) Tag() Tag       { return TagCardDiscarded }
func (PowerActivated) Tag() Tag      { return TagPowerActivated }
func (PowerUsed) Tag() Tag           { return TagPowerUsed }
func (PeekedCard) Tag() Tag          { return TagPeekedCard }
func (SameCardAttempt) Tag() Tag     { return TagSameCardAttempt }
func (CardReplaced) Tag() Tag        { return TagCardReplaced }
func (PlayerWentCrabul) Tag() Tag    { return TagPlayerWentCrabul }
func (GameTerminated) Tag() Tag      { return TagGameTerminated }
func (TurnEndedByTimeout) Tag() Tag  { return TagTurnEndedByTimeout }
func (PowerDiscarded) Tag() Tag      { return TagPowerDiscarded }
func (ForcedBlindSwap) Tag() Tag     { return TagForcedBlindSwap }
func (CommandRejected) Tag() Tag     { return TagCommandRejected }
func (m UnknownMessage) Tag() Tag    { return Tag(m.Name) }

func (PlayerJoined) isMessage()        {}
func (PlayerLeft) isMessage()          {}
func (PlayerIsReady) isMessage()       {}
func (GameStarted) isMessage()         {}
func (PeekingPhaseStarted) isMessage() {}
func (PlayerTurn) isMessage()          {}
func (CardWasDrawn) isMessage()        {}
func (DrawnCard) isMessage()           {}
func (CardSwapped) isMessage()         {}
func (CardDiscarded) isMessage()       {}
func (PowerActivated) isMessage()      {}
func (PowerUsed) isMessage()           {}
func (PeekedCard) isMessage()          {}
func (SameCardAttempt) isMessage()     {}
func (CardReplaced) isMessage()        {}
func (PlayerWentCrabul) isMessage()    {}
func (GameTerminated) isMessage()      {}
func (TurnEndedByTimeout) isMessage()  {}
func (PowerDiscarded) isMessage()      {}
func (ForcedBlindSwap) isMessage()     {}
func (CommandRejected) isMessage()     {}
func (UnknownMessage) isMessage()      {}
