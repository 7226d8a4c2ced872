package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mode is the local interaction mode. It decides which gestures are legal
// and which command each gesture produces.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeMyTurnWaiting
	ModeMyTurnCardDrawn
	ModePeekOwnCard
	ModePeekOtherCard
	ModeBlindSwap
	ModeCheckAndSwapStage1
	ModeCheckAndSwapStage2
	ModeDuplicateChoosingCardToGive
	ModeDuplicateWaitingForOther
	ModeTerminated
	numModes
)

var modeNames = [numModes]string{
	ModeIdle:                        "Idle",
	ModeMyTurnWaiting:               "MyTurn.Waiting",
	ModeMyTurnCardDrawn:             "MyTurn.CardDrawn",
	ModePeekOwnCard:                 "Power.PeekOwnCard",
	ModePeekOtherCard:               "Power.PeekOtherCard",
	ModeBlindSwap:                   "Power.BlindSwap",
	ModeCheckAndSwapStage1:          "Power.CheckAndSwap.Stage1",
	ModeCheckAndSwapStage2:          "Power.CheckAndSwap.Stage2",
	ModeDuplicateChoosingCardToGive: "Duplicate.ChoosingCardToGive",
	ModeDuplicateWaitingForOther:    "Duplicate.WaitingForOther",
	ModeTerminated:                  "Terminated",
}

func (m Mode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// IsPower reports whether m is one of the Power.* modes.
func (m Mode) IsPower() bool {
	return m >= ModePeekOwnCard && m <= ModeCheckAndSwapStage2
}

// IsDuplicate reports whether m is one of the Duplicate.* pause modes.
func (m Mode) IsDuplicate() bool {
	return m == ModeDuplicateChoosingCardToGive || m == ModeDuplicateWaitingForOther
}

// PowerKind names a special power as the server does.
type PowerKind string

const (
	PowerNone               PowerKind = ""
	PowerPeekOwnCard        PowerKind = "PeekOwnCard"
	PowerPeekOtherCard      PowerKind = "PeekOtherCard"
	PowerBlindSwap          PowerKind = "BlindSwap"
	PowerCheckAndSwapStage1 PowerKind = "CheckAndSwapStage1"
	PowerCheckAndSwapStage2 PowerKind = "CheckAndSwapStage2"
)

// Power is a power as carried in PowerActivated, PowerUsed and
// PowerDiscarded. Only CheckAndSwapStage2 carries a slot: the card peeked
// in stage 1.
type Power struct {
	Kind   PowerKind
	Peeked CardSlot
}

func (p Power) String() string { return string(p.Kind) }

// UnmarshalJSON accepts a bare power name or
// {"CheckAndSwapStage2": [playerId, idx]}.
func (p *Power) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		kind := PowerKind(name)
		switch kind {
		case PowerPeekOwnCard, PowerPeekOtherCard, PowerBlindSwap, PowerCheckAndSwapStage1:
			*p = Power{Kind: kind}
			return nil
		}
		return fmt.Errorf("unknown power %q", name)
	}

	var obj map[string][2]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("power: %w", err)
	}
	pair, ok := obj[string(PowerCheckAndSwapStage2)]
	if !ok || len(obj) != 1 {
		return fmt.Errorf("unknown power %s", data)
	}
	var slot CardSlot
	if err := json.Unmarshal(pair[0], &slot.Owner); err != nil {
		return fmt.Errorf("power stage 2 owner: %w", err)
	}
	if err := json.Unmarshal(pair[1], &slot.Index); err != nil {
		return fmt.Errorf("power stage 2 index: %w", err)
	}
	*p = Power{Kind: PowerCheckAndSwapStage2, Peeked: slot}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (p Power) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PowerPeekOwnCard, PowerPeekOtherCard, PowerBlindSwap, PowerCheckAndSwapStage1:
		return json.Marshal(string(p.Kind))
	case PowerCheckAndSwapStage2:
		return json.Marshal(map[string][2]any{
			string(PowerCheckAndSwapStage2): {p.Peeked.Owner, p.Peeked.Index},
		})
	}
	return nil, fmt.Errorf("cannot encode power %q", p.Kind)
}

// PowerModeFor maps a power to the mode the local player enters when the
// power is activated for them.
func PowerModeFor(kind PowerKind) Mode {
	switch kind {
	case PowerPeekOwnCard:
		return ModePeekOwnCard
	case PowerPeekOtherCard:
		return ModePeekOtherCard
	case PowerBlindSwap:
		return ModeBlindSwap
	case PowerCheckAndSwapStage1:
		return ModeCheckAndSwapStage1
	case PowerCheckAndSwapStage2:
		return ModeCheckAndSwapStage2
	}
	return ModeIdle
}

// PowerForRank returns the power a suited card grants when discarded
// straight from the deck. Jokers and ranks below 7 grant nothing.
func PowerForRank(c Card) PowerKind {
	if !c.Known() || c.IsJoker() {
		return PowerNone
	}
	switch r := c.Rank(); {
	case r == 7 || r == 8:
		return PowerPeekOwnCard
	case r == 9 || r == 10:
		return PowerPeekOtherCard
	case r == RankJack || r == RankQueen:
		return PowerBlindSwap
	case r == RankKing:
		return PowerCheckAndSwapStage1
	}
	return PowerNone
}
