package engine

// GestureKind enumerates the user gestures the interaction layer reports.
type GestureKind uint8

const (
	GestureClickOwnCard GestureKind = iota
	GestureClickOtherCard
	GestureDragOwnToOwn
	GestureDragOwnToOther
	GestureDragToDiscard
	GestureClickDraw
	GestureClickCrabul
	GestureClickStart
	GestureClickDiscardDrawn
	GestureClickEndTurn
	numGestureKinds
)

var gestureNames = [numGestureKinds]string{
	GestureClickOwnCard:      "ClickOwnCard",
	GestureClickOtherCard:    "ClickOtherCard",
	GestureDragOwnToOwn:      "DragOwnToOwn",
	GestureDragOwnToOther:    "DragOwnToOther",
	GestureDragToDiscard:     "DragToDiscard",
	GestureClickDraw:         "ClickDraw",
	GestureClickCrabul:       "ClickCrabul",
	GestureClickStart:        "ClickStart",
	GestureClickDiscardDrawn: "ClickDiscardDrawn",
	GestureClickEndTurn:      "ClickEndTurn",
}

func (k GestureKind) String() string {
	if k < numGestureKinds {
		return gestureNames[k]
	}
	return "Gesture(?)"
}

// Gesture is one user input. Source is the clicked or dragged card; Target
// is the drop slot for drags. Own-card slots leave Owner empty except for
// DragToDiscard, where the owner goes on the wire.
type Gesture struct {
	Kind   GestureKind
	Source CardSlot
	Target CardSlot
}

// ClickOwnCard selects the local card at idx.
func ClickOwnCard(idx int) Gesture {
	return Gesture{Kind: GestureClickOwnCard, Source: CardSlot{Index: idx}}
}

// ClickOtherCard selects owner's card at idx.
func ClickOtherCard(owner PlayerID, idx int) Gesture {
	return Gesture{Kind: GestureClickOtherCard, Source: CardSlot{Owner: owner, Index: idx}}
}

// DragOwnToOwn drags one local card onto another.
func DragOwnToOwn(src, dst int) Gesture {
	return Gesture{Kind: GestureDragOwnToOwn, Source: CardSlot{Index: src}, Target: CardSlot{Index: dst}}
}

// DragOwnToOther drags a local card onto owner's card at dst.
func DragOwnToOther(src int, owner PlayerID, dst int) Gesture {
	return Gesture{
		Kind:   GestureDragOwnToOther,
		Source: CardSlot{Index: src},
		Target: CardSlot{Owner: owner, Index: dst},
	}
}

// DragToDiscard drops any card on the discard pile. slot.Owner is the
// local player's id for own cards.
func DragToDiscard(slot CardSlot) Gesture {
	return Gesture{Kind: GestureDragToDiscard, Source: slot}
}

// ClickDraw draws from the deck.
func ClickDraw() Gesture { return Gesture{Kind: GestureClickDraw} }

// ClickCrabul calls the final round.
func ClickCrabul() Gesture { return Gesture{Kind: GestureClickCrabul} }

// ClickStart asks the server to start the game.
func ClickStart() Gesture { return Gesture{Kind: GestureClickStart} }

// ClickDiscardDrawn discards the drawn card.
func ClickDiscardDrawn() Gesture { return Gesture{Kind: GestureClickDiscardDrawn} }

// ClickEndTurn declines the stage 2 swap.
func ClickEndTurn() Gesture { return Gesture{Kind: GestureClickEndTurn} }

// Encode maps a gesture to a command under the given mode. It reports
// false when the gesture is not meaningful in that mode; nothing is sent
// then.
func Encode(g Gesture, m Mode) (Command, bool) {
	if !IsLegal(m, g.Kind) {
		return "", false
	}
	if g.Source.Index < 0 || g.Target.Index < 0 {
		return "", false
	}

	switch g.Kind {
	case GestureClickDraw:
		return EncodeDraw(), true
	case GestureClickCrabul:
		return EncodeCrabul(), true
	case GestureClickStart:
		return EncodeStart(), true
	case GestureClickDiscardDrawn:
		return EncodeDiscard(), true
	case GestureClickEndTurn:
		return EncodeEndTurn(), true

	case GestureDragToDiscard:
		if !g.Source.Valid() {
			return "", false
		}
		return EncodeThrow(g.Source), true

	case GestureClickOwnCard:
		idx := g.Source.Index
		switch m {
		case ModeMyTurnCardDrawn:
			return EncodeSwap(idx), true
		case ModePeekOwnCard:
			return EncodePeekOwn(idx), true
		case ModeCheckAndSwapStage2:
			return EncodeCheckAndSwap(idx), true
		case ModeDuplicateChoosingCardToGive:
			return EncodeGive(idx), true
		}

	case GestureClickOtherCard:
		if !g.Source.Valid() {
			return "", false
		}
		switch m {
		case ModePeekOtherCard:
			return EncodePeekOther(g.Source), true
		case ModeCheckAndSwapStage1:
			return EncodeCheckAndSwapPeek(g.Source), true
		}

	case GestureDragOwnToOther:
		if !g.Target.Valid() {
			return "", false
		}
		return EncodeBlindSwap(g.Source.Index, g.Target), true
	}
	return "", false
}
