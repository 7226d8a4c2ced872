package engine

// legalMask holds one bit per GestureKind for each mode.
var legalMask [numModes]uint16

func allow(m Mode, kinds ...GestureKind) {
	for _, k := range kinds {
		legalMask[m] |= 1 << k
	}
}

func init() {
	// Throwing a duplicate is allowed whenever the game is running; the
	// server decides whether it was in time.
	for m := ModeIdle; m < ModeTerminated; m++ {
		allow(m, GestureDragToDiscard)
	}
	allow(ModeIdle, GestureClickStart)
	allow(ModeMyTurnWaiting, GestureClickDraw, GestureClickCrabul)
	allow(ModeMyTurnCardDrawn, GestureClickOwnCard, GestureClickDiscardDrawn)
	allow(ModePeekOwnCard, GestureClickOwnCard)
	allow(ModePeekOtherCard, GestureClickOtherCard)
	allow(ModeBlindSwap, GestureDragOwnToOther)
	allow(ModeCheckAndSwapStage1, GestureClickOtherCard)
	allow(ModeCheckAndSwapStage2, GestureClickOwnCard, GestureClickEndTurn)
	allow(ModeDuplicateChoosingCardToGive, GestureClickOwnCard)
}

// IsLegal reports whether gesture kind k produces a command in mode m.
func IsLegal(m Mode, k GestureKind) bool {
	if m >= numModes || k >= numGestureKinds {
		return false
	}
	return legalMask[m]>>k&1 == 1
}

// LegalGestures returns the gesture kinds that produce a command in mode m
// (for presentation hints and tests; allocates).
func LegalGestures(m Mode) []GestureKind {
	var kinds []GestureKind
	for k := GestureKind(0); k < numGestureKinds; k++ {
		if IsLegal(m, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
