// internal/game/duplicate.go
package game

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

const labelChooseCard = "PICK ONE OF YOUR CARD TO SUBSTITUTE!"

func waitingLabel(name string) string {
	return fmt.Sprintf("PAUSE! Game will resume after %s choose the card to substitute", name)
}

// savedMode is a mode and its label, as captured before a pause.
type savedMode struct {
	Mode  engine.Mode
	Label string
}

// PauseRegister holds the single mode saved across a duplicate pause.
// Pushing onto a full register overwrites it.
type PauseRegister struct {
	saved *savedMode
}

// Push saves m and label. It reports whether a previous value was
// overwritten.
func (r *PauseRegister) Push(m engine.Mode, label string) (overwrote bool) {
	overwrote = r.saved != nil
	r.saved = &savedMode{Mode: m, Label: label}
	return overwrote
}

// Pop returns the saved mode and clears the register. ok is false when
// the register was empty.
func (r *PauseRegister) Pop() (m engine.Mode, label string, ok bool) {
	if r.saved == nil {
		return engine.ModeIdle, "", false
	}
	s := *r.saved
	r.saved = nil
	return s.Mode, s.Label, true
}

// Full reports whether a mode is saved.
func (r *PauseRegister) Full() bool { return r.saved != nil }

// Clear empties the register.
func (r *PauseRegister) Clear() { r.saved = nil }

// onSameCardAttempt handles a duplicate throw. A failed throw costs the
// thrower a penalty card. A successful throw of someone else's card
// pauses the game until the thrower gives up one of their own cards.
// Assumes lock is held by caller.
func (g *Game) onSameCardAttempt(m protocol.SameCardAttempt) {
	selfThrew := g.isSelf(m.ThrowerID)

	if m.Result != protocol.ResultSuccess {
		g.adjustSlots(m.ThrowerID, +1)
		if selfThrew {
			g.notify("You attempted to throw a duplicate unsuccessfully: %s, receive a penalty card", m.Result)
		} else {
			g.notify("%s attempted to throw a duplicate unsuccessfully: %s, receiving a penalty card",
				g.name(m.ThrowerID), m.Result)
		}
		return
	}

	g.adjustSlots(m.TargetID, -1)
	if m.Card != nil {
		card := *m.Card
		g.discardTop = &card
	}
	if selfThrew {
		g.notify("You threw a duplicate successfully")
	} else {
		g.notify("Player %s threw a duplicate successfully", g.name(m.ThrowerID))
	}

	if m.ThrowerID == m.TargetID {
		return
	}

	if g.pause.Push(g.mode, g.label) {
		log.Warnf("Game %s: duplicate pause while already paused; earlier saved mode overwritten.", g.ID)
	}
	if selfThrew {
		g.setMode(engine.ModeDuplicateChoosingCardToGive, labelChooseCard)
	} else {
		g.setMode(engine.ModeDuplicateWaitingForOther, waitingLabel(g.name(m.ThrowerID)))
	}
}

// onCardReplaced closes a duplicate pause: the donor's card moves to the
// player whose card was thrown, and the saved mode is restored.
// Assumes lock is held by caller.
func (g *Game) onCardReplaced(m protocol.CardReplaced) {
	g.adjustSlots(m.DonorID, -1)
	g.adjustSlots(m.RecipientID, +1)

	if !g.isSelf(m.DonorID) {
		g.notify("%s have replaced the duplicate with card %d", g.name(m.DonorID), m.DonorIndex+1)
	}

	mode, label, ok := g.pause.Pop()
	if !ok {
		log.Warnf("Game %s: CardReplaced with no saved mode; returning to Idle.", g.ID)
	}
	g.setMode(mode, label)
}
