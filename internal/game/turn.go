// internal/game/turn.go
package game

import (
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

// initialSlots is the hand size dealt to each player.
const initialSlots = 4

// onGameStarted handles the waiting room closing.
// Assumes lock is held by caller.
func (g *Game) onGameStarted() {
	if g.started {
		return
	}
	g.started = true
	g.navigate(PhasePlay)
}

// onPeekingPhaseStarted deals the table and reveals the local player's two
// peekable cards.
// Assumes lock is held by caller.
func (g *Game) onPeekingPhaseStarted(m protocol.PeekingPhaseStarted) {
	if !g.started {
		g.started = true
		g.navigate(PhasePlay)
	}
	g.slots = make(map[engine.PlayerID]int)
	for _, id := range g.roster.IDs() {
		g.slots[id] = initialSlots
	}
	g.known = map[int]engine.Card{0: m.Cards[0], 1: m.Cards[1]}
	g.faceDown = false
	g.crabul = make(map[engine.PlayerID]bool)
	g.discardTop = nil
	g.peeked = nil
	log.Printf("Game %s: peeking phase started for %d players.", g.ID, len(g.slots))
	g.notify("Game has started")
}

// onPlayerTurn hands the turn to m.PlayerID. The power mode is left alone.
// Assumes lock is held by caller.
func (g *Game) onPlayerTurn(m protocol.PlayerTurn) {
	mine := g.isSelf(m.PlayerID)
	g.turn = TurnState{Current: m.PlayerID}
	g.affordances.DrawEnabled = mine
	g.affordances.CrabulEnabled = mine
	g.affordances.EndTurnVisible = false
	g.faceDown = true
	g.known = make(map[int]engine.Card)
	g.peeked = nil

	if mine {
		g.notify("Your turn")
	} else {
		g.notify("Player turn: %s", g.name(m.PlayerID))
	}
}

// onCardWasDrawn records that someone drew from the deck.
// Assumes lock is held by caller.
func (g *Game) onCardWasDrawn(m protocol.CardWasDrawn) {
	if g.isSelf(m.PlayerID) {
		g.affordances.DrawEnabled = false
		g.affordances.CrabulEnabled = false
		return
	}
	g.notify("Player %s drew a card from the deck", g.name(m.PlayerID))
}

// onDrawnCard shows the local player the card they drew. Only the drawing
// player receives this.
// Assumes lock is held by caller.
func (g *Game) onDrawnCard(m protocol.DrawnCard) {
	self, ok := g.roster.Self()
	if !ok {
		log.Warnf("Game %s: DrawnCard before the local player is known.", g.ID)
		return
	}
	if g.turn.Current != self {
		log.Warnf("Game %s: DrawnCard outside the local turn (current %s).", g.ID, g.turn.Current)
		g.turn.Current = self
	}
	card := m.Card
	g.turn.Drawn = &card
	g.affordances.DrawEnabled = false
	g.affordances.CrabulEnabled = false
}

// onCardSwapped narrates a drawn card replacing a hand card. Our own swap
// uses up the drawn card.
// Assumes lock is held by caller.
func (g *Game) onCardSwapped(m protocol.CardSwapped) {
	if g.isSelf(m.PlayerID) {
		g.turn.Drawn = nil
		return
	}
	g.notify("Player %s swapped card %d", g.name(m.PlayerID), m.Index+1)
}

// onCardDiscarded updates the discard pile. The server only reports our own
// discard for the drawn card, so it is cleared.
// Assumes lock is held by caller.
func (g *Game) onCardDiscarded(m protocol.CardDiscarded) {
	card := m.Card
	g.discardTop = &card
	if g.isSelf(m.PlayerID) {
		g.turn.Drawn = nil
		return
	}
	g.notify("Player %s discarded a card", g.name(m.PlayerID))
}

// onPlayerWentCrabul flags the caller of the final round.
// Assumes lock is held by caller.
func (g *Game) onPlayerWentCrabul(m protocol.PlayerWentCrabul) {
	g.crabul[m.PlayerID] = true
	if g.isSelf(m.PlayerID) {
		g.affordances.DrawEnabled = false
		g.affordances.CrabulEnabled = false
		return
	}
	g.notify("Player %s went CRABUL!", g.name(m.PlayerID))
}

// onTurnEndedByTimeout closes a turn the server gave up waiting on. A
// pending power is dropped server-side; PowerDiscarded or ForcedBlindSwap
// follows.
// Assumes lock is held by caller.
func (g *Game) onTurnEndedByTimeout(m protocol.TurnEndedByTimeout) {
	if !g.isSelf(m.PlayerID) {
		g.notify("Player %s ran out of time", g.name(m.PlayerID))
		return
	}
	g.affordances = Affordances{}
	if g.mode.IsPower() {
		g.setMode(engine.ModeIdle, "")
	}
	g.notify("Your turn ended by timeout")
}

// onGameTerminated enters the absorbing terminal state.
// Assumes lock is held by caller.
func (g *Game) onGameTerminated(m protocol.GameTerminated) {
	results := m.Results
	g.results = &results
	g.terminated = true
	g.affordances = Affordances{}
	g.pause.Clear()
	g.label = ""
	g.faceDown = false
	log.Printf("Game %s: terminated, winner %s.", g.ID, results.Winner)
	for _, s := range results.Scores {
		if want := engine.HandScore(s.Cards); want != s.TotalScore {
			log.Warnf("Game %s: player %s reported score %d, cards add up to %d.", g.ID, s.PlayerID, s.TotalScore, want)
		}
	}

	if g.isSelf(results.Winner) {
		g.notify("Winner: You")
	} else {
		g.notify("Winner: Player %s", g.name(results.Winner))
	}
	g.navigate(PhaseResults)
}
