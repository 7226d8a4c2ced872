// internal/game/powers.go
package game

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

// Labels shown while a power is pending.
const (
	labelStage2 = "SWAP WITH ONE OF YOUR CARD OR END TURN"
)

func powerLabel(kind engine.PowerKind) string {
	return fmt.Sprintf("POWER %s ACTIVE!", kind)
}

// onPowerActivated puts the local player into the power's mode. Others
// only see a notification.
// Assumes lock is held by caller.
func (g *Game) onPowerActivated(m protocol.PowerActivated) {
	if !g.isSelf(m.PlayerID) {
		g.notify("Player %s activated a power: %s", g.name(m.PlayerID), m.Power.Kind)
		return
	}
	mode := engine.PowerModeFor(m.Power.Kind)
	if mode == engine.ModeIdle {
		log.Warnf("Game %s: PowerActivated with unusable power %q.", g.ID, m.Power.Kind)
		return
	}
	g.setMode(mode, powerLabel(m.Power.Kind))
}

// onPowerUsed resolves a power. For the local player the King's stage 1
// leads to stage 2; every other power returns to Idle.
// Assumes lock is held by caller.
func (g *Game) onPowerUsed(m protocol.PowerUsed) {
	if !g.isSelf(m.PlayerID) {
		g.notify("%s", g.powerUsedText(m))
		return
	}
	if m.Power.Kind == engine.PowerCheckAndSwapStage1 {
		g.setMode(engine.ModeCheckAndSwapStage2, labelStage2)
		g.affordances.EndTurnVisible = true
		return
	}
	g.setMode(engine.ModeIdle, "")
	g.affordances.EndTurnVisible = false
	g.peeked = nil
}

// powerUsedText renders the third-person narration of a power.
// Assumes lock is held by caller.
func (g *Game) powerUsedText(m protocol.PowerUsed) string {
	actor := g.name(m.PlayerID)
	pos := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p + 1
	}
	targetIsMe := m.Target != nil && g.isSelf(*m.Target)
	targetName := ""
	if m.Target != nil {
		targetName = g.name(*m.Target)
	}
	missing := func(fields ...bool) bool {
		for _, ok := range fields {
			if !ok {
				return true
			}
		}
		return false
	}

	switch m.Power.Kind {
	case engine.PowerPeekOwnCard:
		if missing(m.Index != nil) {
			break
		}
		return fmt.Sprintf("Player %s peeked his own card at position %d", actor, pos(m.Index))

	case engine.PowerPeekOtherCard:
		if missing(m.Target != nil, m.TargetIndex != nil) {
			break
		}
		if targetIsMe {
			return fmt.Sprintf("Player %s peeked your card %d", actor, pos(m.TargetIndex))
		}
		return fmt.Sprintf("Player %s peeked card %d of player %s", actor, pos(m.TargetIndex), targetName)

	case engine.PowerBlindSwap:
		if missing(m.Index != nil, m.Target != nil, m.TargetIndex != nil) {
			break
		}
		if targetIsMe {
			return fmt.Sprintf("Player %s blind swapped card %d with your card %d", actor, pos(m.Index), pos(m.TargetIndex))
		}
		return fmt.Sprintf("Player %s blind swapped card %d with card %d of player %s",
			actor, pos(m.Index), pos(m.TargetIndex), targetName)

	case engine.PowerCheckAndSwapStage1:
		if missing(m.Target != nil, m.TargetIndex != nil) {
			break
		}
		if targetIsMe {
			return fmt.Sprintf("Player %s peeked your card %d and is deciding whether to swap", actor, pos(m.TargetIndex))
		}
		return fmt.Sprintf("Player %s peeked card %d of player %s and is deciding whether to swap",
			actor, pos(m.TargetIndex), targetName)

	case engine.PowerCheckAndSwapStage2:
		if m.Index == nil {
			return fmt.Sprintf("Player %s decided not to swap", actor)
		}
		if missing(m.Target != nil, m.TargetIndex != nil) {
			break
		}
		if targetIsMe {
			return fmt.Sprintf("Player %s swapped card %d with your card %d", actor, pos(m.Index), pos(m.TargetIndex))
		}
		return fmt.Sprintf("Player %s swapped card %d with card %d of player %s",
			actor, pos(m.Index), pos(m.TargetIndex), targetName)
	}

	log.Warnf("Game %s: PowerUsed %s from %s is missing arguments.", g.ID, m.Power.Kind, m.PlayerID)
	return fmt.Sprintf("Player %s used a power: %s", actor, m.Power.Kind)
}

// onPeekedCard shows the local player the card a peek revealed.
// Assumes lock is held by caller.
func (g *Game) onPeekedCard(m protocol.PeekedCard) {
	card := m.Card
	g.peeked = &card
}

// onPowerDiscarded drops a power the player did not use in time.
// Assumes lock is held by caller.
func (g *Game) onPowerDiscarded(m protocol.PowerDiscarded) {
	if !g.isSelf(m.PlayerID) {
		g.notify("Player %s lost the power: %s", g.name(m.PlayerID), m.Power.Kind)
		return
	}
	if g.mode.IsPower() {
		g.setMode(engine.ModeIdle, "")
	}
	g.affordances.EndTurnVisible = false
	g.notify("Your power %s was discarded", m.Power.Kind)
}

// onForcedBlindSwap narrates the server completing a timed-out blind swap.
// Assumes lock is held by caller.
func (g *Game) onForcedBlindSwap(m protocol.ForcedBlindSwap) {
	actor := g.name(m.PlayerID)
	switch {
	case g.isSelf(m.PlayerID):
		if g.mode == engine.ModeBlindSwap {
			g.setMode(engine.ModeIdle, "")
		}
		g.notify("Your card %d was blind swapped with card %d of player %s",
			m.Index+1, m.OtherIndex+1, g.name(m.OtherID))
	case g.isSelf(m.OtherID):
		g.notify("Player %s was forced to blind swap card %d with your card %d", actor, m.Index+1, m.OtherIndex+1)
	default:
		g.notify("Player %s was forced to blind swap card %d with card %d of player %s",
			actor, m.Index+1, m.OtherIndex+1, g.name(m.OtherID))
	}
}
