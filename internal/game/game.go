// internal/game/game.go
package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

// ErrTerminated is returned by Apply for any game message that arrives
// after GameTerminated.
var ErrTerminated = errors.New("game terminated")

// Phase is a navigation target for the routing layer.
type Phase string

const (
	PhasePlay    Phase = "play"
	PhaseResults Phase = "results"
)

// Roster is the view of the room directory the game needs: who is local,
// what players are called, and who is seated.
type Roster interface {
	Self() (engine.PlayerID, bool)
	Name(id engine.PlayerID) string
	IDs() []engine.PlayerID
}

// Affordances are the buttons the presentation layer may enable.
type Affordances struct {
	DrawEnabled    bool
	CrabulEnabled  bool
	EndTurnVisible bool
}

// TurnState tracks whose turn it is and what the local player drew.
type TurnState struct {
	Current engine.PlayerID
	Drawn   *engine.Card // set only on the local player's turn, after DrawnCard
}

// Game is the client-side interaction state machine. All state changes come
// from server messages passed to Apply; gestures never mutate it.
type Game struct {
	ID uuid.UUID // Session this game belongs to, for log correlation.

	roster Roster

	mu          sync.RWMutex
	mode        engine.Mode // power or duplicate mode; Idle when neither
	label       string
	turn        TurnState
	affordances Affordances
	pause       PauseRegister
	terminated  bool
	started     bool

	faceDown   bool
	slots      map[engine.PlayerID]int
	discardTop *engine.Card
	crabul     map[engine.PlayerID]bool
	peeked     *engine.Card
	known      map[int]engine.Card // own cards revealed during the peeking phase
	results    *protocol.Results
	rejection  string

	seq     uint64
	pending []Notification
	nav     []Phase

	// Communication Callbacks
	Notifier   Notifier      // Receives each notification, outside the lock.
	NavigateFn func(p Phase) // Receives navigation signals, outside the lock.
}

// NewGame creates an idle game bound to roster.
func NewGame(id uuid.UUID, roster Roster) *Game {
	return &Game{
		ID:       id,
		roster:   roster,
		faceDown: true,
		slots:    make(map[engine.PlayerID]int),
		crabul:   make(map[engine.PlayerID]bool),
		known:    make(map[int]engine.Card),
	}
}

// Apply processes one game-domain message. Room-domain and control
// messages are rejected with an error; after GameTerminated every message
// yields ErrTerminated.
func (g *Game) Apply(msg protocol.Message) error {
	g.mu.Lock()
	err := g.applyLocked(msg)
	notes, nav := g.pending, g.nav
	g.pending, g.nav = nil, nil
	g.mu.Unlock()

	g.flush(notes, nav)
	return err
}

// applyLocked routes msg to its handler.
// Assumes lock is held by caller.
func (g *Game) applyLocked(msg protocol.Message) error {
	if g.terminated {
		log.Warnf("Game %s: ignoring %s after termination.", g.ID, msg.Tag())
		return fmt.Errorf("%s: %w", msg.Tag(), ErrTerminated)
	}

	switch m := msg.(type) {
	case protocol.GameStarted:
		g.onGameStarted()
	case protocol.PeekingPhaseStarted:
		g.onPeekingPhaseStarted(m)
	case protocol.PlayerTurn:
		g.onPlayerTurn(m)
	case protocol.CardWasDrawn:
		g.onCardWasDrawn(m)
	case protocol.DrawnCard:
		g.onDrawnCard(m)
	case protocol.CardSwapped:
		g.onCardSwapped(m)
	case protocol.CardDiscarded:
		g.onCardDiscarded(m)
	case protocol.PlayerWentCrabul:
		g.onPlayerWentCrabul(m)
	case protocol.PowerActivated:
		g.onPowerActivated(m)
	case protocol.PowerUsed:
		g.onPowerUsed(m)
	case protocol.PeekedCard:
		g.onPeekedCard(m)
	case protocol.PowerDiscarded:
		g.onPowerDiscarded(m)
	case protocol.ForcedBlindSwap:
		g.onForcedBlindSwap(m)
	case protocol.TurnEndedByTimeout:
		g.onTurnEndedByTimeout(m)
	case protocol.SameCardAttempt:
		g.onSameCardAttempt(m)
	case protocol.CardReplaced:
		g.onCardReplaced(m)
	case protocol.GameTerminated:
		g.onGameTerminated(m)
	default:
		return fmt.Errorf("game: %s is not a game message", msg.Tag())
	}
	return nil
}

// Reject records a server refusal of a previously sent command.
func (g *Game) Reject(m protocol.CommandRejected) {
	g.mu.Lock()
	g.rejection = m.Reason
	log.Warnf("Game %s: server rejected command: %s (mode %s).", g.ID, m.Reason, g.modeLocked())
	g.notify("Command rejected: %s", m.Reason)
	notes := g.pending
	g.pending = nil
	g.mu.Unlock()

	g.flush(notes, nil)
}

// Mode returns the current interaction mode, which decides how gestures
// are encoded.
func (g *Game) Mode() engine.Mode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.modeLocked()
}

// Label returns the banner text for the current mode.
func (g *Game) Label() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.label
}

// Started reports whether the waiting room has closed, via GameStarted or
// PeekingPhaseStarted.
func (g *Game) Started() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.started
}

// Terminated reports whether GameTerminated has been applied.
func (g *Game) Terminated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.terminated
}

// modeLocked combines the stored power/duplicate mode with the turn state.
// Assumes lock is held by caller.
func (g *Game) modeLocked() engine.Mode {
	switch {
	case g.terminated:
		return engine.ModeTerminated
	case g.mode != engine.ModeIdle:
		return g.mode
	case g.turn.Current != engine.NoPlayer && g.isSelf(g.turn.Current):
		if g.turn.Drawn != nil {
			return engine.ModeMyTurnCardDrawn
		}
		return engine.ModeMyTurnWaiting
	}
	return engine.ModeIdle
}

func (g *Game) isSelf(id engine.PlayerID) bool {
	self, ok := g.roster.Self()
	return ok && id == self
}

func (g *Game) name(id engine.PlayerID) string {
	return g.roster.Name(id)
}

// setMode replaces the power/duplicate mode and its label.
// Assumes lock is held by caller.
func (g *Game) setMode(m engine.Mode, label string) {
	if g.mode != m {
		log.Debugf("Game %s: mode %s -> %s", g.ID, g.mode, m)
	}
	g.mode = m
	g.label = label
}

// notify queues a notification for delivery once the lock is released.
// Assumes lock is held by caller.
func (g *Game) notify(format string, args ...any) {
	g.seq++
	g.pending = append(g.pending, Notification{
		Seq:  g.seq,
		At:   time.Now(),
		Text: fmt.Sprintf(format, args...),
	})
}

// navigate queues a navigation signal.
// Assumes lock is held by caller.
func (g *Game) navigate(p Phase) {
	g.nav = append(g.nav, p)
}

func (g *Game) flush(notes []Notification, nav []Phase) {
	for _, n := range notes {
		if g.Notifier != nil {
			g.Notifier.Notify(n)
		} else {
			log.Printf("Warning: Game %s: Notifier is nil, dropping notification %q.", g.ID, n.Text)
		}
	}
	for _, p := range nav {
		if g.NavigateFn != nil {
			g.NavigateFn(p)
		} else {
			log.Printf("Warning: Game %s: NavigateFn is nil, cannot navigate to %s.", g.ID, p)
		}
	}
}

// adjustSlots changes a player's card count, never below zero.
// Assumes lock is held by caller.
func (g *Game) adjustSlots(id engine.PlayerID, delta int) {
	n := g.slots[id] + delta
	if n < 0 {
		log.Warnf("Game %s: slot count for %s would drop below zero.", g.ID, id)
		n = 0
	}
	g.slots[id] = n
	if g.isSelf(id) && len(g.known) > 0 {
		// Indexes shift when own cards are added or removed.
		g.known = make(map[int]engine.Card)
	}
}
