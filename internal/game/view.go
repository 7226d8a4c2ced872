// internal/game/view.go
package game

import (
	"sort"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

// View is a read-only snapshot of everything the presentation layer
// renders. It shares no memory with the Game.
type View struct {
	Mode          engine.Mode
	Label         string
	CurrentPlayer engine.PlayerID // highlight target
	IsMyTurn      bool
	Affordances   Affordances
	Legal         []engine.GestureKind

	FaceDown      bool
	Slots         map[engine.PlayerID]int
	DiscardTop    *engine.Card
	DiscardImage  string
	CrabulPlayers []engine.PlayerID
	KnownCards    map[int]engine.Card
	PeekedCard    *engine.Card
	DrawnCard     *engine.Card
	DrawnPower    engine.PowerKind // power the drawn card grants if discarded

	Paused        bool
	Terminated    bool
	Results       *protocol.Results
	LastRejection string
}

// View returns a deep-copied snapshot of the current state.
func (g *Game) View() View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	mode := g.modeLocked()
	v := View{
		Mode:          mode,
		Label:         g.label,
		CurrentPlayer: g.turn.Current,
		IsMyTurn:      g.turn.Current != engine.NoPlayer && g.isSelf(g.turn.Current),
		Affordances:   g.affordances,
		Legal:         engine.LegalGestures(mode),
		FaceDown:      g.faceDown,
		Slots:         make(map[engine.PlayerID]int, len(g.slots)),
		KnownCards:    make(map[int]engine.Card, len(g.known)),
		Paused:        g.pause.Full(),
		Terminated:    g.terminated,
		LastRejection: g.rejection,
	}
	for id, n := range g.slots {
		v.Slots[id] = n
	}
	for idx, c := range g.known {
		v.KnownCards[idx] = c
	}
	for id, called := range g.crabul {
		if called {
			v.CrabulPlayers = append(v.CrabulPlayers, id)
		}
	}
	sort.Slice(v.CrabulPlayers, func(i, j int) bool { return v.CrabulPlayers[i] < v.CrabulPlayers[j] })

	v.DiscardTop = copyCard(g.discardTop)
	if v.DiscardTop != nil {
		v.DiscardImage = engine.ImagePath(*v.DiscardTop)
	}
	v.PeekedCard = copyCard(g.peeked)
	v.DrawnCard = copyCard(g.turn.Drawn)
	if v.DrawnCard != nil {
		v.DrawnPower = engine.PowerForRank(*v.DrawnCard)
	}
	if g.results != nil {
		r := protocol.Results{Winner: g.results.Winner, Scores: make([]protocol.Score, len(g.results.Scores))}
		for i, s := range g.results.Scores {
			r.Scores[i] = protocol.Score{
				PlayerID:   s.PlayerID,
				Cards:      append([]engine.Card(nil), s.Cards...),
				TotalScore: s.TotalScore,
			}
		}
		v.Results = &r
	}
	return v
}

// SlotImage returns the image for own slot idx: the card if it is known
// and face up, otherwise the card back.
func (v View) SlotImage(idx int) string {
	if c, ok := v.KnownCards[idx]; ok && !v.FaceDown {
		return engine.ImagePath(c)
	}
	return engine.FaceDownImage
}

func copyCard(c *engine.Card) *engine.Card {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}
