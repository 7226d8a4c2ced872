// internal/game/game_test.go
package game

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

// fakeRoster is a fixed roster with a known local player.
type fakeRoster struct {
	self  engine.PlayerID
	names map[engine.PlayerID]string
}

func (r *fakeRoster) Self() (engine.PlayerID, bool) { return r.self, r.self != engine.NoPlayer }

func (r *fakeRoster) Name(id engine.PlayerID) string {
	if n, ok := r.names[id]; ok {
		return n
	}
	return string(id)
}

func (r *fakeRoster) IDs() []engine.PlayerID {
	ids := make([]engine.PlayerID, 0, len(r.names))
	for id := range r.names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// recordingNotifier captures notifications and navigation for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
	nav   []Phase
}

func (rn *recordingNotifier) notify(n Notification) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.texts = append(rn.texts, n.Text)
}

func (rn *recordingNotifier) navigate(p Phase) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.nav = append(rn.nav, p)
}

func (rn *recordingNotifier) last() string {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	if len(rn.texts) == 0 {
		return ""
	}
	return rn.texts[len(rn.texts)-1]
}

func (rn *recordingNotifier) count() int {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return len(rn.texts)
}

func (rn *recordingNotifier) clear() {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.texts = nil
	rn.nav = nil
}

// setupTestGame builds a game where the local player is "1" (Ann) seated
// with "2" (Bob) and "3" (Cy).
func setupTestGame(t *testing.T) (*Game, *recordingNotifier) {
	t.Helper()
	roster := &fakeRoster{self: "1", names: map[engine.PlayerID]string{"1": "Ann", "2": "Bob", "3": "Cy"}}
	g := NewGame(uuid.New(), roster)
	rn := &recordingNotifier{}
	g.Notifier = NotifierFunc(rn.notify)
	g.NavigateFn = rn.navigate
	return g, rn
}

func apply(t *testing.T, g *Game, msgs ...protocol.Message) {
	t.Helper()
	for _, m := range msgs {
		require.NoError(t, g.Apply(m), "apply %s", m.Tag())
	}
}

func blindSwap() engine.Power { return engine.Power{Kind: engine.PowerBlindSwap} }

func intp(i int) *int { return &i }

func pidp(s string) *engine.PlayerID {
	id := engine.PlayerID(s)
	return &id
}

func TestPeekingPhaseDealsTable(t *testing.T) {
	g, rn := setupTestGame(t)
	h7 := engine.NewCard(engine.SuitHearts, 7)
	apply(t, g, protocol.PeekingPhaseStarted{Cards: [2]engine.Card{h7, engine.Joker}})

	v := g.View()
	assert.Equal(t, map[engine.PlayerID]int{"1": 4, "2": 4, "3": 4}, v.Slots)
	assert.Equal(t, map[int]engine.Card{0: h7, 1: engine.Joker}, v.KnownCards)
	assert.False(t, v.FaceDown)
	assert.Equal(t, "cards/2_7.svg", v.SlotImage(0))
	assert.Equal(t, engine.FaceDownImage, v.SlotImage(2))
	assert.Equal(t, "Game has started", rn.last())
	assert.Equal(t, []Phase{PhasePlay}, rn.nav)

	// Covered again when play begins.
	apply(t, g, protocol.PlayerTurn{PlayerID: "2"})
	v = g.View()
	assert.True(t, v.FaceDown)
	assert.Empty(t, v.KnownCards)
	assert.Equal(t, engine.FaceDownImage, v.SlotImage(0))
}

func TestGameStartedNavigatesOnce(t *testing.T) {
	g, rn := setupTestGame(t)
	apply(t, g, protocol.GameStarted{}, protocol.PeekingPhaseStarted{})
	assert.Equal(t, []Phase{PhasePlay}, rn.nav)
}

func TestTurnFlow(t *testing.T) {
	g, rn := setupTestGame(t)
	assert.Equal(t, engine.ModeIdle, g.Mode())

	apply(t, g, protocol.PlayerTurn{PlayerID: "1"})
	assert.Equal(t, engine.ModeMyTurnWaiting, g.Mode())
	assert.Equal(t, "Your turn", rn.last())
	v := g.View()
	assert.True(t, v.IsMyTurn)
	assert.True(t, v.Affordances.DrawEnabled)
	assert.True(t, v.Affordances.CrabulEnabled)

	apply(t, g, protocol.CardWasDrawn{PlayerID: "1"})
	v = g.View()
	assert.False(t, v.Affordances.DrawEnabled)
	assert.False(t, v.Affordances.CrabulEnabled)
	assert.Equal(t, "Your turn", rn.last(), "own draw is silent")

	k := engine.NewCard(engine.SuitSpade, engine.RankKing)
	apply(t, g, protocol.DrawnCard{Card: k})
	assert.Equal(t, engine.ModeMyTurnCardDrawn, g.Mode())
	v = g.View()
	require.NotNil(t, v.DrawnCard)
	assert.Equal(t, k, *v.DrawnCard)
	assert.Equal(t, engine.PowerCheckAndSwapStage1, v.DrawnPower)

	// The drawn sub-state persists until the next PlayerTurn.
	apply(t, g, protocol.CardSwapped{PlayerID: "1", Index: 2})
	assert.Equal(t, engine.ModeMyTurnCardDrawn, g.Mode())

	apply(t, g, protocol.PlayerTurn{PlayerID: "2"})
	assert.Equal(t, engine.ModeIdle, g.Mode())
	assert.Equal(t, "Player turn: Bob", rn.last())
	v = g.View()
	assert.False(t, v.Affordances.DrawEnabled)
	assert.Equal(t, engine.PlayerID("2"), v.CurrentPlayer)
	assert.Nil(t, v.DrawnCard)
}

func TestOtherPlayerNotifications(t *testing.T) {
	g, rn := setupTestGame(t)
	h5 := engine.NewCard(engine.SuitHearts, 5)
	tests := []struct {
		msg  protocol.Message
		want string
	}{
		{protocol.CardWasDrawn{PlayerID: "2"}, "Player Bob drew a card from the deck"},
		{protocol.CardSwapped{PlayerID: "2", Index: 0}, "Player Bob swapped card 1"},
		{protocol.CardDiscarded{PlayerID: "2", Card: h5}, "Player Bob discarded a card"},
		{protocol.PlayerWentCrabul{PlayerID: "3"}, "Player Cy went CRABUL!"},
		{protocol.PowerActivated{PlayerID: "2", Power: blindSwap()}, "Player Bob activated a power: BlindSwap"},
	}
	for _, tt := range tests {
		apply(t, g, tt.msg)
		assert.Equal(t, tt.want, rn.last(), "after %s", tt.msg.Tag())
	}
	v := g.View()
	require.NotNil(t, v.DiscardTop)
	assert.Equal(t, h5, *v.DiscardTop)
	assert.Equal(t, "cards/2_5.svg", v.DiscardImage)
	assert.Equal(t, []engine.PlayerID{"3"}, v.CrabulPlayers)
	assert.Equal(t, engine.ModeIdle, g.Mode(), "other players' powers do not change the local mode")
}

func TestOwnCrabulDisablesAffordances(t *testing.T) {
	g, rn := setupTestGame(t)
	apply(t, g, protocol.PlayerTurn{PlayerID: "1"})
	n := rn.count()
	apply(t, g, protocol.PlayerWentCrabul{PlayerID: "1"})
	v := g.View()
	assert.False(t, v.Affordances.DrawEnabled)
	assert.False(t, v.Affordances.CrabulEnabled)
	assert.Equal(t, []engine.PlayerID{"1"}, v.CrabulPlayers)
	assert.Equal(t, n, rn.count(), "own crabul is silent")
}

// TestBlindSwapScenario activates a blind swap locally, encodes the drag and
// waits for the server before leaving the mode.
func TestBlindSwapScenario(t *testing.T) {
	g, _ := setupTestGame(t)
	apply(t, g, protocol.PowerActivated{PlayerID: "1", Power: blindSwap()})
	assert.Equal(t, engine.ModeBlindSwap, g.Mode())
	assert.Equal(t, "POWER BlindSwap ACTIVE!", g.Label())

	cmd, ok := engine.Encode(engine.DragOwnToOther(1, "3", 2), g.Mode())
	require.True(t, ok)
	assert.Equal(t, engine.Command("/pow3 1 3 2"), cmd)
	assert.Equal(t, engine.ModeBlindSwap, g.Mode(), "encoding never changes the mode")

	// A PlayerTurn does not clear a pending power either.
	apply(t, g, protocol.PlayerTurn{PlayerID: "1"})
	assert.Equal(t, engine.ModeBlindSwap, g.Mode())

	apply(t, g, protocol.PowerUsed{Power: blindSwap(), PlayerID: "1", Index: intp(1), Target: pidp("3"), TargetIndex: intp(2)})
	assert.Equal(t, engine.ModeMyTurnWaiting, g.Mode())
	assert.Equal(t, "", g.Label())
}

func TestCheckAndSwapIsTwoStage(t *testing.T) {
	g, _ := setupTestGame(t)
	stage1 := engine.Power{Kind: engine.PowerCheckAndSwapStage1}
	apply(t, g, protocol.PowerActivated{PlayerID: "1", Power: stage1})
	assert.Equal(t, engine.ModeCheckAndSwapStage1, g.Mode())

	apply(t, g, protocol.PowerUsed{Power: stage1, PlayerID: "1", Target: pidp("2"), TargetIndex: intp(0)})
	assert.Equal(t, engine.ModeCheckAndSwapStage2, g.Mode())
	assert.Equal(t, "SWAP WITH ONE OF YOUR CARD OR END TURN", g.Label())
	assert.True(t, g.View().Affordances.EndTurnVisible)

	cmd, ok := engine.Encode(engine.ClickEndTurn(), g.Mode())
	require.True(t, ok)
	assert.Equal(t, engine.Command("/pow4_2 "), cmd)

	stage2 := engine.Power{Kind: engine.PowerCheckAndSwapStage2, Peeked: engine.CardSlot{Owner: "2", Index: 0}}
	apply(t, g, protocol.PowerUsed{Power: stage2, PlayerID: "1", Target: pidp("2"), TargetIndex: intp(0)})
	assert.Equal(t, engine.ModeIdle, g.Mode())
	assert.False(t, g.View().Affordances.EndTurnVisible)
}

func TestPeekedCardIsShownUntilUsed(t *testing.T) {
	g, _ := setupTestGame(t)
	peekOwn := engine.Power{Kind: engine.PowerPeekOwnCard}
	apply(t, g, protocol.PowerActivated{PlayerID: "1", Power: peekOwn}, protocol.PeekedCard{Card: engine.Joker})
	v := g.View()
	require.NotNil(t, v.PeekedCard)
	assert.Equal(t, engine.Joker, *v.PeekedCard)

	apply(t, g, protocol.PowerUsed{Power: peekOwn, PlayerID: "1", Index: intp(0)})
	assert.Nil(t, g.View().PeekedCard)
}

// TestPowerUsedTemplates checks the third-person narration for every power.
func TestPowerUsedTemplates(t *testing.T) {
	pw := func(k engine.PowerKind) engine.Power { return engine.Power{Kind: k} }
	tests := []struct {
		name string
		msg  protocol.PowerUsed
		want string
	}{
		{"peek own", protocol.PowerUsed{Power: pw(engine.PowerPeekOwnCard), PlayerID: "2", Index: intp(2)},
			"Player Bob peeked his own card at position 3"},
		{"peek other", protocol.PowerUsed{Power: pw(engine.PowerPeekOtherCard), PlayerID: "2", Target: pidp("3"), TargetIndex: intp(0)},
			"Player Bob peeked card 1 of player Cy"},
		{"peek mine", protocol.PowerUsed{Power: pw(engine.PowerPeekOtherCard), PlayerID: "2", Target: pidp("1"), TargetIndex: intp(3)},
			"Player Bob peeked your card 4"},
		{"blind swap other", protocol.PowerUsed{Power: pw(engine.PowerBlindSwap), PlayerID: "2", Index: intp(0), Target: pidp("3"), TargetIndex: intp(1)},
			"Player Bob blind swapped card 1 with card 2 of player Cy"},
		{"blind swap mine", protocol.PowerUsed{Power: pw(engine.PowerBlindSwap), PlayerID: "2", Index: intp(0), Target: pidp("1"), TargetIndex: intp(1)},
			"Player Bob blind swapped card 1 with your card 2"},
		{"stage 1 other", protocol.PowerUsed{Power: pw(engine.PowerCheckAndSwapStage1), PlayerID: "3", Target: pidp("2"), TargetIndex: intp(2)},
			"Player Cy peeked card 3 of player Bob and is deciding whether to swap"},
		{"stage 1 mine", protocol.PowerUsed{Power: pw(engine.PowerCheckAndSwapStage1), PlayerID: "3", Target: pidp("1"), TargetIndex: intp(2)},
			"Player Cy peeked your card 3 and is deciding whether to swap"},
		{"stage 2 swap", protocol.PowerUsed{Power: pw(engine.PowerCheckAndSwapStage2), PlayerID: "3", Index: intp(1), Target: pidp("2"), TargetIndex: intp(2)},
			"Player Cy swapped card 2 with card 3 of player Bob"},
		{"stage 2 swap mine", protocol.PowerUsed{Power: pw(engine.PowerCheckAndSwapStage2), PlayerID: "3", Index: intp(1), Target: pidp("1"), TargetIndex: intp(2)},
			"Player Cy swapped card 2 with your card 3"},
		{"stage 2 decline", protocol.PowerUsed{Power: pw(engine.PowerCheckAndSwapStage2), PlayerID: "3", Target: pidp("2"), TargetIndex: intp(2)},
			"Player Cy decided not to swap"},
		{"missing args", protocol.PowerUsed{Power: pw(engine.PowerBlindSwap), PlayerID: "2"},
			"Player Bob used a power: BlindSwap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, rn := setupTestGame(t)
			apply(t, g, tt.msg)
			assert.Equal(t, tt.want, rn.last())
			assert.Equal(t, engine.ModeIdle, g.Mode())
		})
	}
}

// TestTerminatedIsAbsorbing checks no game message changes state after the end.
func TestTerminatedIsAbsorbing(t *testing.T) {
	g, rn := setupTestGame(t)
	apply(t, g, protocol.PlayerTurn{PlayerID: "1"})
	results := protocol.Results{Winner: "2", Scores: []protocol.Score{{PlayerID: "2", Cards: []engine.Card{engine.Joker}, TotalScore: 0}}}
	apply(t, g, protocol.GameTerminated{Results: results})

	assert.Equal(t, engine.ModeTerminated, g.Mode())
	assert.True(t, g.Terminated())
	assert.Equal(t, "Winner: Player Bob", rn.last())
	assert.Contains(t, rn.nav, PhaseResults)
	before := g.View()
	n := rn.count()

	err := g.Apply(protocol.PlayerTurn{PlayerID: "5"})
	assert.ErrorIs(t, err, ErrTerminated)
	err = g.Apply(protocol.PowerActivated{PlayerID: "1", Power: blindSwap()})
	assert.ErrorIs(t, err, ErrTerminated)

	after := g.View()
	assert.Equal(t, before, after)
	assert.Equal(t, n, rn.count())
	assert.Empty(t, after.Legal)
	require.NotNil(t, after.Results)
	assert.Equal(t, engine.PlayerID("2"), after.Results.Winner)

	// The snapshot is a copy.
	after.Results.Scores[0].TotalScore = 99
	assert.Equal(t, 0, g.View().Results.Scores[0].TotalScore)
}

func TestNonGameMessagesAreRejected(t *testing.T) {
	g, _ := setupTestGame(t)
	assert.Error(t, g.Apply(protocol.PlayerLeft{PlayerID: "2"}))
	assert.Error(t, g.Apply(protocol.UnknownMessage{Name: "Nope"}))
}

func TestRejectSurfacesServerError(t *testing.T) {
	g, rn := setupTestGame(t)
	g.Reject(protocol.CommandRejected{Reason: "InvalidCardIndex"})
	assert.Equal(t, "Command rejected: InvalidCardIndex", rn.last())
	assert.Equal(t, "InvalidCardIndex", g.View().LastRejection)
	assert.Equal(t, engine.ModeIdle, g.Mode())
}

func TestTimeoutDropsLocalPower(t *testing.T) {
	g, rn := setupTestGame(t)
	peekOther := engine.Power{Kind: engine.PowerPeekOtherCard}
	apply(t, g, protocol.PlayerTurn{PlayerID: "1"}, protocol.PowerActivated{PlayerID: "1", Power: peekOther})
	apply(t, g, protocol.TurnEndedByTimeout{PlayerID: "1"})
	assert.Equal(t, engine.ModeMyTurnWaiting, g.Mode())
	assert.Equal(t, Affordances{}, g.View().Affordances)
	assert.Equal(t, "Your turn ended by timeout", rn.last())

	apply(t, g, protocol.PowerDiscarded{PlayerID: "1", Power: peekOther})
	assert.Equal(t, "Your power PeekOtherCard was discarded", rn.last())

	apply(t, g, protocol.PowerDiscarded{PlayerID: "2", Power: peekOther})
	assert.Equal(t, "Player Bob lost the power: PeekOtherCard", rn.last())
}

func TestForcedBlindSwap(t *testing.T) {
	g, rn := setupTestGame(t)
	apply(t, g, protocol.PowerActivated{PlayerID: "1", Power: blindSwap()})
	apply(t, g, protocol.ForcedBlindSwap{PlayerID: "1", Index: 0, OtherID: "2", OtherIndex: 3})
	assert.Equal(t, engine.ModeIdle, g.Mode())
	assert.Equal(t, "Your card 1 was blind swapped with card 4 of player Bob", rn.last())

	apply(t, g, protocol.ForcedBlindSwap{PlayerID: "3", Index: 1, OtherID: "1", OtherIndex: 0})
	assert.Equal(t, "Player Cy was forced to blind swap card 2 with your card 1", rn.last())

	apply(t, g, protocol.ForcedBlindSwap{PlayerID: "3", Index: 1, OtherID: "2", OtherIndex: 0})
	assert.Equal(t, "Player Cy was forced to blind swap card 2 with card 1 of player Bob", rn.last())
}

func TestNotificationQueue(t *testing.T) {
	q := NewNotificationQueue(2)
	g, _ := setupTestGame(t)
	g.Notifier = q

	apply(t, g,
		protocol.CardWasDrawn{PlayerID: "2"},
		protocol.CardWasDrawn{PlayerID: "3"},
		protocol.PlayerWentCrabul{PlayerID: "2"},
	)
	select {
	case <-q.Ready():
	default:
		t.Fatal("queue should signal readiness")
	}
	assert.Equal(t, 1, q.Dropped())
	items := q.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, "Player Cy drew a card from the deck", items[0].Text)
	assert.Equal(t, "Player Bob went CRABUL!", items[1].Text)
	assert.Less(t, items[0].Seq, items[1].Seq)
	assert.Empty(t, q.Drain())
}

// TestOwnDiscardUsesUpDrawnCard discards the drawn card into a power; once
// the power resolves the drawn card must not come back.
func TestOwnDiscardUsesUpDrawnCard(t *testing.T) {
	g, _ := setupTestGame(t)
	h9 := engine.NewCard(engine.SuitHearts, 9)
	apply(t, g, protocol.PlayerTurn{PlayerID: "1"}, protocol.CardWasDrawn{PlayerID: "1"}, protocol.DrawnCard{Card: h9})
	require.Equal(t, engine.ModeMyTurnCardDrawn, g.Mode())

	apply(t, g, protocol.CardDiscarded{PlayerID: "1", Card: h9})
	assert.Nil(t, g.View().DrawnCard)
	assert.NotEqual(t, engine.ModeMyTurnCardDrawn, g.Mode())

	peekOwn := engine.Power{Kind: engine.PowerPeekOwnCard}
	apply(t, g, protocol.PowerActivated{PlayerID: "1", Power: peekOwn})
	assert.Equal(t, engine.ModePeekOwnCard, g.Mode())
	apply(t, g, protocol.PowerUsed{Power: peekOwn, PlayerID: "1", Index: intp(0)})
	assert.NotEqual(t, engine.ModeMyTurnCardDrawn, g.Mode())
}

func TestOwnSwapUsesUpDrawnCard(t *testing.T) {
	g, _ := setupTestGame(t)
	apply(t, g, protocol.PlayerTurn{PlayerID: "1"}, protocol.DrawnCard{Card: engine.Joker})
	require.Equal(t, engine.ModeMyTurnCardDrawn, g.Mode())

	apply(t, g, protocol.CardSwapped{PlayerID: "1", Index: 2})
	assert.Nil(t, g.View().DrawnCard)
	assert.Equal(t, engine.ModeMyTurnWaiting, g.Mode())
}
