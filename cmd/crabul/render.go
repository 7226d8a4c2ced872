package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/game"
	"github.com/jason-s-yu/crabul/internal/room"
)

// printNotifications prints each notification as an info line.
func printNotifications(notes []game.Notification) {
	for _, n := range notes {
		pterm.Info.Printfln("[%s] %s", n.At.Format("15:04:05"), n.Text)
	}
}

// printRoster renders the room roster as a table, marking the local player.
func printRoster(roomID engine.RoomID, players []room.PlayerRecord, self engine.PlayerID) {
	data := pterm.TableData{{"#", "Name", "Ready"}}
	for _, p := range players {
		name := p.Name
		if p.ID == self {
			name = pterm.LightCyan(name + " (you)")
		}
		ready := ""
		if p.IsReady {
			ready = pterm.LightGreen("yes")
		}
		data = append(data, []string{string(p.ID), name, ready})
	}
	title := "Room"
	if roomID != "" {
		title = "Room " + string(roomID)
	}
	pterm.DefaultSection.Println(title)
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

// printView renders the table: every player's slot count, the local hand
// as far as it is known, the discard pile and the current mode.
func printView(v game.View, players []room.PlayerRecord, self engine.PlayerID) {
	var rows []string
	for _, p := range players {
		line := fmt.Sprintf("%s %-12s %s", p.ID, p.Name, strings.Repeat("▮ ", v.Slots[p.ID]))
		if p.ID == v.CurrentPlayer {
			line = pterm.LightYellow(line + " <")
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", "Your hand: "+handString(v, v.Slots[self]))
	if v.DiscardTop != nil {
		rows = append(rows, "Discard:   "+v.DiscardTop.String())
	}
	if v.DrawnCard != nil {
		drawn := "Drawn:     " + v.DrawnCard.String()
		if v.DrawnPower != engine.PowerNone {
			drawn += fmt.Sprintf(" (discard for %s)", v.DrawnPower)
		}
		rows = append(rows, drawn)
	}
	if v.PeekedCard != nil {
		rows = append(rows, "Peeked:    "+v.PeekedCard.String())
	}
	if len(v.CrabulPlayers) > 0 {
		ids := make([]string, len(v.CrabulPlayers))
		for i, id := range v.CrabulPlayers {
			ids[i] = string(id)
		}
		rows = append(rows, "Crabul:    "+strings.Join(ids, ", "))
	}

	title := v.Mode.String()
	if v.Mode.IsDuplicate() {
		title = "PAUSED " + title
	}
	if v.Label != "" {
		title += " | " + v.Label
	}
	pterm.DefaultBox.WithTitle(pterm.LightMagenta(title)).WithTitleTopCenter().
		WithLeftPadding(2).WithRightPadding(2).Println(strings.Join(rows, "\n"))
	printLegal(v.Legal)
}

func handString(v game.View, n int) string {
	cards := make([]string, n)
	for i := range cards {
		c, ok := v.KnownCards[i]
		if ok && !v.FaceDown {
			cards[i] = fmt.Sprintf("%d:%s", i+1, c)
		} else {
			cards[i] = strconv.Itoa(i+1) + ":??"
		}
	}
	return strings.Join(cards, "  ")
}

func printLegal(kinds []engine.GestureKind) {
	if len(kinds) == 0 {
		return
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	pterm.Debug.Println("Legal: " + strings.Join(names, ", "))
}

// printResults renders the final scores, lowest first.
func printResults(v game.View, dir *room.Directory) {
	if v.Results == nil {
		return
	}
	scores := append(v.Results.Scores[:0:0], v.Results.Scores...)
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].TotalScore < scores[j].TotalScore })

	data := pterm.TableData{{"Player", "Cards", "Score"}}
	for _, s := range scores {
		cards := make([]string, len(s.Cards))
		for i, c := range s.Cards {
			cards[i] = c.String()
		}
		name := dir.Name(s.PlayerID)
		if s.PlayerID == v.Results.Winner {
			name = pterm.LightGreen(name + " *")
		}
		data = append(data, []string{name, strings.Join(cards, " "), strconv.Itoa(s.TotalScore)})
	}
	pterm.DefaultSection.Println("Results")
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}
