package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jason-s-yu/crabul/engine"
)

type inputKind int

const (
	inputGesture inputKind = iota
	inputStart
	inputRaw
	inputShow
	inputHelp
	inputQuit
)

// input is one parsed line from the terminal.
type input struct {
	kind    inputKind
	gesture engine.Gesture
	raw     string
}

var errEmptyInput = errors.New("empty input")

const usage = `Commands (cards are numbered from 1):
  click N          click your card N
  click P N        click player P's card N
  drag N M         drag your card N onto your card M
  drag N P M       drag your card N onto player P's card M
  throw N          throw your card N on the discard pile
  throw P N        throw player P's card N on the discard pile
  draw | crabul | discard | end
  start            start the game after a countdown
  /raw CMD ARGS    send a command as typed
  show | help | quit`

// parseInput turns a terminal line into a gesture or shell action. Player
// P equal to self is treated as one of your own cards.
func parseInput(line string, self engine.PlayerID) (input, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return input{}, errEmptyInput
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	nums := func(want ...int) ([]int, error) {
		ok := false
		for _, n := range want {
			ok = ok || len(args) == n
		}
		if !ok {
			return nil, fmt.Errorf("%s: wrong number of arguments", verb)
		}
		out := make([]int, len(args))
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%s: %q is not a positive number", verb, a)
			}
			out[i] = n
		}
		return out, nil
	}
	gesture := func(g engine.Gesture) (input, error) { return input{kind: inputGesture, gesture: g}, nil }

	switch verb {
	case "click":
		n, err := nums(1, 2)
		if err != nil {
			return input{}, err
		}
		if len(n) == 1 {
			return gesture(engine.ClickOwnCard(n[0] - 1))
		}
		owner := playerArg(n[0])
		if owner == self {
			return gesture(engine.ClickOwnCard(n[1] - 1))
		}
		return gesture(engine.ClickOtherCard(owner, n[1]-1))

	case "drag":
		n, err := nums(2, 3)
		if err != nil {
			return input{}, err
		}
		if len(n) == 2 {
			return gesture(engine.DragOwnToOwn(n[0]-1, n[1]-1))
		}
		owner := playerArg(n[1])
		if owner == self {
			return gesture(engine.DragOwnToOwn(n[0]-1, n[2]-1))
		}
		return gesture(engine.DragOwnToOther(n[0]-1, owner, n[2]-1))

	case "throw":
		n, err := nums(1, 2)
		if err != nil {
			return input{}, err
		}
		if len(n) == 1 {
			return gesture(engine.DragToDiscard(engine.CardSlot{Owner: self, Index: n[0] - 1}))
		}
		return gesture(engine.DragToDiscard(engine.CardSlot{Owner: playerArg(n[0]), Index: n[1] - 1}))

	case "draw":
		return gesture(engine.ClickDraw())
	case "crabul":
		return gesture(engine.ClickCrabul())
	case "discard":
		return gesture(engine.ClickDiscardDrawn())
	case "end":
		return gesture(engine.ClickEndTurn())
	case "start":
		return input{kind: inputStart}, nil
	case "/raw":
		if len(args) == 0 {
			return input{}, fmt.Errorf("/raw: missing command")
		}
		return input{kind: inputRaw, raw: strings.Join(args, " ")}, nil
	case "show":
		return input{kind: inputShow}, nil
	case "help", "?":
		return input{kind: inputHelp}, nil
	case "quit", "exit":
		return input{kind: inputQuit}, nil
	}
	return input{}, fmt.Errorf("unknown command %q, type help", fields[0])
}

func playerArg(n int) engine.PlayerID { return engine.PlayerID(strconv.Itoa(n)) }
