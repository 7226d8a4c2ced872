package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Command is one outbound text frame, e.g. "/pow3 1 4 2".
type Command string

// Verb is the leading token of a command.
type Verb string

const (
	VerbDraw    Verb = "/draw"
	VerbCrabul  Verb = "/crabul"
	VerbStart   Verb = "/start"
	VerbDiscard Verb = "/discard"
	VerbThrow   Verb = "/throw"
	VerbGive    Verb = "/throw_2"
	VerbSwap    Verb = "/swap"
	VerbPow1    Verb = "/pow1"
	VerbPow2    Verb = "/pow2"
	VerbPow3    Verb = "/pow3"
	VerbPow4a   Verb = "/pow4_1"
	VerbPow4b   Verb = "/pow4_2"
)

// verbArity lists the argument count each verb takes. /pow4_2 also
// accepts zero arguments (end turn without swapping).
var verbArity = map[Verb]int{
	VerbDraw:    0,
	VerbCrabul:  0,
	VerbStart:   0,
	VerbDiscard: 0,
	VerbThrow:   2,
	VerbGive:    1,
	VerbSwap:    1,
	VerbPow1:    1,
	VerbPow2:    2,
	VerbPow3:    3,
	VerbPow4a:   2,
	VerbPow4b:   1,
}

// ErrInvalidCommand is returned by ParseCommand for anything outside the
// command grammar.
var ErrInvalidCommand = errors.New("invalid command")

// ---------------------------------------------------------------------------
// Encode functions
// ---------------------------------------------------------------------------

func EncodeDraw() Command    { return Command(VerbDraw) }
func EncodeCrabul() Command  { return Command(VerbCrabul) }
func EncodeStart() Command   { return Command(VerbStart) }
func EncodeDiscard() Command { return Command(VerbDiscard) }

// EncodeThrow throws any visible card (own or another player's) onto the
// discard pile as a duplicate.
func EncodeThrow(slot CardSlot) Command {
	return Command(fmt.Sprintf("%s %s %d", VerbThrow, slot.Owner, slot.Index))
}

// EncodeGive picks the own card handed to the player whose duplicate was
// thrown.
func EncodeGive(ownIdx int) Command { return Command(fmt.Sprintf("%s %d", VerbGive, ownIdx)) }

// EncodeSwap replaces own card ownIdx with the drawn card.
func EncodeSwap(ownIdx int) Command { return Command(fmt.Sprintf("%s %d", VerbSwap, ownIdx)) }

func EncodePeekOwn(ownIdx int) Command { return Command(fmt.Sprintf("%s %d", VerbPow1, ownIdx)) }

func EncodePeekOther(slot CardSlot) Command {
	return Command(fmt.Sprintf("%s %s %d", VerbPow2, slot.Owner, slot.Index))
}

// EncodeBlindSwap swaps own card ownIdx with other, unseen.
func EncodeBlindSwap(ownIdx int, other CardSlot) Command {
	return Command(fmt.Sprintf("%s %d %s %d", VerbPow3, ownIdx, other.Owner, other.Index))
}

// EncodeCheckAndSwapPeek is stage 1 of the King power.
func EncodeCheckAndSwapPeek(other CardSlot) Command {
	return Command(fmt.Sprintf("%s %s %d", VerbPow4a, other.Owner, other.Index))
}

// EncodeCheckAndSwap is stage 2 of the King power: swap own card ownIdx
// with the card peeked in stage 1.
func EncodeCheckAndSwap(ownIdx int) Command {
	return Command(fmt.Sprintf("%s %d", VerbPow4b, ownIdx))
}

// EncodeEndTurn is stage 2 of the King power without swapping. The
// trailing space is part of the command: the server matches "/pow4_2 ".
func EncodeEndTurn() Command { return Command(string(VerbPow4b) + " ") }

// ---------------------------------------------------------------------------
// Decode / predicate functions
// ---------------------------------------------------------------------------

// Verb returns the leading token of c.
func (c Command) Verb() Verb {
	s := string(c)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return Verb(s)
}

// Args returns the whitespace-separated arguments after the verb.
func (c Command) Args() []string {
	fields := strings.Fields(string(c))
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// IsEndTurn reports whether c is the no-swap form of /pow4_2.
func (c Command) IsEndTurn() bool {
	return c.Verb() == VerbPow4b && len(c.Args()) == 0
}

// ParseCommand validates s against the command grammar. Arguments must be
// non-negative integers. The no-argument /pow4_2 is normalized to its
// trailing-space form.
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidCommand)
	}
	verb := Verb(fields[0])
	arity, ok := verbArity[verb]
	if !ok {
		return "", fmt.Errorf("%w: unknown verb %q", ErrInvalidCommand, fields[0])
	}
	args := fields[1:]
	if verb == VerbPow4b && len(args) == 0 {
		return EncodeEndTurn(), nil
	}
	if len(args) != arity {
		return "", fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidCommand, verb, arity, len(args))
	}
	for _, a := range args {
		if _, err := strconv.ParseUint(a, 10, 32); err != nil {
			return "", fmt.Errorf("%w: argument %q is not a non-negative integer", ErrInvalidCommand, a)
		}
	}
	return Command(strings.Join(fields, " ")), nil
}
