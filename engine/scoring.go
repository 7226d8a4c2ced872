package engine

// Value returns the card's points at the end of a game. Red Kings are -1,
// Jokers 0, every other card its rank. UnknownCard scores 0.
func (c Card) Value() int {
	switch {
	case !c.Known() || c.IsJoker():
		return 0
	case c.Rank() == RankKing && (c.Suit() == SuitHearts || c.Suit() == SuitDiamonds):
		return -1
	}
	return int(c.Rank())
}

// HandScore returns the sum of card values in a hand. The lowest score
// wins.
func HandScore(hand []Card) int {
	score := 0
	for _, c := range hand {
		score += c.Value()
	}
	return score
}
