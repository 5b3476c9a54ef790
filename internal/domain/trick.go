package domain

// RankFn maps a card to its strength within a trick. Rank orders differ
// per game (A-high standard, pinochle's A,10,K,Q,J,9).
type RankFn func(Card) int

// LeadSuit returns the suit of the first card played into the trick.
func LeadSuit(trick []TrickPlay) Suit {
	if len(trick) == 0 {
		return ""
	}
	return trick[0].Card.Suit
}

// TrickWinner resolves a completed trick: the highest trump wins if any
// trump was played, otherwise the highest card of the led suit. Pass an
// empty trump for no-trump play.
func TrickWinner(trick []TrickPlay, trump Suit, rank RankFn) int {
	lead := LeadSuit(trick)
	winner := trick[0].Seat
	winnerRank := rank(trick[0].Card)
	winnerTrump := trump != "" && trick[0].Card.Suit == trump

	for _, play := range trick[1:] {
		isTrump := trump != "" && play.Card.Suit == trump
		r := rank(play.Card)
		switch {
		case isTrump && !winnerTrump:
			winner, winnerRank, winnerTrump = play.Seat, r, true
		case isTrump && winnerTrump && r > winnerRank:
			winner, winnerRank = play.Seat, r
		case !isTrump && !winnerTrump && play.Card.Suit == lead && r > winnerRank:
			winner, winnerRank = play.Seat, r
		}
	}
	return winner
}

// MustFollow reports whether playing card into the trick violates the
// follow-suit obligation for a hand holding the led suit.
func MustFollow(hand []Card, trick []TrickPlay, card Card) bool {
	if len(trick) == 0 {
		return false
	}
	lead := LeadSuit(trick)
	return HasSuit(hand, lead) && card.Suit != lead
}

// MustTrump reports whether playing card violates the must-trump rule:
// a hand void in the led suit that holds trump has to play it.
func MustTrump(hand []Card, trick []TrickPlay, card Card, trump Suit) bool {
	if len(trick) == 0 || trump == "" {
		return false
	}
	lead := LeadSuit(trick)
	if HasSuit(hand, lead) || lead == trump {
		return false
	}
	return HasSuit(hand, trump) && card.Suit != trump
}
