package domain

import (
	"fmt"
	"math/rand"
)

// Suit identifies a card suit. Jokers carry SuitWild.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitSpades   Suit = "spades"
	SuitWild     Suit = "wild"
	SuitNoTrump  Suit = "notrump" // bid suit only, never printed on a card
)

// StandardSuits lists the four playable suits in a fixed order.
var StandardSuits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// StandardRanks lists the thirteen ranks of a standard deck, low to high.
var StandardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// PinochleRanks lists the six ranks of a pinochle deck, low to high.
var PinochleRanks = []string{"9", "J", "Q", "K", "10", "A"}

// RankJoker is the rank carried by joker cards.
const RankJoker = "joker"

// Card is a single playing card. Identity is by ID; a card never changes
// after construction and moves between zones only by explicit transfer.
type Card struct {
	ID   string `json:"id"`
	Suit Suit   `json:"suit"`
	Rank string `json:"rank"`
}

// NewStandardDeck returns the 52-card deck with ids of the form "rank_suit".
func NewStandardDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range StandardSuits {
		for _, r := range StandardRanks {
			deck = append(deck, Card{ID: fmt.Sprintf("%s_%s", r, s), Suit: s, Rank: r})
		}
	}
	return deck
}

// NewShoe returns copies of the standard deck with copy-suffixed ids so that
// every physical card keeps a distinct identity.
func NewShoe(copies int) []Card {
	deck := make([]Card, 0, copies*52)
	for c := 0; c < copies; c++ {
		for _, s := range StandardSuits {
			for _, r := range StandardRanks {
				deck = append(deck, Card{ID: fmt.Sprintf("%s_%s_%d", r, s, c), Suit: s, Rank: r})
			}
		}
	}
	return deck
}

// NewCanastaPack returns the 108-card canasta pack: two standard decks plus
// four jokers.
func NewCanastaPack() []Card {
	deck := NewShoe(2)
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{ID: fmt.Sprintf("joker_%d", i), Suit: SuitWild, Rank: RankJoker})
	}
	return deck
}

// NewPinochleDeck returns the 48-card double deck (9 through A, two copies).
func NewPinochleDeck() []Card {
	deck := make([]Card, 0, 48)
	for c := 0; c < 2; c++ {
		for _, s := range StandardSuits {
			for _, r := range PinochleRanks {
				deck = append(deck, Card{ID: fmt.Sprintf("%s_%s_%d", r, s, c), Suit: s, Rank: r})
			}
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealCards splits count cards off the top of the deck for each seat and
// returns the hands plus the undealt remainder.
func DealCards(deck []Card, seats, count int) (hands [][]Card, remaining []Card) {
	hands = make([][]Card, seats)
	idx := 0
	for s := 0; s < seats; s++ {
		hands[s] = append([]Card{}, deck[idx:idx+count]...)
		idx += count
	}
	remaining = append([]Card{}, deck[idx:]...)
	return hands, remaining
}

// RankValue maps a standard rank to its A-high strength (2..14).
func RankValue(rank string) int {
	switch rank {
	case "A":
		return 14
	case "K":
		return 13
	case "Q":
		return 12
	case "J":
		return 11
	case "10":
		return 10
	case "9":
		return 9
	case "8":
		return 8
	case "7":
		return 7
	case "6":
		return 6
	case "5":
		return 5
	case "4":
		return 4
	case "3":
		return 3
	case "2":
		return 2
	}
	return 0
}

// FindCard returns the card with the given id, if the hand holds it.
func FindCard(hand []Card, id string) (Card, bool) {
	for _, c := range hand {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveCard returns the hand with the identified card removed.
func RemoveCard(hand []Card, id string) []Card {
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if c.ID == id {
			continue
		}
		out = append(out, c)
	}
	return out
}

// RemoveCards returns the hand with every identified card removed.
func RemoveCards(hand []Card, ids []string) []Card {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if drop[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// HasSuit reports whether the hand holds at least one card of the suit.
func HasSuit(hand []Card, suit Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// HasCard reports whether the hand holds a card of the given suit and rank.
func HasCard(hand []Card, suit Suit, rank string) bool {
	for _, c := range hand {
		if c.Suit == suit && c.Rank == rank {
			return true
		}
	}
	return false
}

// CopyCards returns an independent copy of a card slice.
func CopyCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return append([]Card{}, cards...)
}

// CopyHands returns an independent copy of per-seat hands.
func CopyHands(hands [][]Card) [][]Card {
	if hands == nil {
		return nil
	}
	out := make([][]Card, len(hands))
	for i, h := range hands {
		out[i] = CopyCards(h)
	}
	return out
}

// HandCounts returns the number of cards held per seat.
func HandCounts(hands [][]Card) []int {
	counts := make([]int, len(hands))
	for i, h := range hands {
		counts[i] = len(h)
	}
	return counts
}
