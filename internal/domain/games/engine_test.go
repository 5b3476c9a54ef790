package games

import (
	"math/rand"
	"testing"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

func testRNG() *rand.Rand { return rand.New(rand.NewSource(1)) }

func tc(rank string, suit domain.Suit) domain.Card {
	return domain.Card{ID: rank + "_" + string(suit), Suit: suit, Rank: rank}
}

func seatPlayers(n int) []domain.Player {
	players := make([]domain.Player, n)
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace"}
	for i := range players {
		players[i] = domain.Player{Name: names[i]}
	}
	return players
}

func TestRegistry(t *testing.T) {
	want := []string{"blackjack", "bridge", "canasta", "cribbage", "hearts", "pinochle"}
	got := IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i, id := range want {
		if got[i] != id {
			t.Fatalf("IDs()[%d] = %s, want %s", i, got[i], id)
		}
		if _, ok := Get(id); !ok {
			t.Fatalf("Get(%s) missing", id)
		}
	}
	if _, ok := Get("poker"); ok {
		t.Fatalf("Get should not resolve unregistered games")
	}
}

func TestRedactBaseHidesDeck(t *testing.T) {
	st := &domain.RoundState{
		Players: seatPlayers(2),
		Hands: [][]domain.Card{
			{tc("2", domain.SuitClubs)},
			{tc("3", domain.SuitClubs), tc("4", domain.SuitClubs)},
		},
		Deck: []domain.Card{tc("K", domain.SuitSpades)},
	}

	pub := redactBase(st)
	if pub.Deck != nil {
		t.Fatalf("redacted view still carries the deck")
	}
	if pub.DeckCount != 1 {
		t.Fatalf("DeckCount = %d, want 1", pub.DeckCount)
	}
	if len(pub.HandCounts) != 2 || pub.HandCounts[0] != 1 || pub.HandCounts[1] != 2 {
		t.Fatalf("HandCounts = %v, want [1 2]", pub.HandCounts)
	}
	if st.Deck == nil {
		t.Fatalf("redaction mutated the canonical state")
	}
}

// The public view must be a pure function of the canonical state.
func TestPublicStateDoesNotMutate(t *testing.T) {
	g := NewHearts()
	st := g.InitState(seatPlayers(4), config.Default())
	if err := g.DealOrSetup(st, testRNG()); err != nil {
		t.Fatalf("DealOrSetup failed: %v", err)
	}

	before := len(st.Hands[0])
	first := g.PublicState(st, 0)
	second := g.PublicState(st, 0)

	if len(st.Hands[0]) != before {
		t.Fatalf("PublicState mutated the canonical hands")
	}
	if len(first.Hands[0]) != len(second.Hands[0]) {
		t.Fatalf("PublicState is not stable between calls")
	}
	for seat := 1; seat < 4; seat++ {
		if first.Hands[seat] != nil {
			t.Fatalf("seat %d hand visible to viewer 0", seat)
		}
	}
}

func TestDispatchUnknownPair(t *testing.T) {
	g := NewBlackjack()
	st := g.InitState(seatPlayers(1), config.Default())
	st.Phase = domain.PhasePayout

	err := g.ApplyMove(st, 0, domain.Move{Action: domain.ActionHit}, testRNG())
	if kind, ok := domain.KindOf(err); !ok || kind != domain.ErrInvalidPhase {
		t.Fatalf("ApplyMove err = %v, want invalid_phase", err)
	}
}
