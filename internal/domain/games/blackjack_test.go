package games

import (
	"testing"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

func TestHandValue(t *testing.T) {
	tests := []struct {
		name string
		hand []domain.Card
		want int
	}{
		{name: "two aces and nine", hand: []domain.Card{tc("A", domain.SuitSpades), tc("A", domain.SuitHearts), tc("9", domain.SuitClubs)}, want: 21},
		{name: "face cards bust", hand: []domain.Card{tc("K", domain.SuitSpades), tc("Q", domain.SuitHearts), tc("2", domain.SuitClubs)}, want: 22},
		{name: "natural", hand: []domain.Card{tc("A", domain.SuitSpades), tc("K", domain.SuitHearts)}, want: 21},
		{name: "soft twenty", hand: []domain.Card{tc("A", domain.SuitSpades), tc("9", domain.SuitHearts)}, want: 20},
		{name: "ace demoted", hand: []domain.Card{tc("A", domain.SuitSpades), tc("9", domain.SuitHearts), tc("5", domain.SuitClubs)}, want: 15},
		{name: "empty", hand: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandValue(tt.hand); got != tt.want {
				t.Fatalf("HandValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsNatural(t *testing.T) {
	if !isNatural([]domain.Card{tc("A", domain.SuitSpades), tc("10", domain.SuitHearts)}) {
		t.Fatalf("ace-ten should be a natural")
	}
	if isNatural([]domain.Card{tc("A", domain.SuitSpades), tc("5", domain.SuitHearts), tc("5", domain.SuitClubs)}) {
		t.Fatalf("three-card 21 is not a natural")
	}
	if isNatural([]domain.Card{tc("10", domain.SuitSpades), tc("10", domain.SuitHearts)}) {
		t.Fatalf("twenty is not a natural")
	}
}

func TestIsSoftHand(t *testing.T) {
	if !isSoftHand([]domain.Card{tc("A", domain.SuitSpades), tc("6", domain.SuitHearts)}) {
		t.Fatalf("A-6 is soft seventeen")
	}
	if isSoftHand([]domain.Card{tc("A", domain.SuitSpades), tc("6", domain.SuitHearts), tc("10", domain.SuitClubs)}) {
		t.Fatalf("A-6-10 is hard seventeen")
	}
}

func TestBlackjackBettingBarrier(t *testing.T) {
	g := NewBlackjack()
	st := g.InitState(seatPlayers(2), config.Default())
	rng := testRNG()
	if err := g.DealOrSetup(st, rng); err != nil {
		t.Fatalf("DealOrSetup failed: %v", err)
	}

	if err := g.ApplyMove(st, 0, domain.Move{Action: domain.ActionPlaceBet, Amount: 50}, rng); err != nil {
		t.Fatalf("first bet rejected: %v", err)
	}
	if st.Phase != domain.PhaseBetting {
		t.Fatalf("phase = %s after one of two bets, want betting", st.Phase)
	}
	if len(st.Hands[0]) != 0 {
		t.Fatalf("cards dealt before the barrier closed")
	}

	if err := g.ApplyMove(st, 1, domain.Move{Action: domain.ActionPlaceBet, Amount: 25}, rng); err != nil {
		t.Fatalf("second bet rejected: %v", err)
	}
	if st.Phase != domain.PhasePlayerActions {
		t.Fatalf("phase = %s after the last bet, want player_actions", st.Phase)
	}
	for seat := range st.Hands {
		if len(st.Hands[seat]) != 2 {
			t.Fatalf("seat %d hand size = %d, want 2", seat, len(st.Hands[seat]))
		}
	}
	if len(st.Blackjack.DealerHand) != 2 {
		t.Fatalf("dealer hand size = %d, want 2", len(st.Blackjack.DealerHand))
	}
}

func TestBlackjackValidateBet(t *testing.T) {
	g := NewBlackjack()
	st := g.InitState(seatPlayers(1), config.Default())

	tests := []struct {
		name string
		mv   domain.Move
		want domain.ErrorKind
	}{
		{name: "zero bet", mv: domain.Move{Action: domain.ActionPlaceBet}, want: domain.ErrInvalidMove},
		{name: "over chips", mv: domain.Move{Action: domain.ActionPlaceBet, Amount: 5000}, want: domain.ErrRuleViolation},
		{name: "wrong action", mv: domain.Move{Action: domain.ActionHit}, want: domain.ErrInvalidMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateMove(st, 0, tt.mv)
			if kind, ok := domain.KindOf(err); !ok || kind != tt.want {
				t.Fatalf("ValidateMove err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestBlackjackPayouts(t *testing.T) {
	tests := []struct {
		name       string
		hand       []domain.Card
		status     string
		dealer     []domain.Card
		wantResult string
		wantPayout int
	}{
		{
			name:       "natural pays three to two",
			hand:       []domain.Card{tc("A", domain.SuitSpades), tc("K", domain.SuitHearts)},
			status:     bjBlackjack,
			dealer:     []domain.Card{tc("10", domain.SuitClubs), tc("9", domain.SuitDiamonds)},
			wantResult: "win",
			wantPayout: 150,
		},
		{
			name:       "bust loses the bet",
			hand:       []domain.Card{tc("K", domain.SuitSpades), tc("Q", domain.SuitHearts), tc("5", domain.SuitClubs)},
			status:     bjBust,
			dealer:     []domain.Card{tc("10", domain.SuitClubs), tc("9", domain.SuitDiamonds)},
			wantResult: "lose",
			wantPayout: -100,
		},
		{
			name:       "dealer bust pays even",
			hand:       []domain.Card{tc("10", domain.SuitSpades), tc("8", domain.SuitHearts)},
			status:     bjStand,
			dealer:     []domain.Card{tc("10", domain.SuitClubs), tc("6", domain.SuitDiamonds), tc("K", domain.SuitHearts)},
			wantResult: "win",
			wantPayout: 100,
		},
		{
			name:       "push returns the bet",
			hand:       []domain.Card{tc("10", domain.SuitSpades), tc("9", domain.SuitHearts)},
			status:     bjStand,
			dealer:     []domain.Card{tc("10", domain.SuitClubs), tc("9", domain.SuitDiamonds)},
			wantResult: "push",
			wantPayout: 0,
		},
		{
			name:       "lower total loses",
			hand:       []domain.Card{tc("10", domain.SuitSpades), tc("7", domain.SuitHearts)},
			status:     bjStand,
			dealer:     []domain.Card{tc("10", domain.SuitClubs), tc("9", domain.SuitDiamonds)},
			wantResult: "lose",
			wantPayout: -100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewBlackjack()
			st := g.InitState(seatPlayers(1), config.Default())
			st.Hands = [][]domain.Card{tt.hand}
			bj := st.Blackjack
			bj.Bets = []int{100}
			bj.Status = []string{tt.status}
			bj.DealerHand = tt.dealer
			st.Players[0].Chips = 900

			g.calculateResults(st)

			if bj.Results[0] != tt.wantResult {
				t.Fatalf("result = %s, want %s", bj.Results[0], tt.wantResult)
			}
			if bj.Payouts[0] != tt.wantPayout {
				t.Fatalf("payout = %d, want %d", bj.Payouts[0], tt.wantPayout)
			}
			if got := st.Players[0].Chips; got != 900+100+tt.wantPayout {
				t.Fatalf("chips = %d, want %d", got, 900+100+tt.wantPayout)
			}
		})
	}
}

func TestBlackjackSixFivePayout(t *testing.T) {
	rules := config.Default()
	rules.Blackjack.Payout = "6:5"

	g := NewBlackjack()
	st := g.InitState(seatPlayers(1), rules)
	st.Hands = [][]domain.Card{{tc("A", domain.SuitSpades), tc("K", domain.SuitHearts)}}
	st.Blackjack.Bets = []int{100}
	st.Blackjack.Status = []string{bjBlackjack}
	st.Blackjack.DealerHand = []domain.Card{tc("10", domain.SuitClubs), tc("9", domain.SuitDiamonds)}

	g.calculateResults(st)
	if st.Blackjack.Payouts[0] != 120 {
		t.Fatalf("6:5 payout = %d, want 120", st.Blackjack.Payouts[0])
	}
}

func TestBlackjackDealerHitsSoft17(t *testing.T) {
	g := NewBlackjack()
	st := g.InitState(seatPlayers(1), config.Default())
	rng := testRNG()

	st.Hands = [][]domain.Card{{tc("10", domain.SuitSpades), tc("8", domain.SuitHearts)}}
	st.Blackjack.Bets = []int{10}
	st.Blackjack.Status = []string{bjStand}
	st.Blackjack.DealerHand = []domain.Card{tc("A", domain.SuitClubs), tc("6", domain.SuitDiamonds)}
	st.Deck = domain.ShuffleDeck(rng, domain.NewStandardDeck())

	g.dealerPlay(st, rng)

	if len(st.Blackjack.DealerHand) == 2 {
		t.Fatalf("dealer stood on soft seventeen")
	}
	if st.Phase != domain.PhasePayout {
		t.Fatalf("phase = %s, want payout", st.Phase)
	}
}

func TestBlackjackExhaustedShoeRefills(t *testing.T) {
	g := NewBlackjack()
	st := g.InitState(seatPlayers(1), config.Default())
	st.Deck = nil

	card := g.draw(st, testRNG())
	if card.ID == "" {
		t.Fatalf("draw returned no card from a refilled shoe")
	}
	want := st.Blackjack.NumDecks*52 - 1
	if len(st.Deck) != want {
		t.Fatalf("deck size after refill draw = %d, want a full shoe minus one (%d)", len(st.Deck), want)
	}
}

func TestBlackjackPendingSeats(t *testing.T) {
	g := NewBlackjack()
	st := g.InitState(seatPlayers(3), config.Default())
	st.Blackjack.Bets = []int{10, 0, 0}

	pending := g.PendingSeats(st)
	if len(pending) != 2 || pending[0] != 1 || pending[1] != 2 {
		t.Fatalf("PendingSeats = %v, want [1 2]", pending)
	}
}
