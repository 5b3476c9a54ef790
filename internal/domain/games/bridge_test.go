package games

import (
	"testing"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

func bridgeRound(t *testing.T) (*Bridge, *domain.RoundState) {
	t.Helper()
	g := NewBridge()
	st := g.InitState(seatPlayers(4), config.Default())
	if err := g.DealOrSetup(st, testRNG()); err != nil {
		t.Fatalf("DealOrSetup failed: %v", err)
	}
	return g, st
}

func TestBidValueOrdering(t *testing.T) {
	if bidValue(1, domain.SuitClubs) >= bidValue(1, domain.SuitNoTrump) {
		t.Fatalf("one notrump should outrank one club")
	}
	if bidValue(1, domain.SuitNoTrump) >= bidValue(2, domain.SuitClubs) {
		t.Fatalf("two clubs should outrank one notrump")
	}
	if bidValue(1, domain.SuitHearts) >= bidValue(1, domain.SuitSpades) {
		t.Fatalf("one spade should outrank one heart")
	}
}

func TestBridgeInsufficientBid(t *testing.T) {
	g, st := bridgeRound(t)
	b := st.Bridge
	bidder := b.CurrentBidder

	if err := g.ApplyMove(st, bidder, domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitSpades}, testRNG()); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	next := b.CurrentBidder
	err := g.ValidateMove(st, next, domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitHearts})
	if kind, ok := domain.KindOf(err); !ok || kind != domain.ErrRuleViolation {
		t.Fatalf("insufficient bid err = %v, want rule_violation", err)
	}
	if err := g.ValidateMove(st, next, domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitNoTrump}); err != nil {
		t.Fatalf("sufficient bid rejected: %v", err)
	}
}

func TestBridgeFourPassesRedeal(t *testing.T) {
	g, st := bridgeRound(t)
	rng := testRNG()
	firstHands := domain.CopyHands(st.Hands)

	for i := 0; i < 4; i++ {
		seat := st.Bridge.CurrentBidder
		if err := g.ApplyMove(st, seat, domain.Move{Action: domain.ActionPass}, rng); err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
	}

	if st.Phase != domain.PhaseBidding {
		t.Fatalf("phase = %s after a thrown-in hand, want bidding", st.Phase)
	}
	if len(st.Bridge.BiddingHistory) != 0 {
		t.Fatalf("history not reset after redeal")
	}
	for seat := range st.Hands {
		if len(st.Hands[seat]) != 13 {
			t.Fatalf("seat %d hand size = %d after redeal, want 13", seat, len(st.Hands[seat]))
		}
	}
	_ = firstHands // the redeal reshuffles; hands usually differ but need not
}

func TestBridgeAuctionCloses(t *testing.T) {
	g, st := bridgeRound(t)
	b := st.Bridge
	rng := testRNG()
	opener := b.CurrentBidder

	if err := g.ApplyMove(st, opener, domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitSpades}, rng); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := g.ApplyMove(st, b.CurrentBidder, domain.Move{Action: domain.ActionPass}, rng); err != nil {
			t.Fatalf("pass failed: %v", err)
		}
	}

	if st.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", st.Phase)
	}
	if b.Declarer != opener {
		t.Fatalf("declarer = %d, want %d", b.Declarer, opener)
	}
	wantLeader := (st.Dealer + 1) % 4
	if st.CurrentTurn != wantLeader {
		t.Fatalf("opening leader = %d, want %d", st.CurrentTurn, wantLeader)
	}
}

func TestBridgeDoubleRules(t *testing.T) {
	g, st := bridgeRound(t)
	b := st.Bridge
	rng := testRNG()

	err := g.ValidateMove(st, b.CurrentBidder, domain.Move{Action: domain.ActionDoubleBid})
	if kind, ok := domain.KindOf(err); !ok || kind != domain.ErrRuleViolation {
		t.Fatalf("double with no bid err = %v, want rule_violation", err)
	}

	opener := b.CurrentBidder
	if err := g.ApplyMove(st, opener, domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitHearts}, rng); err != nil {
		t.Fatalf("bid failed: %v", err)
	}

	// Opponent may double.
	if err := g.ValidateMove(st, b.CurrentBidder, domain.Move{Action: domain.ActionDoubleBid}); err != nil {
		t.Fatalf("opponent double rejected: %v", err)
	}
	if err := g.ApplyMove(st, b.CurrentBidder, domain.Move{Action: domain.ActionPass}, rng); err != nil {
		t.Fatalf("pass failed: %v", err)
	}

	// Partner of the bidder may not double.
	err = g.ValidateMove(st, b.CurrentBidder, domain.Move{Action: domain.ActionDoubleBid})
	if kind, ok := domain.KindOf(err); !ok || kind != domain.ErrRuleViolation {
		t.Fatalf("partner double err = %v, want rule_violation", err)
	}
}

func TestBridgeDummyRevealAfterOpeningLead(t *testing.T) {
	g, st := bridgeRound(t)
	b := st.Bridge
	rng := testRNG()

	opener := b.CurrentBidder
	if err := g.ApplyMove(st, opener, domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitClubs}, rng); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := g.ApplyMove(st, b.CurrentBidder, domain.Move{Action: domain.ActionPass}, rng); err != nil {
			t.Fatalf("pass failed: %v", err)
		}
	}
	if b.DummyRevealed {
		t.Fatalf("dummy revealed before the opening lead")
	}

	leader := st.CurrentTurn
	lead := st.Hands[leader][0]
	if err := g.ApplyMove(st, leader, domain.Move{Action: domain.ActionPlay, CardID: lead.ID}, rng); err != nil {
		t.Fatalf("opening lead failed: %v", err)
	}

	if !b.DummyRevealed {
		t.Fatalf("dummy not revealed after the opening lead")
	}
	if want := (b.Declarer + 2) % 4; b.DummySeat != want {
		t.Fatalf("dummy seat = %d, want %d", b.DummySeat, want)
	}

	pub := g.PublicState(st, (b.DummySeat+1)%4)
	if pub.Hands[b.DummySeat] == nil {
		t.Fatalf("dummy hand should be visible to everyone")
	}
}

func TestBridgeScoreHand(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		suit      domain.Suit
		tricksNS  int
		doubled   bool
		redoubled bool
		vul       string
		want      int
	}{
		{name: "four spades making", level: 4, suit: domain.SuitSpades, tricksNS: 10, want: 420},
		{name: "three notrump making", level: 3, suit: domain.SuitNoTrump, tricksNS: 9, want: 400},
		{name: "partscore with overtrick", level: 2, suit: domain.SuitDiamonds, tricksNS: 9, want: 60},
		{name: "down two undoubled", level: 4, suit: domain.SuitHearts, tricksNS: 8, want: -100},
		{name: "down two doubled", level: 4, suit: domain.SuitHearts, tricksNS: 8, doubled: true, want: -200},
		{name: "vulnerable game bonus", level: 4, suit: domain.SuitSpades, tricksNS: 10, vul: "ns", want: 620},
		{name: "small slam", level: 6, suit: domain.SuitClubs, tricksNS: 12, want: 920},
		{name: "grand slam notrump", level: 7, suit: domain.SuitNoTrump, tricksNS: 13, want: 1520},
		{name: "doubled game made", level: 2, suit: domain.SuitSpades, tricksNS: 8, doubled: true, want: 420},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewBridge()
			st := g.InitState(seatPlayers(4), config.Default())
			b := st.Bridge
			b.ContractLevel = tt.level
			b.ContractSuit = tt.suit
			b.Declarer = 0
			b.Doubled = tt.doubled
			b.Redoubled = tt.redoubled
			b.TricksNS = tt.tricksNS
			b.TricksEW = 13 - tt.tricksNS
			if tt.vul != "" {
				b.Vulnerability = tt.vul
			}

			g.scoreHand(st)

			if b.HandScore != tt.want {
				t.Fatalf("score = %d, want %d", b.HandScore, tt.want)
			}
		})
	}
}

func TestBridgeVulnerabilityCycle(t *testing.T) {
	g := NewBridge()
	st := g.InitState(seatPlayers(4), config.Default())
	want := []string{"none", "ns", "ew", "both", "none"}

	for hand := 1; hand <= 5; hand++ {
		st.Bridge.HandNumber = hand
		if err := g.DealOrSetup(st, testRNG()); err != nil {
			t.Fatalf("DealOrSetup failed: %v", err)
		}
		if st.Bridge.Vulnerability != want[hand-1] {
			t.Fatalf("hand %d vulnerability = %s, want %s", hand, st.Bridge.Vulnerability, want[hand-1])
		}
		if st.Dealer != (hand-1)%4 {
			t.Fatalf("hand %d dealer = %d, want %d", hand, st.Dealer, (hand-1)%4)
		}
	}
}
