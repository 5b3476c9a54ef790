package app

import (
	"math/rand"
	"testing"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

func testService() *Service {
	return NewService(rand.New(rand.NewSource(1)), config.Default())
}

func humans(n int) []domain.Player {
	players := make([]domain.Player, n)
	names := []string{"alice", "bob", "carol", "dave"}
	for i := range players {
		players[i] = domain.Player{Name: names[i]}
	}
	return players
}

func bots(n int) []domain.Player {
	players := humans(n)
	for i := range players {
		players[i].IsAI = true
	}
	return players
}

func TestStartRoundUnknownGame(t *testing.T) {
	s := testService()
	_, _, err := s.StartRound("poker", humans(2))
	if err == nil {
		t.Fatalf("StartRound accepted an unregistered game")
	}
}

func TestStartRoundWrongPlayerCount(t *testing.T) {
	s := testService()
	if _, _, err := s.StartRound("hearts", humans(2)); err == nil {
		t.Fatalf("hearts with 2 players should be rejected")
	}
	if _, _, err := s.StartRound("cribbage", humans(3)); err == nil {
		t.Fatalf("cribbage with 3 players should be rejected")
	}
}

func TestStartRoundDealEvents(t *testing.T) {
	s := testService()
	r, events, err := s.StartRound("hearts", humans(4))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if r.ID == "" {
		t.Fatalf("round has no id")
	}

	if events[0].Kind != EventRoundStarted || events[0].Recipients != nil {
		t.Fatalf("first event = %+v, want a round_started broadcast", events[0])
	}

	dealt := 0
	for _, ev := range events {
		if ev.Kind != EventHandDealt {
			continue
		}
		dealt++
		payload := ev.Payload.(HandDealtPayload)
		if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.Seat {
			t.Fatalf("hand_dealt addressed to %v for seat %d", ev.Recipients, payload.Seat)
		}
		for seat := range payload.State.Hands {
			if seat != payload.Seat && payload.State.Hands[seat] != nil {
				t.Fatalf("seat %d's view leaks seat %d's hand", payload.Seat, seat)
			}
		}
	}
	if dealt != 4 {
		t.Fatalf("hand_dealt events = %d, want one per seat", dealt)
	}
}

func TestSubmitMoveRejectedLeavesStateUntouched(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("blackjack", humans(2))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	chips := r.State.Players[0].Chips
	events, err := s.SubmitMove(r, 0, domain.Move{Action: domain.ActionHit})
	if err == nil {
		t.Fatalf("hit during betting should be rejected")
	}
	if events != nil {
		t.Fatalf("rejected move emitted events: %v", events)
	}
	if r.State.Phase != domain.PhaseBetting {
		t.Fatalf("phase = %s after rejection, want betting", r.State.Phase)
	}
	if r.State.Players[0].Chips != chips {
		t.Fatalf("chips changed on a rejected move")
	}
}

// Moves that select hidden cards must not announce the selection: a
// hearts pass would otherwise hand every seat the passer's three picks,
// and a crib discard would show the opponent the crib.
func TestMoveEventsHideSecretSelections(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("hearts", humans(4))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	ids := []string{r.State.Hands[0][0].ID, r.State.Hands[0][1].ID, r.State.Hands[0][2].ID}
	events, err := s.SubmitMove(r, 0, domain.Move{Action: domain.ActionPassCards, CardIDs: ids})
	if err != nil {
		t.Fatalf("pass rejected: %v", err)
	}
	for _, ev := range events {
		if ev.Kind != EventMoveApplied && ev.Kind != EventBotMoved {
			continue
		}
		payload := ev.Payload.(MovePayload)
		if len(payload.Move.CardIDs) != 0 {
			t.Fatalf("%s broadcast leaks card ids %v", ev.Kind, payload.Move.CardIDs)
		}
		if payload.Move.Action == "" {
			t.Fatalf("move event lost its action")
		}
	}

	cr, _, err := s.StartRound("cribbage", humans(2))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	cribIDs := []string{cr.State.Hands[1][0].ID, cr.State.Hands[1][1].ID}
	events, err = s.SubmitMove(cr, 1, domain.Move{Action: domain.ActionDiscard, CardIDs: cribIDs})
	if err != nil {
		t.Fatalf("crib discard rejected: %v", err)
	}
	for _, ev := range events {
		if ev.Kind != EventMoveApplied {
			continue
		}
		if payload := ev.Payload.(MovePayload); len(payload.Move.CardIDs) != 0 {
			t.Fatalf("crib discard broadcast leaks card ids %v", payload.Move.CardIDs)
		}
	}
}

func TestSubmitMoveBadSeat(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("cribbage", humans(2))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if _, err := s.SubmitMove(r, 5, domain.Move{Action: domain.ActionGo}); err == nil {
		t.Fatalf("move from a nonexistent seat should be rejected")
	}
}

func TestSubmitMoveAfterGameOver(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("cribbage", humans(2))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	r.State.GameOver = true
	if _, err := s.SubmitMove(r, 0, domain.Move{Action: domain.ActionGo}); err == nil {
		t.Fatalf("move after the game ended should be rejected")
	}
}

// An all-bot table must play a full cribbage hand to the scoring phase
// without human input, and every card must come back out of play.
func TestBotsPlayFullCribbageRound(t *testing.T) {
	s := testService()
	r, events, err := s.StartRound("cribbage", bots(2))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	if r.State.Phase != domain.PhaseRoundEnd {
		t.Fatalf("phase = %s after bot round, want round_end", r.State.Phase)
	}

	botMoves, scored := 0, 0
	for _, ev := range events {
		switch ev.Kind {
		case EventBotMoved:
			botMoves++
		case EventRoundScored:
			scored++
		}
	}
	if botMoves == 0 {
		t.Fatalf("no bot moves recorded")
	}
	if scored != 1 {
		t.Fatalf("round_scored events = %d, want 1", scored)
	}

	c := r.State.Cribbage
	total := len(r.State.Deck) + len(c.Crib) + 1 // starter
	for seat := range r.State.Hands {
		total += len(r.State.Hands[seat])
	}
	if total != 52 {
		t.Fatalf("cards accounted for = %d, want 52", total)
	}
	if c.Scores[0]+c.Scores[1] == 0 {
		t.Fatalf("nobody pegged a point in a full hand")
	}
}

func TestBotsPlayFullBlackjackRound(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("blackjack", bots(3))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if r.State.Phase != domain.PhasePayout {
		t.Fatalf("phase = %s after bot round, want payout", r.State.Phase)
	}
	if len(r.State.Blackjack.Results) != 3 {
		t.Fatalf("results = %v, want one per seat", r.State.Blackjack.Results)
	}
}

func TestNextRoundGating(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("blackjack", humans(1))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	if _, err := s.NextRound(r); err == nil {
		t.Fatalf("NextRound mid-round should be rejected")
	}

	r.State.Phase = domain.PhasePayout
	events, err := s.NextRound(r)
	if err != nil {
		t.Fatalf("NextRound failed: %v", err)
	}
	if r.State.Phase != domain.PhaseBetting {
		t.Fatalf("phase = %s after re-deal, want betting", r.State.Phase)
	}
	if len(events) == 0 || events[0].Kind != EventRoundStarted {
		t.Fatalf("re-deal did not announce a round start")
	}

	r.State.GameOver = true
	r.State.Phase = domain.PhasePayout
	if _, err := s.NextRound(r); err == nil {
		t.Fatalf("NextRound after the game ended should be rejected")
	}
}

func TestPublicStateAccessorRedacts(t *testing.T) {
	s := testService()
	r, _, err := s.StartRound("hearts", humans(4))
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	pub := s.PublicState(r, 2)
	if pub.Hands[2] == nil {
		t.Fatalf("viewer's own hand missing")
	}
	if pub.Hands[0] != nil || pub.Deck != nil {
		t.Fatalf("redaction leaked hidden zones")
	}
}
