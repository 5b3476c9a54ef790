package games

import (
	"math/rand"
	"sort"

	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Cribbage is the 2-player race to 121. Crib discards are a barrier;
// pegging alternates with go/31 resets; hands and crib are counted at
// the round end, non-dealer first.
type Cribbage struct {
	apply    map[handlerKey]applyFunc
	winScore int
}

func NewCribbage() *Cribbage {
	g := &Cribbage{winScore: 121}
	g.apply = map[handlerKey]applyFunc{
		{domain.PhaseDiscard, domain.ActionDiscard}: g.applyDiscard,
		{domain.PhasePegging, domain.ActionPlay}:    g.applyPeg,
		{domain.PhasePegging, domain.ActionGo}:      g.applyGo,
	}
	return g
}

func (g *Cribbage) Info() Info {
	return Info{
		ID:          "cribbage",
		Name:        "Cribbage",
		MinPlayers:  2,
		MaxPlayers:  2,
		HasTeams:    false,
		Description: "Classic 2-player game with pegging and hand scoring. First to 121 wins!",
	}
}

func (g *Cribbage) InitState(players []domain.Player, rules config.Rules) *domain.RoundState {
	if rules.Thresholds.CribbageWinScore > 0 {
		g.winScore = rules.Thresholds.CribbageWinScore
	}
	return &domain.RoundState{
		GameID:      "cribbage",
		Phase:       domain.PhaseDiscard,
		CurrentTurn: 1,
		Dealer:      0,
		RoundNumber: 1,
		Players:     append([]domain.Player{}, players...),
		Hands:       make([][]domain.Card, 2),
		Cribbage: &domain.CribbageState{
			Crib:       []domain.Card{},
			PegPile:    []domain.TrickPlay{},
			PegHands:   make([][]domain.Card, 2),
			LastPlayer: -1,
			GoCalled:   make([]bool, 2),
			Discards:   make([][]string, 2),
			Scores:     make([]int, 2),
		},
	}
}

func (g *Cribbage) DealOrSetup(st *domain.RoundState, rng *rand.Rand) error {
	c := st.Cribbage

	deck := domain.ShuffleDeck(rng, domain.NewStandardDeck())
	hands, remaining := domain.DealCards(deck, 2, 6)
	st.Hands = hands
	st.Deck = remaining
	st.DeckCount = len(remaining)
	for seat := range st.Hands {
		sortByValue(st.Hands[seat])
	}

	st.Phase = domain.PhaseDiscard
	c.Crib = []domain.Card{}
	c.Starter = nil
	c.PegPile = []domain.TrickPlay{}
	c.PegCount = 0
	c.PegHands = make([][]domain.Card, 2)
	c.LastPlayer = -1
	c.GoCalled = make([]bool, 2)
	c.Discards = make([][]string, 2)
	st.CurrentTurn = (st.Dealer + 1) % 2
	return nil
}

func (g *Cribbage) ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error {
	c := st.Cribbage

	switch st.Phase {
	case domain.PhaseDiscard:
		if mv.Action != domain.ActionDiscard {
			return domain.InvalidMove("must discard to the crib")
		}
		if len(c.Discards[seat]) == 2 {
			return domain.RuleViolation("crib cards already chosen")
		}
		if len(mv.CardIDs) != 2 {
			return domain.InvalidMove("must discard exactly 2 cards")
		}
		for _, id := range mv.CardIDs {
			if _, ok := domain.FindCard(st.Hands[seat], id); !ok {
				return domain.InvalidMove("card not in hand")
			}
		}
		return nil

	case domain.PhasePegging:
		if st.CurrentTurn != seat {
			return domain.NotYourTurn("not your turn")
		}

		if mv.Action == domain.ActionGo {
			if len(g.playableCards(st, seat)) > 0 {
				return domain.RuleViolation("you have playable cards")
			}
			return nil
		}

		if mv.Action != domain.ActionPlay || mv.CardID == "" {
			return domain.InvalidMove("no card specified")
		}
		card, ok := domain.FindCard(c.PegHands[seat], mv.CardID)
		if !ok {
			return domain.InvalidMove("card not in hand")
		}
		if c.PegCount+pegValue(card) > 31 {
			return domain.RuleViolation("card would exceed 31")
		}
		return nil
	}

	return domain.InvalidPhase("cannot make moves now")
}

func (g *Cribbage) ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	return dispatch(g.apply, st, seat, mv, rng)
}

func (g *Cribbage) applyDiscard(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	c := st.Cribbage
	c.Discards[seat] = append([]string{}, mv.CardIDs...)

	for _, id := range mv.CardIDs {
		if card, ok := domain.FindCard(st.Hands[seat], id); ok {
			c.Crib = append(c.Crib, card)
		}
	}
	st.Hands[seat] = domain.RemoveCards(st.Hands[seat], mv.CardIDs)

	if len(c.Discards[0]) == 2 && len(c.Discards[1]) == 2 {
		// Cut the starter; a jack is two for his heels.
		starter := st.Deck[0]
		st.Deck = st.Deck[1:]
		st.DeckCount = len(st.Deck)
		c.Starter = &starter
		if starter.Rank == "J" {
			c.Scores[st.Dealer] += 2
		}

		st.Phase = domain.PhasePegging
		c.PegHands = domain.CopyHands(st.Hands)
		c.PegPile = []domain.TrickPlay{}
		c.PegCount = 0
		st.CurrentTurn = (st.Dealer + 1) % 2
		c.GoCalled = make([]bool, 2)
	}
	return nil
}

func (g *Cribbage) applyGo(st *domain.RoundState, seat int, _ domain.Move, _ *rand.Rand) error {
	c := st.Cribbage
	c.GoCalled[seat] = true
	// A seat with no cards left is a standing go.
	other := (seat + 1) % 2
	if len(c.PegHands[other]) == 0 {
		c.GoCalled[other] = true
	}
	if c.GoCalled[0] && c.GoCalled[1] {
		if c.LastPlayer >= 0 {
			c.Scores[c.LastPlayer]++
		}
		c.PegPile = []domain.TrickPlay{}
		c.PegCount = 0
		c.GoCalled = make([]bool, 2)
	}
	return nil
}

func (g *Cribbage) applyPeg(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	c := st.Cribbage
	card, _ := domain.FindCard(c.PegHands[seat], mv.CardID)
	c.PegHands[seat] = domain.RemoveCard(c.PegHands[seat], mv.CardID)
	c.PegPile = append(c.PegPile, domain.TrickPlay{Seat: seat, Card: card})
	c.PegCount += pegValue(card)
	c.LastPlayer = seat
	c.GoCalled = make([]bool, 2)

	c.Scores[seat] += scorePeg(c.PegPile, c.PegCount)

	if c.PegCount == 31 {
		c.PegPile = []domain.TrickPlay{}
		c.PegCount = 0
	}

	if len(c.PegHands[0]) == 0 && len(c.PegHands[1]) == 0 {
		// Last card counts one when the pile did not land on 31.
		if c.PegCount > 0 && c.PegCount < 31 {
			c.Scores[c.LastPlayer]++
		}
		g.scoreHands(st)
		st.Phase = domain.PhaseRoundEnd
		st.RoundNumber++
		st.Dealer = (st.Dealer + 1) % 2
	}
	return nil
}

// scoreHands counts non-dealer first, then the dealer's hand, then the
// crib to the dealer.
func (g *Cribbage) scoreHands(st *domain.RoundState) {
	c := st.Cribbage
	nonDealer := (st.Dealer + 1) % 2
	c.Scores[nonDealer] += ScoreHand(st.Hands[nonDealer], *c.Starter, false)
	c.Scores[st.Dealer] += ScoreHand(st.Hands[st.Dealer], *c.Starter, false)
	c.Scores[st.Dealer] += ScoreHand(c.Crib, *c.Starter, true)
}

// ScoreHand counts a cribbage show: 2 per subset totalling fifteen,
// 2 per pair, a 4-card flush (5 with the starter, crib flushes need the
// starter match), and one for nobs.
func ScoreHand(hand []domain.Card, starter domain.Card, isCrib bool) int {
	cards := append(domain.CopyCards(hand), starter)
	points := 0

	n := len(cards)
	for mask := 1; mask < 1<<n; mask++ {
		sum := 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum += pegValue(cards[i])
			}
		}
		if sum == 15 {
			points += 2
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if cards[i].Rank == cards[j].Rank {
				points += 2
			}
		}
	}

	if len(hand) > 0 {
		flush := true
		for _, c := range hand[1:] {
			if c.Suit != hand[0].Suit {
				flush = false
				break
			}
		}
		if flush {
			if starter.Suit == hand[0].Suit {
				points += 5
			} else if !isCrib {
				points += 4
			}
		}
	}

	for _, c := range hand {
		if c.Rank == "J" && c.Suit == starter.Suit {
			points++
			break
		}
	}

	return points
}

// scorePeg scores the play just made: fifteen or thirty-one for two,
// and pairs scanned backward from the most recent card.
func scorePeg(pile []domain.TrickPlay, count int) int {
	points := 0
	if count == 15 || count == 31 {
		points += 2
	}

	if len(pile) >= 2 {
		last := pile[len(pile)-1].Card.Rank
		run := 1
		for i := len(pile) - 2; i >= 0; i-- {
			if pile[i].Card.Rank != last {
				break
			}
			run++
		}
		switch run {
		case 2:
			points += 2
		case 3:
			points += 6
		case 4:
			points += 12
		}
	}

	return points
}

func pegValue(c domain.Card) int {
	switch c.Rank {
	case "A":
		return 1
	case "J", "Q", "K":
		return 10
	}
	return domain.RankValue(c.Rank)
}

func (g *Cribbage) playableCards(st *domain.RoundState, seat int) []domain.Card {
	c := st.Cribbage
	var playable []domain.Card
	for _, card := range c.PegHands[seat] {
		if c.PegCount+pegValue(card) <= 31 {
			playable = append(playable, card)
		}
	}
	return playable
}

// AdvanceTurn passes pegging to the other seat while they still hold
// cards or can play into the count.
func (g *Cribbage) AdvanceTurn(st *domain.RoundState) {
	if st.Phase != domain.PhasePegging {
		return
	}
	c := st.Cribbage
	other := (st.CurrentTurn + 1) % 2
	if len(c.PegHands[other]) > 0 || len(g.playableCards(st, other)) > 0 {
		st.CurrentTurn = other
	}
}

func (g *Cribbage) ValidMoves(st *domain.RoundState, seat int) []domain.Move {
	if st.Phase == domain.PhaseDiscard {
		if len(st.Cribbage.Discards[seat]) == 2 {
			return nil
		}
		return []domain.Move{{Action: domain.ActionDiscard}}
	}

	if st.Phase == domain.PhasePegging && st.CurrentTurn == seat {
		playable := g.playableCards(st, seat)
		if len(playable) == 0 {
			return []domain.Move{{Action: domain.ActionGo}}
		}
		var moves []domain.Move
		for _, card := range playable {
			moves = append(moves, domain.Move{Action: domain.ActionPlay, CardID: card.ID})
		}
		return moves
	}
	return nil
}

func (g *Cribbage) PublicState(st *domain.RoundState, viewer int) *domain.RoundState {
	pub := redactBase(st)
	hideHands(pub, viewer)

	c := pub.Cribbage
	c.PegCounts = domain.HandCounts(st.Cribbage.PegHands)
	for seat := range c.PegHands {
		if seat != viewer {
			c.PegHands[seat] = nil
		}
	}
	c.CribCount = len(st.Cribbage.Crib)
	c.Crib = nil
	return pub
}

func (g *Cribbage) AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	if st.Phase == domain.PhaseDiscard {
		hand := domain.CopyCards(st.Hands[seat])
		sort.SliceStable(hand, func(i, j int) bool { return pegValue(hand[i]) < pegValue(hand[j]) })
		if len(hand) < 2 {
			return domain.Move{}, false
		}
		return domain.Move{Action: domain.ActionDiscard, CardIDs: []string{hand[0].ID, hand[1].ID}}, true
	}

	if st.Phase == domain.PhasePegging {
		playable := g.playableCards(st, seat)
		if len(playable) == 0 {
			return domain.Move{Action: domain.ActionGo}, true
		}
		var moves []domain.Move
		for _, card := range playable {
			moves = append(moves, domain.Move{Action: domain.ActionPlay, CardID: card.ID})
		}
		return bot.PickRandom(rng, moves)
	}
	return domain.Move{}, false
}

func (g *Cribbage) PendingSeats(st *domain.RoundState) []int {
	switch st.Phase {
	case domain.PhaseDiscard:
		var pending []int
		for seat, d := range st.Cribbage.Discards {
			if len(d) < 2 {
				pending = append(pending, seat)
			}
		}
		return pending
	case domain.PhasePegging:
		return []int{st.CurrentTurn}
	}
	return nil
}

func (g *Cribbage) CheckEnd(st *domain.RoundState) domain.EndResult {
	for seat, score := range st.Cribbage.Scores {
		if score >= g.winScore {
			return domain.EndResult{Ended: true, Reason: "win_score", Winners: []int{seat}}
		}
	}
	return domain.NotYet()
}

// sortByValue orders a hand ace-low ascending.
func sortByValue(hand []domain.Card) {
	value := func(c domain.Card) int {
		if c.Rank == "A" {
			return 1
		}
		return domain.RankValue(c.Rank)
	}
	sort.SliceStable(hand, func(i, j int) bool { return value(hand[i]) < value(hand[j]) })
}
