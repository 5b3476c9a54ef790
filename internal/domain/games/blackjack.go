package games

import (
	"math/rand"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Player statuses during a blackjack round.
const (
	bjWaiting   = "waiting"
	bjPlaying   = "playing"
	bjStand     = "stand"
	bjBust      = "bust"
	bjBlackjack = "blackjack"
)

// Blackjack is 1-7 players against the house. Betting is a barrier
// phase; the deal fires when the last bet lands and the dealer plays
// out automatically once every seat has finished.
type Blackjack struct {
	apply map[handlerKey]applyFunc
}

func NewBlackjack() *Blackjack {
	g := &Blackjack{}
	g.apply = map[handlerKey]applyFunc{
		{domain.PhaseBetting, domain.ActionPlaceBet}:     g.applyBet,
		{domain.PhasePlayerActions, domain.ActionHit}:    g.applyHit,
		{domain.PhasePlayerActions, domain.ActionStand}:  g.applyStand,
		{domain.PhasePlayerActions, domain.ActionDouble}: g.applyDouble,
		{domain.PhasePlayerActions, domain.ActionSplit}:  g.applySplit,
	}
	return g
}

func (g *Blackjack) Info() Info {
	return Info{
		ID:          "blackjack",
		Name:        "Blackjack",
		MinPlayers:  1,
		MaxPlayers:  7,
		HasTeams:    false,
		Description: "Beat the dealer by getting as close to 21 as possible without going over!",
	}
}

func (g *Blackjack) InitState(players []domain.Player, rules config.Rules) *domain.RoundState {
	n := len(players)
	seated := make([]domain.Player, n)
	copy(seated, players)
	for i := range seated {
		seated[i].Chips = rules.Blackjack.StartingChips
	}

	return &domain.RoundState{
		GameID:      "blackjack",
		Phase:       domain.PhaseBetting,
		CurrentTurn: 0,
		RoundNumber: 1,
		Players:     seated,
		Hands:       make([][]domain.Card, n),
		Blackjack: &domain.BlackjackState{
			DealerHand:       []domain.Card{},
			Bets:             make([]int, n),
			Status:           fillStrings(n, bjWaiting),
			NumDecks:         rules.Blackjack.DeckCount,
			DealerHitsSoft17: rules.Blackjack.DealerHitsSoft17,
			DoubleDownRules:  rules.Blackjack.DoubleDownRules,
			SplitRules:       rules.Blackjack.SplitRules,
			Payout:           rules.Blackjack.Payout,
		},
	}
}

func (g *Blackjack) DealOrSetup(st *domain.RoundState, rng *rand.Rand) error {
	bj := st.Blackjack
	n := st.SeatCount()

	st.Deck = domain.ShuffleDeck(rng, domain.NewShoe(bj.NumDecks))
	st.DeckCount = len(st.Deck)
	st.Hands = make([][]domain.Card, n)
	bj.DealerHand = []domain.Card{}
	bj.Bets = make([]int, n)
	bj.Status = fillStrings(n, bjWaiting)
	bj.Results = nil
	bj.Payouts = nil
	st.Phase = domain.PhaseBetting
	st.CurrentTurn = 0
	return nil
}

func (g *Blackjack) ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error {
	bj := st.Blackjack

	switch st.Phase {
	case domain.PhaseBetting:
		if mv.Action != domain.ActionPlaceBet {
			return domain.InvalidMove("only bets are accepted now")
		}
		if mv.Amount <= 0 {
			return domain.InvalidMove("bet must be positive")
		}
		if mv.Amount > st.Players[seat].Chips {
			return domain.RuleViolation("not enough chips")
		}
		if bj.Bets[seat] > 0 {
			return domain.RuleViolation("bet already placed")
		}
		return nil

	case domain.PhasePlayerActions:
		if st.CurrentTurn != seat {
			return domain.NotYourTurn("it is not your turn")
		}
		switch mv.Action {
		case domain.ActionHit, domain.ActionStand, domain.ActionDouble, domain.ActionSplit:
			return nil
		}
		return domain.InvalidMove("invalid action")
	}

	return domain.InvalidPhase("cannot make moves in this phase")
}

func (g *Blackjack) ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	return dispatch(g.apply, st, seat, mv, rng)
}

func (g *Blackjack) applyBet(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	bj := st.Blackjack
	bj.Bets[seat] = mv.Amount
	st.Players[seat].Chips -= mv.Amount

	for _, bet := range bj.Bets {
		if bet == 0 {
			return nil
		}
	}

	// Last bet landed, deal everyone in.
	g.dealInitialCards(st, rng)
	st.Phase = domain.PhasePlayerActions
	st.CurrentTurn = 0
	return nil
}

func (g *Blackjack) applyHit(st *domain.RoundState, seat int, _ domain.Move, rng *rand.Rand) error {
	g.hit(st, seat, rng)
	return nil
}

func (g *Blackjack) applyStand(st *domain.RoundState, seat int, _ domain.Move, rng *rand.Rand) error {
	st.Blackjack.Status[seat] = bjStand
	g.advanceToNextPlayer(st, rng)
	return nil
}

func (g *Blackjack) applyDouble(st *domain.RoundState, seat int, _ domain.Move, rng *rand.Rand) error {
	bj := st.Blackjack
	additional := bj.Bets[seat]
	bj.Bets[seat] *= 2
	st.Players[seat].Chips -= additional

	g.hit(st, seat, rng)
	if bj.Status[seat] != bjBust {
		bj.Status[seat] = bjStand
		g.advanceToNextPlayer(st, rng)
	}
	return nil
}

// Split is offered when the first two cards share a rank but resolves
// as a stand; the upstream rules never finished the second hand.
func (g *Blackjack) applySplit(st *domain.RoundState, seat int, _ domain.Move, rng *rand.Rand) error {
	st.Blackjack.Status[seat] = bjStand
	g.advanceToNextPlayer(st, rng)
	return nil
}

func (g *Blackjack) dealInitialCards(st *domain.RoundState, rng *rand.Rand) {
	bj := st.Blackjack
	for round := 0; round < 2; round++ {
		for seat := range st.Players {
			st.Hands[seat] = append(st.Hands[seat], g.draw(st, rng))
		}
		bj.DealerHand = append(bj.DealerHand, g.draw(st, rng))
	}

	for seat := range st.Players {
		if isNatural(st.Hands[seat]) {
			bj.Status[seat] = bjBlackjack
		} else {
			bj.Status[seat] = bjPlaying
		}
	}
}

func (g *Blackjack) hit(st *domain.RoundState, seat int, rng *rand.Rand) {
	st.Hands[seat] = append(st.Hands[seat], g.draw(st, rng))
	if HandValue(st.Hands[seat]) > 21 {
		st.Blackjack.Status[seat] = bjBust
		g.advanceToNextPlayer(st, rng)
	}
}

// draw consumes the top of the deck cursor. An exhausted shoe is
// recoverable: a fresh shuffled shoe is folded in with distinct ids.
func (g *Blackjack) draw(st *domain.RoundState, rng *rand.Rand) domain.Card {
	if len(st.Deck) == 0 {
		refill := domain.NewShoe(st.Blackjack.NumDecks)
		for i := range refill {
			refill[i].ID += "_refill"
		}
		st.Deck = domain.ShuffleDeck(rng, refill)
	}
	card := st.Deck[len(st.Deck)-1]
	st.Deck = st.Deck[:len(st.Deck)-1]
	st.DeckCount = len(st.Deck)
	return card
}

func (g *Blackjack) advanceToNextPlayer(st *domain.RoundState, rng *rand.Rand) {
	bj := st.Blackjack
	n := st.SeatCount()
	for i := 0; i < n; i++ {
		check := (st.CurrentTurn + 1 + i) % n
		if bj.Status[check] == bjPlaying {
			st.CurrentTurn = check
			return
		}
	}

	// Everyone is done, the dealer plays out.
	st.Phase = domain.PhaseDealerPlay
	g.dealerPlay(st, rng)
}

func (g *Blackjack) dealerPlay(st *domain.RoundState, rng *rand.Rand) {
	bj := st.Blackjack
	for {
		value := HandValue(bj.DealerHand)
		if value >= 17 {
			if value == 17 && isSoftHand(bj.DealerHand) && bj.DealerHitsSoft17 {
				bj.DealerHand = append(bj.DealerHand, g.draw(st, rng))
				continue
			}
			break
		}
		bj.DealerHand = append(bj.DealerHand, g.draw(st, rng))
	}

	g.calculateResults(st)
	st.Phase = domain.PhasePayout
}

func (g *Blackjack) calculateResults(st *domain.RoundState) {
	bj := st.Blackjack
	dealerValue := HandValue(bj.DealerHand)
	dealerBust := dealerValue > 21
	dealerNatural := isNatural(bj.DealerHand)

	n := st.SeatCount()
	bj.Results = make([]string, n)
	bj.Payouts = make([]int, n)

	for seat := range st.Players {
		bet := bj.Bets[seat]
		value := HandValue(st.Hands[seat])
		natural := bj.Status[seat] == bjBlackjack
		bust := bj.Status[seat] == bjBust

		result, payout := "push", 0
		switch {
		case bust:
			result, payout = "lose", -bet
		case natural && !dealerNatural:
			multiplier := 1.5
			if bj.Payout != "3:2" {
				multiplier = 1.2
			}
			result, payout = "win", int(float64(bet)*multiplier)
		case dealerBust:
			result, payout = "win", bet
		case value > dealerValue:
			result, payout = "win", bet
		case value < dealerValue:
			result, payout = "lose", -bet
		}

		bj.Results[seat] = result
		bj.Payouts[seat] = payout
		st.Players[seat].Chips += bet + payout
	}

	st.RoundNumber++
}

// AdvanceTurn is a no-op: betting is a barrier and player turns move
// inside the apply handlers.
func (g *Blackjack) AdvanceTurn(st *domain.RoundState) {}

func (g *Blackjack) ValidMoves(st *domain.RoundState, seat int) []domain.Move {
	bj := st.Blackjack
	var valid []domain.Move

	if st.Phase == domain.PhaseBetting && bj.Bets[seat] == 0 {
		valid = append(valid, domain.Move{Action: domain.ActionPlaceBet})
	}

	if st.Phase == domain.PhasePlayerActions && st.CurrentTurn == seat && bj.Status[seat] == bjPlaying {
		valid = append(valid,
			domain.Move{Action: domain.ActionHit},
			domain.Move{Action: domain.ActionStand},
		)
		hand := st.Hands[seat]
		if len(hand) == 2 {
			valid = append(valid, domain.Move{Action: domain.ActionDouble})
			if hand[0].Rank == hand[1].Rank {
				valid = append(valid, domain.Move{Action: domain.ActionSplit})
			}
		}
	}

	return valid
}

func (g *Blackjack) PublicState(st *domain.RoundState, viewer int) *domain.RoundState {
	pub := redactBase(st)

	// Only still-playing hands are secret; finished hands and the
	// dealer's are face up.
	if st.Phase == domain.PhasePlayerActions {
		visible := []int{viewer}
		for seat, status := range st.Blackjack.Status {
			if status != bjPlaying {
				visible = append(visible, seat)
			}
		}
		hideHands(pub, visible...)
	}

	return pub
}

func (g *Blackjack) AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	bj := st.Blackjack

	if st.Phase == domain.PhaseBetting {
		bet := 10
		if chips := st.Players[seat].Chips; chips < bet {
			bet = chips
		}
		return domain.Move{Action: domain.ActionPlaceBet, Amount: bet}, bet > 0
	}

	if st.Phase == domain.PhasePlayerActions {
		value := HandValue(st.Hands[seat])
		upCard := HandValue(bj.DealerHand[:1])

		switch {
		case value <= 11:
			return domain.Move{Action: domain.ActionHit}, true
		case value >= 17:
			return domain.Move{Action: domain.ActionStand}, true
		case value >= 13 && upCard <= 6:
			return domain.Move{Action: domain.ActionStand}, true
		default:
			return domain.Move{Action: domain.ActionHit}, true
		}
	}

	return domain.Move{}, false
}

func (g *Blackjack) PendingSeats(st *domain.RoundState) []int {
	switch st.Phase {
	case domain.PhaseBetting:
		var pending []int
		for seat, bet := range st.Blackjack.Bets {
			if bet == 0 {
				pending = append(pending, seat)
			}
		}
		return pending
	case domain.PhasePlayerActions:
		return []int{st.CurrentTurn}
	}
	return nil
}

// CheckEnd never fires: the session runs until the table walks away.
// Chip exhaustion is not a termination condition here.
func (g *Blackjack) CheckEnd(st *domain.RoundState) domain.EndResult {
	return domain.NotYet()
}

// HandValue sums a blackjack hand, demoting aces from 11 to 1 while
// the total is over 21.
func HandValue(hand []domain.Card) int {
	value, aces := 0, 0
	for _, c := range hand {
		switch c.Rank {
		case "A":
			aces++
			value += 11
		case "K", "Q", "J":
			value += 10
		default:
			value += domain.RankValue(c.Rank)
		}
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// isNatural reports an ace plus a ten-value card in exactly two cards.
func isNatural(hand []domain.Card) bool {
	if len(hand) != 2 {
		return false
	}
	hasAce, hasTen := false, false
	for _, c := range hand {
		if c.Rank == "A" {
			hasAce = true
		}
		switch c.Rank {
		case "K", "Q", "J", "10":
			hasTen = true
		}
	}
	return hasAce && hasTen
}

// isSoftHand reports whether an ace can still count as 11.
func isSoftHand(hand []domain.Card) bool {
	hard, aces := 0, 0
	for _, c := range hand {
		switch c.Rank {
		case "A":
			aces++
			hard++
		case "K", "Q", "J":
			hard += 10
		default:
			hard += domain.RankValue(c.Rank)
		}
	}
	return aces > 0 && hard+10 <= 21
}

func fillStrings(n int, v string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}
