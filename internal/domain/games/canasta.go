package games

import (
	"math/rand"
	"sort"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Canasta is the rummy-style meld game on the 108-card pack (two decks
// plus four jokers). Turns cycle draw, meld, discard; going out ends
// the hand and a team or player reaching the winning score ends the
// session.
type Canasta struct {
	apply    map[handlerKey]applyFunc
	winScore int
}

func NewCanasta() *Canasta {
	g := &Canasta{winScore: 5000}
	g.apply = map[handlerKey]applyFunc{
		{domain.PhaseDraw, domain.ActionDrawDeck}:   g.applyDrawDeck,
		{domain.PhaseDraw, domain.ActionDrawPile}:   g.applyDrawPile,
		{domain.PhaseMeld, domain.ActionCreateMeld}: g.applyCreateMeld,
		{domain.PhaseMeld, domain.ActionAddToMeld}:  g.applyAddToMeld,
		{domain.PhaseMeld, domain.ActionSkipMeld}:   g.applySkipMeld,
		{domain.PhaseDiscard, domain.ActionDiscard}: g.applyDiscard,
	}
	return g
}

func (g *Canasta) Info() Info {
	return Info{
		ID:          "canasta",
		Name:        "Canasta",
		MinPlayers:  2,
		MaxPlayers:  6,
		HasTeams:    true,
		Description: "Meld cards of the same rank and form Canastas to score points!",
	}
}

func (g *Canasta) InitState(players []domain.Player, rules config.Rules) *domain.RoundState {
	if rules.Canasta.WinningScore > 0 {
		g.winScore = rules.Canasta.WinningScore
	}
	n := len(players)
	return &domain.RoundState{
		GameID:      "canasta",
		Phase:       domain.PhaseDraw,
		RoundNumber: 1,
		Players:     append([]domain.Player{}, players...),
		Hands:       make([][]domain.Card, n),
		Canasta: &domain.CanastaState{
			HasTeams:      n == 4 || n == 6,
			Melds:         make([][]domain.Meld, n),
			DiscardPile:   []domain.Card{},
			MinimumMeld:   rules.Canasta.MinimumMeldScore,
			WildcardLimit: rules.Canasta.WildcardLimitPerMeld,
			HandScores:    make([]int, n),
			TotalScores:   make([]int, n),
			TeamScores:    make([]int, 2),
		},
	}
}

func (g *Canasta) DealOrSetup(st *domain.RoundState, rng *rand.Rand) error {
	c := st.Canasta
	n := st.SeatCount()

	deck := domain.ShuffleDeck(rng, domain.NewCanastaPack())

	perPlayer := 15
	if n <= 3 {
		perPlayer = 11
	}
	hands, remaining := domain.DealCards(deck, n, perPlayer)
	st.Hands = hands

	// Flip the top card to open the discard pile.
	c.DiscardPile = []domain.Card{remaining[len(remaining)-1]}
	st.Deck = remaining[:len(remaining)-1]
	st.DeckCount = len(st.Deck)

	for seat := range st.Hands {
		sortCanastaHand(st.Hands[seat])
	}

	c.Melds = make([][]domain.Meld, n)
	c.HandScores = make([]int, n)
	st.Phase = domain.PhaseDraw
	st.CurrentTurn = 0
	return nil
}

func (g *Canasta) ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error {
	c := st.Canasta
	if st.CurrentTurn != seat {
		return domain.NotYourTurn("it is not your turn")
	}

	switch st.Phase {
	case domain.PhaseDraw:
		switch mv.Action {
		case domain.ActionDrawDeck:
			if len(st.Deck) == 0 && len(c.DiscardPile) <= 1 {
				return domain.ResourceExhausted("no cards left to draw")
			}
			return nil
		case domain.ActionDrawPile:
			if len(c.DiscardPile) == 0 {
				return domain.RuleViolation("discard pile is empty")
			}
			return nil
		}
		return domain.InvalidMove("must draw a card")

	case domain.PhaseMeld:
		switch mv.Action {
		case domain.ActionCreateMeld:
			return g.validateMeld(st, seat, mv)
		case domain.ActionAddToMeld:
			if len(c.Melds[seat]) == 0 {
				return domain.RuleViolation("no meld to extend")
			}
			if mv.CardID == "" {
				return domain.InvalidMove("no card specified")
			}
			if _, ok := domain.FindCard(st.Hands[seat], mv.CardID); !ok {
				return domain.InvalidMove("card not in hand")
			}
			return nil
		case domain.ActionSkipMeld:
			return nil
		}
		return domain.InvalidMove("invalid meld action")

	case domain.PhaseDiscard:
		if mv.Action != domain.ActionDiscard {
			return domain.InvalidMove("must discard a card")
		}
		if mv.CardID == "" {
			return domain.InvalidMove("no card specified")
		}
		if _, ok := domain.FindCard(st.Hands[seat], mv.CardID); !ok {
			return domain.InvalidMove("card not in hand")
		}
		return nil
	}

	return domain.InvalidPhase("cannot make moves in this phase")
}

func (g *Canasta) validateMeld(st *domain.RoundState, seat int, mv domain.Move) error {
	c := st.Canasta
	if len(mv.CardIDs) < 3 {
		return domain.InvalidMove("need at least 3 cards to meld")
	}

	hand := st.Hands[seat]
	naturals, wildcards := 0, 0
	rank := ""
	for _, id := range mv.CardIDs {
		card, ok := domain.FindCard(hand, id)
		if !ok {
			return domain.InvalidMove("card not in hand")
		}
		if isWildcard(card) {
			wildcards++
			continue
		}
		naturals++
		if rank == "" {
			rank = card.Rank
		} else if card.Rank != rank {
			return domain.RuleViolation("all cards must be the same rank except wildcards")
		}
	}

	if wildcards > c.WildcardLimit {
		return domain.RuleViolation("too many wildcards in meld")
	}
	if wildcards >= naturals {
		return domain.RuleViolation("must have more natural cards than wildcards")
	}
	return nil
}

func (g *Canasta) ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	return dispatch(g.apply, st, seat, mv, rng)
}

func (g *Canasta) applyDrawDeck(st *domain.RoundState, seat int, _ domain.Move, rng *rand.Rand) error {
	c := st.Canasta

	// An empty deck reshuffles the pile under its top card.
	if len(st.Deck) == 0 {
		top := c.DiscardPile[len(c.DiscardPile)-1]
		st.Deck = domain.ShuffleDeck(rng, c.DiscardPile[:len(c.DiscardPile)-1])
		c.DiscardPile = []domain.Card{top}
	}

	card := st.Deck[len(st.Deck)-1]
	st.Deck = st.Deck[:len(st.Deck)-1]
	st.DeckCount = len(st.Deck)
	st.Hands[seat] = append(st.Hands[seat], card)
	sortCanastaHand(st.Hands[seat])
	st.Phase = domain.PhaseMeld
	return nil
}

func (g *Canasta) applyDrawPile(st *domain.RoundState, seat int, _ domain.Move, _ *rand.Rand) error {
	c := st.Canasta
	st.Hands[seat] = append(st.Hands[seat], c.DiscardPile...)
	sortCanastaHand(st.Hands[seat])
	c.DiscardPile = []domain.Card{}
	st.Phase = domain.PhaseMeld
	return nil
}

func (g *Canasta) applyCreateMeld(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	c := st.Canasta
	var meldCards []domain.Card
	rank := ""
	for _, id := range mv.CardIDs {
		if card, ok := domain.FindCard(st.Hands[seat], id); ok {
			meldCards = append(meldCards, card)
			if rank == "" && !isWildcard(card) {
				rank = card.Rank
			}
		}
	}
	st.Hands[seat] = domain.RemoveCards(st.Hands[seat], mv.CardIDs)
	c.Melds[seat] = append(c.Melds[seat], domain.Meld{Rank: rank, Cards: meldCards})
	// Stay in the meld phase for further melds.
	return nil
}

// applyAddToMeld extends the seat's first meld. The move carries no
// meld selector, so index 0 is the only target.
func (g *Canasta) applyAddToMeld(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	c := st.Canasta
	if card, ok := domain.FindCard(st.Hands[seat], mv.CardID); ok {
		st.Hands[seat] = domain.RemoveCard(st.Hands[seat], mv.CardID)
		c.Melds[seat][0].Cards = append(c.Melds[seat][0].Cards, card)
	}
	st.Phase = domain.PhaseDiscard
	return nil
}

func (g *Canasta) applySkipMeld(st *domain.RoundState, _ int, _ domain.Move, _ *rand.Rand) error {
	st.Phase = domain.PhaseDiscard
	return nil
}

func (g *Canasta) applyDiscard(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	c := st.Canasta
	card, _ := domain.FindCard(st.Hands[seat], mv.CardID)
	st.Hands[seat] = domain.RemoveCard(st.Hands[seat], mv.CardID)
	c.DiscardPile = append(c.DiscardPile, card)

	if len(st.Hands[seat]) == 0 {
		// Going out ends the hand.
		st.Phase = domain.PhaseHandEnd
		g.scoreHand(st)
	} else {
		st.Phase = domain.PhaseDraw
	}
	return nil
}

func (g *Canasta) scoreHand(st *domain.RoundState) {
	c := st.Canasta
	for seat := range st.Players {
		score := 0

		for _, meld := range c.Melds[seat] {
			for _, card := range meld.Cards {
				score += CardPoints(card)
			}
			if len(meld.Cards) >= 7 {
				if isNaturalCanasta(meld) {
					score += 500
				} else {
					score += 300
				}
			}
		}

		for _, card := range st.Hands[seat] {
			score -= CardPoints(card)
		}

		c.HandScores[seat] = score
		c.TotalScores[seat] += score
		if c.HasTeams {
			c.TeamScores[seat%2] += score
		}
	}
	st.RoundNumber++
}

// CardPoints is the canasta point table.
func CardPoints(c domain.Card) int {
	switch c.Rank {
	case domain.RankJoker:
		return 50
	case "2", "A":
		return 20
	case "K", "Q", "J", "10", "9", "8":
		return 10
	}
	return 5
}

func isNaturalCanasta(m domain.Meld) bool {
	for _, c := range m.Cards {
		if isWildcard(c) {
			return false
		}
	}
	return true
}

func isWildcard(c domain.Card) bool {
	return c.Rank == domain.RankJoker || c.Rank == "2"
}

// AdvanceTurn rotates only once a turn has wrapped back to the draw
// phase; meld and discard stay with the acting seat.
func (g *Canasta) AdvanceTurn(st *domain.RoundState) {
	if st.Phase == domain.PhaseDraw {
		st.CurrentTurn = (st.CurrentTurn + 1) % st.SeatCount()
	}
}

func (g *Canasta) ValidMoves(st *domain.RoundState, seat int) []domain.Move {
	c := st.Canasta
	if st.CurrentTurn != seat {
		return nil
	}

	var valid []domain.Move
	switch st.Phase {
	case domain.PhaseDraw:
		valid = append(valid, domain.Move{Action: domain.ActionDrawDeck})
		if len(c.DiscardPile) > 0 {
			valid = append(valid, domain.Move{Action: domain.ActionDrawPile})
		}

	case domain.PhaseMeld:
		if ids := findMeldable(st.Hands[seat]); ids != nil {
			valid = append(valid, domain.Move{Action: domain.ActionCreateMeld, CardIDs: ids})
		}
		valid = append(valid, domain.Move{Action: domain.ActionSkipMeld})

	case domain.PhaseDiscard:
		for _, card := range st.Hands[seat] {
			valid = append(valid, domain.Move{Action: domain.ActionDiscard, CardID: card.ID})
		}
	}
	return valid
}

func (g *Canasta) PublicState(st *domain.RoundState, viewer int) *domain.RoundState {
	pub := redactBase(st)
	hideHands(pub, viewer)
	return pub
}

func (g *Canasta) AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	switch st.Phase {
	case domain.PhaseDraw:
		// A dead stock leaves only the pile to draw from.
		if len(st.Deck) == 0 && len(st.Canasta.DiscardPile) <= 1 {
			if len(st.Canasta.DiscardPile) == 1 {
				return domain.Move{Action: domain.ActionDrawPile}, true
			}
			return domain.Move{}, false
		}
		return domain.Move{Action: domain.ActionDrawDeck}, true

	case domain.PhaseMeld:
		if ids := findMeldable(st.Hands[seat]); ids != nil {
			return domain.Move{Action: domain.ActionCreateMeld, CardIDs: ids}, true
		}
		return domain.Move{Action: domain.ActionSkipMeld}, true

	case domain.PhaseDiscard:
		hand := st.Hands[seat]
		if len(hand) == 0 {
			return domain.Move{}, false
		}
		lowest := hand[0]
		for _, card := range hand[1:] {
			if CardPoints(card) < CardPoints(lowest) {
				lowest = card
			}
		}
		return domain.Move{Action: domain.ActionDiscard, CardID: lowest.ID}, true
	}
	return domain.Move{}, false
}

// findMeldable returns three cards of the first rank held in triplicate.
func findMeldable(hand []domain.Card) []string {
	byRank := map[string][]domain.Card{}
	order := []string{}
	for _, c := range hand {
		if isWildcard(c) {
			continue
		}
		if len(byRank[c.Rank]) == 0 {
			order = append(order, c.Rank)
		}
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	for _, rank := range order {
		if cards := byRank[rank]; len(cards) >= 3 {
			return []string{cards[0].ID, cards[1].ID, cards[2].ID}
		}
	}
	return nil
}

func (g *Canasta) PendingSeats(st *domain.RoundState) []int {
	switch st.Phase {
	case domain.PhaseDraw, domain.PhaseMeld, domain.PhaseDiscard:
		return []int{st.CurrentTurn}
	}
	return nil
}

func (g *Canasta) CheckEnd(st *domain.RoundState) domain.EndResult {
	c := st.Canasta
	if st.Phase != domain.PhaseHandEnd {
		return domain.NotYet()
	}

	if c.HasTeams {
		for team, score := range c.TeamScores {
			if score >= g.winScore {
				var winners []int
				for seat := range st.Players {
					if seat%2 == team {
						winners = append(winners, seat)
					}
				}
				return domain.EndResult{Ended: true, Reason: "score_reached", Winners: winners}
			}
		}
		return domain.NotYet()
	}

	for seat, score := range c.TotalScores {
		if score >= g.winScore {
			return domain.EndResult{Ended: true, Reason: "score_reached", Winners: []int{seat}}
		}
	}
	return domain.NotYet()
}

// sortCanastaHand orders wildcards first, then ranks descending.
func sortCanastaHand(hand []domain.Card) {
	value := func(c domain.Card) int {
		switch c.Rank {
		case domain.RankJoker:
			return 50
		case "2":
			return 49
		}
		return domain.RankValue(c.Rank)
	}
	sort.SliceStable(hand, func(i, j int) bool { return value(hand[i]) > value(hand[j]) })
}
