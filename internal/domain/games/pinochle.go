package games

import (
	"math/rand"
	"sort"

	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

const pinochleMinBid = 20

// Pinochle is 4-player partnership pinochle on the 48-card double
// deck: an auction from 20 up, trump selection by the high bidder,
// meld counting, and trick play with must-follow and must-trump rules.
type Pinochle struct {
	apply    map[handlerKey]applyFunc
	winScore int
}

func NewPinochle() *Pinochle {
	g := &Pinochle{winScore: 150}
	g.apply = map[handlerKey]applyFunc{
		{domain.PhaseBidding, domain.ActionBid}:             g.applyBid,
		{domain.PhaseBidding, domain.ActionPass}:            g.applyBid,
		{domain.PhaseTrumpSelect, domain.ActionSelectTrump}: g.applyTrump,
		{domain.PhasePlaying, domain.ActionPlay}:            g.applyPlay,
	}
	return g
}

func (g *Pinochle) Info() Info {
	return Info{
		ID:          "pinochle",
		Name:        "Pinochle",
		MinPlayers:  4,
		MaxPlayers:  4,
		HasTeams:    true,
		Description: "Partnership trick-taking with melds. Bid, meld, and take tricks!",
	}
}

func (g *Pinochle) InitState(players []domain.Player, rules config.Rules) *domain.RoundState {
	if rules.Thresholds.PinochleWinScore > 0 {
		g.winScore = rules.Thresholds.PinochleWinScore
	}
	return &domain.RoundState{
		GameID:      "pinochle",
		Phase:       domain.PhaseBidding,
		Dealer:      0,
		RoundNumber: 1,
		Players:     append([]domain.Player{}, players...),
		Hands:       make([][]domain.Card, 4),
		Pinochle: &domain.PinochleState{
			Teams:       [][]int{{0, 2}, {1, 3}},
			HighBid:     pinochleMinBid - 1,
			HighBidder:  -1,
			Passed:      make([]bool, 4),
			Melds:       make([]int, 4),
			Trick:       []domain.TrickPlay{},
			TrickLeader: 1,
			TricksWon:   make([]int, 4),
			Counters:    make([]int, 2),
			TeamScores:  make([]int, 2),
		},
	}
}

func (g *Pinochle) DealOrSetup(st *domain.RoundState, rng *rand.Rand) error {
	p := st.Pinochle

	deck := domain.ShuffleDeck(rng, domain.NewPinochleDeck())
	hands, remaining := domain.DealCards(deck, 4, 12)
	st.Hands = hands
	st.Deck = remaining
	st.DeckCount = 0
	for seat := range st.Hands {
		sortPinochleHand(st.Hands[seat])
	}

	st.Phase = domain.PhaseBidding
	p.HighBid = pinochleMinBid - 1
	p.HighBidder = -1
	p.Passed = make([]bool, 4)
	p.Trump = ""
	p.Melds = make([]int, 4)
	p.Trick = []domain.TrickPlay{}
	p.TricksWon = make([]int, 4)
	p.Counters = make([]int, 2)
	st.CurrentTurn = (st.Dealer + 1) % 4
	return nil
}

func (g *Pinochle) ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error {
	p := st.Pinochle
	if st.CurrentTurn != seat {
		return domain.NotYourTurn("not your turn")
	}

	switch st.Phase {
	case domain.PhaseBidding:
		switch mv.Action {
		case domain.ActionPass:
			return nil
		case domain.ActionBid:
			if mv.Bid <= p.HighBid {
				return domain.RuleViolation("bid must be higher than current bid")
			}
			return nil
		}
		return domain.InvalidMove("must bid or pass")

	case domain.PhaseTrumpSelect:
		if mv.Action != domain.ActionSelectTrump || !suitIn(mv.Suit, domain.StandardSuits) {
			return domain.InvalidMove("must select a valid suit")
		}
		return nil

	case domain.PhasePlaying:
		if mv.Action != domain.ActionPlay || mv.CardID == "" {
			return domain.InvalidMove("no card specified")
		}
		hand := st.Hands[seat]
		card, ok := domain.FindCard(hand, mv.CardID)
		if !ok {
			return domain.InvalidMove("card not in hand")
		}
		if domain.MustFollow(hand, p.Trick, card) {
			return domain.RuleViolation("must follow suit")
		}
		if domain.MustTrump(hand, p.Trick, card, p.Trump) {
			return domain.RuleViolation("must play trump if unable to follow")
		}
		return nil
	}

	return domain.InvalidPhase("cannot make moves now")
}

func (g *Pinochle) ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	return dispatch(g.apply, st, seat, mv, rng)
}

func (g *Pinochle) applyBid(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	p := st.Pinochle
	if mv.Action == domain.ActionPass {
		p.Passed[seat] = true
	} else {
		p.HighBid = mv.Bid
		p.HighBidder = seat
	}

	active := 0
	for _, passed := range p.Passed {
		if !passed {
			active++
		}
	}

	if active == 1 || (p.HighBidder >= 0 && active == 0) {
		if p.HighBidder < 0 {
			// Everyone passed; the dealer eats the minimum bid.
			p.HighBidder = st.Dealer
			p.HighBid = pinochleMinBid
		}
		st.Phase = domain.PhaseTrumpSelect
		st.CurrentTurn = p.HighBidder
	}
	return nil
}

func (g *Pinochle) applyTrump(st *domain.RoundState, _ int, mv domain.Move, _ *rand.Rand) error {
	p := st.Pinochle
	p.Trump = mv.Suit
	g.calculateMelds(st)
	st.Phase = domain.PhasePlaying
	p.TrickLeader = p.HighBidder
	st.CurrentTurn = p.HighBidder
	return nil
}

// calculateMelds scores each hand once trump is known: pinochles,
// marriages (royal in trump), trump nines, the trump run, and aces
// around.
func (g *Pinochle) calculateMelds(st *domain.RoundState) {
	p := st.Pinochle
	for seat := 0; seat < 4; seat++ {
		p.Melds[seat] = MeldPoints(st.Hands[seat], p.Trump)
	}
}

// MeldPoints counts the meld in one pinochle hand for the given trump.
func MeldPoints(hand []domain.Card, trump domain.Suit) int {
	meld := 0

	jd := countCards(hand, domain.SuitDiamonds, "J")
	qs := countCards(hand, domain.SuitSpades, "Q")
	switch min(jd, qs) {
	case 2:
		meld += 30
	case 1:
		meld += 4
	}

	for _, suit := range domain.StandardSuits {
		kings := countCards(hand, suit, "K")
		queens := countCards(hand, suit, "Q")
		marriages := min(kings, queens)
		if suit == trump {
			meld += marriages * 4
		} else {
			meld += marriages * 2
		}
	}

	meld += countCards(hand, trump, "9")

	run := true
	for _, rank := range []string{"A", "10", "K", "Q", "J"} {
		if !domain.HasCard(hand, trump, rank) {
			run = false
			break
		}
	}
	if run {
		meld += 15
	}

	aceSuits := map[domain.Suit]bool{}
	for _, c := range hand {
		if c.Rank == "A" {
			aceSuits[c.Suit] = true
		}
	}
	if len(aceSuits) == 4 {
		meld += 10
	}

	return meld
}

func (g *Pinochle) applyPlay(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	p := st.Pinochle
	card, _ := domain.FindCard(st.Hands[seat], mv.CardID)
	st.Hands[seat] = domain.RemoveCard(st.Hands[seat], mv.CardID)
	p.Trick = append(p.Trick, domain.TrickPlay{Seat: seat, Card: card})

	if len(p.Trick) == 4 {
		g.resolveTrick(st)
	}
	return nil
}

func (g *Pinochle) resolveTrick(st *domain.RoundState) {
	p := st.Pinochle
	winner := domain.TrickWinner(p.Trick, p.Trump, pinochleRank)

	p.TricksWon[winner]++

	// Counters: each ace, ten, or king in the trick is one point to
	// the winning team.
	for _, play := range p.Trick {
		switch play.Card.Rank {
		case "A", "10", "K":
			p.Counters[winner%2]++
		}
	}

	p.Trick = []domain.TrickPlay{}
	p.TrickLeader = winner

	for _, hand := range st.Hands {
		if len(hand) > 0 {
			return
		}
	}

	// Last trick bonus, then settle the bid.
	p.Counters[winner%2]++
	st.Phase = domain.PhaseRoundEnd
	g.scoreRound(st)
}

func (g *Pinochle) scoreRound(st *domain.RoundState) {
	p := st.Pinochle
	biddingTeam := p.HighBidder % 2
	otherTeam := 1 - biddingTeam

	teamMelds := make([]int, 2)
	for seat := 0; seat < 4; seat++ {
		teamMelds[seat%2] += p.Melds[seat]
	}

	biddingTotal := teamMelds[biddingTeam] + p.Counters[biddingTeam]
	otherTotal := teamMelds[otherTeam] + p.Counters[otherTeam]

	if biddingTotal >= p.HighBid {
		p.TeamScores[biddingTeam] += biddingTotal
	} else {
		// Set: the bid comes off the top.
		p.TeamScores[biddingTeam] -= p.HighBid
	}

	// Defenders only score when they captured at least one counter.
	if p.Counters[otherTeam] > 0 {
		p.TeamScores[otherTeam] += otherTotal
	}

	st.RoundNumber++
	st.Dealer = (st.Dealer + 1) % 4
}

func pinochleRank(c domain.Card) int {
	switch c.Rank {
	case "A":
		return 6
	case "10":
		return 5
	case "K":
		return 4
	case "Q":
		return 3
	case "J":
		return 2
	case "9":
		return 1
	}
	return 0
}

// AdvanceTurn rotates bidding past seats that have passed; trick play
// follows the leader.
func (g *Pinochle) AdvanceTurn(st *domain.RoundState) {
	p := st.Pinochle
	switch st.Phase {
	case domain.PhaseBidding:
		for i := 0; i < 4; i++ {
			st.CurrentTurn = (st.CurrentTurn + 1) % 4
			if !p.Passed[st.CurrentTurn] {
				return
			}
		}
	case domain.PhasePlaying:
		if len(p.Trick) == 0 {
			st.CurrentTurn = p.TrickLeader
		} else {
			st.CurrentTurn = (st.CurrentTurn + 1) % 4
		}
	}
}

func (g *Pinochle) ValidMoves(st *domain.RoundState, seat int) []domain.Move {
	p := st.Pinochle
	if st.CurrentTurn != seat {
		return nil
	}

	switch st.Phase {
	case domain.PhaseBidding:
		moves := []domain.Move{{Action: domain.ActionPass}}
		for bid := p.HighBid + 1; bid <= 50; bid++ {
			moves = append(moves, domain.Move{Action: domain.ActionBid, Bid: bid})
		}
		return moves

	case domain.PhaseTrumpSelect:
		var moves []domain.Move
		for _, suit := range domain.StandardSuits {
			moves = append(moves, domain.Move{Action: domain.ActionSelectTrump, Suit: suit})
		}
		return moves

	case domain.PhasePlaying:
		var valid []domain.Move
		for _, c := range st.Hands[seat] {
			mv := domain.Move{Action: domain.ActionPlay, CardID: c.ID}
			if g.ValidateMove(st, seat, mv) == nil {
				valid = append(valid, mv)
			}
		}
		return valid
	}
	return nil
}

func (g *Pinochle) PublicState(st *domain.RoundState, viewer int) *domain.RoundState {
	pub := redactBase(st)
	hideHands(pub, viewer)
	return pub
}

func (g *Pinochle) AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	p := st.Pinochle

	switch st.Phase {
	case domain.PhaseBidding:
		hand := st.Hands[seat]
		estimated := estimateMeld(hand)
		counters := 0
		for _, c := range hand {
			switch c.Rank {
			case "A", "10", "K":
				counters++
			}
		}
		estimated += (counters / 3) * 2

		if estimated > p.HighBid+2 {
			return domain.Move{Action: domain.ActionBid, Bid: p.HighBid + 1}, true
		}
		return domain.Move{Action: domain.ActionPass}, true

	case domain.PhaseTrumpSelect:
		bestSuit, bestCount := domain.SuitSpades, 0
		for _, suit := range domain.StandardSuits {
			count := 0
			for _, c := range st.Hands[seat] {
				if c.Suit == suit {
					count++
				}
			}
			if count > bestCount {
				bestSuit, bestCount = suit, count
			}
		}
		return domain.Move{Action: domain.ActionSelectTrump, Suit: bestSuit}, true

	case domain.PhasePlaying:
		return bot.PickRandom(rng, g.ValidMoves(st, seat))
	}

	return domain.Move{}, false
}

// estimateMeld is the bidder's quick count: pinochles and marriages
// only, with no trump known yet.
func estimateMeld(hand []domain.Card) int {
	meld := 0
	jd := countCards(hand, domain.SuitDiamonds, "J")
	qs := countCards(hand, domain.SuitSpades, "Q")
	meld += min(jd, qs) * 4

	for _, suit := range domain.StandardSuits {
		kings := countCards(hand, suit, "K")
		queens := countCards(hand, suit, "Q")
		meld += min(kings, queens) * 2
	}
	return meld
}

func (g *Pinochle) PendingSeats(st *domain.RoundState) []int {
	switch st.Phase {
	case domain.PhaseBidding, domain.PhaseTrumpSelect, domain.PhasePlaying:
		return []int{st.CurrentTurn}
	}
	return nil
}

func (g *Pinochle) CheckEnd(st *domain.RoundState) domain.EndResult {
	p := st.Pinochle
	if st.Phase != domain.PhaseRoundEnd {
		return domain.NotYet()
	}
	for team, score := range p.TeamScores {
		if score >= g.winScore {
			return domain.EndResult{
				Ended:   true,
				Reason:  "win_score",
				Winners: append([]int{}, p.Teams[team]...),
			}
		}
	}
	return domain.NotYet()
}

func countCards(hand []domain.Card, suit domain.Suit, rank string) int {
	n := 0
	for _, c := range hand {
		if c.Suit == suit && c.Rank == rank {
			n++
		}
	}
	return n
}

// sortPinochleHand orders suits spades, hearts, diamonds, clubs with
// the pinochle rank order A, 10, K, Q, J, 9 descending inside a suit.
func sortPinochleHand(hand []domain.Card) {
	suitOrder := map[domain.Suit]int{
		domain.SuitSpades:   0,
		domain.SuitHearts:   1,
		domain.SuitDiamonds: 2,
		domain.SuitClubs:    3,
	}
	sort.SliceStable(hand, func(i, j int) bool {
		if suitOrder[hand[i].Suit] != suitOrder[hand[j].Suit] {
			return suitOrder[hand[i].Suit] < suitOrder[hand[j].Suit]
		}
		return pinochleRank(hand[i]) > pinochleRank(hand[j])
	})
}
