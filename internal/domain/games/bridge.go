package games

import (
	"math/rand"

	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Bridge is 4-player partnership bridge with a full auction, dummy
// reveal after the opening lead, rotating vulnerability, and
// duplicate-style contract scoring. North/South are the even seats.
type Bridge struct {
	apply map[handlerKey]applyFunc
}

func NewBridge() *Bridge {
	g := &Bridge{}
	g.apply = map[handlerKey]applyFunc{
		{domain.PhaseBidding, domain.ActionBid}:       g.applyBidEntry,
		{domain.PhaseBidding, domain.ActionPass}:      g.applyBidEntry,
		{domain.PhaseBidding, domain.ActionDoubleBid}: g.applyBidEntry,
		{domain.PhaseBidding, domain.ActionRedouble}:  g.applyBidEntry,
		{domain.PhasePlaying, domain.ActionPlay}:      g.applyPlay,
	}
	return g
}

func (g *Bridge) Info() Info {
	return Info{
		ID:          "bridge",
		Name:        "Bridge",
		MinPlayers:  4,
		MaxPlayers:  4,
		HasTeams:    true,
		Description: "Partnership trick-taking game with bidding. Bid to make your contract!",
	}
}

func (g *Bridge) InitState(players []domain.Player, rules config.Rules) *domain.RoundState {
	return &domain.RoundState{
		GameID:      "bridge",
		Phase:       domain.PhaseBidding,
		RoundNumber: 1,
		Players:     append([]domain.Player{}, players...),
		Hands:       make([][]domain.Card, 4),
		Bridge: &domain.BridgeState{
			CurrentBidder:  1, // left of the dealer opens
			BiddingHistory: []domain.BidRecord{},
			Declarer:       -1,
			Trick:          []domain.TrickPlay{},
			Vulnerability:  "none",
			HandNumber:     1,
			BiddingSystem:  rules.Bridge.BiddingSystem,
		},
	}
}

func (g *Bridge) DealOrSetup(st *domain.RoundState, rng *rand.Rand) error {
	b := st.Bridge

	deck := domain.ShuffleDeck(rng, domain.NewStandardDeck())
	hands, remaining := domain.DealCards(deck, 4, 13)
	st.Hands = hands
	st.Deck = remaining
	st.DeckCount = 0
	for seat := range st.Hands {
		sortBySuitThenRank(st.Hands[seat])
	}

	st.Dealer = (b.HandNumber - 1) % 4
	b.CurrentBidder = (st.Dealer + 1) % 4

	vulCycle := []string{"none", "ns", "ew", "both"}
	b.Vulnerability = vulCycle[(b.HandNumber-1)%4]

	st.Phase = domain.PhaseBidding
	b.BiddingHistory = []domain.BidRecord{}
	b.HasContract = false
	b.ContractLevel = 0
	b.ContractSuit = ""
	b.Declarer = -1
	b.DummySeat = 0
	b.DummyRevealed = false
	b.Doubled = false
	b.Redoubled = false
	b.Trick = []domain.TrickPlay{}
	b.TricksNS = 0
	b.TricksEW = 0
	b.PassesInRow = 0
	return nil
}

func (g *Bridge) ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error {
	switch st.Phase {
	case domain.PhaseBidding:
		return g.validateBid(st, seat, mv)
	case domain.PhasePlaying:
		return g.validatePlay(st, seat, mv)
	}
	return domain.InvalidPhase("cannot make moves in this phase")
}

func (g *Bridge) validateBid(st *domain.RoundState, seat int, mv domain.Move) error {
	b := st.Bridge
	if b.CurrentBidder != seat {
		return domain.NotYourTurn("it is not your turn to bid")
	}

	switch mv.Action {
	case domain.ActionPass:
		return nil

	case domain.ActionDoubleBid:
		if len(b.BiddingHistory) == 0 {
			return domain.RuleViolation("no bid to double")
		}
		last := b.BiddingHistory[len(b.BiddingHistory)-1]
		if last.Bid.Action != domain.ActionBid {
			return domain.RuleViolation("can only double a bid")
		}
		if last.Seat%2 == seat%2 {
			return domain.RuleViolation("cannot double partner's bid")
		}
		if b.Doubled {
			return domain.RuleViolation("bid already doubled")
		}
		return nil

	case domain.ActionRedouble:
		if !b.Doubled {
			return domain.RuleViolation("no double to redouble")
		}
		if b.Redoubled {
			return domain.RuleViolation("already redoubled")
		}
		return nil

	case domain.ActionBid:
		if mv.Level < 1 || mv.Level > 7 {
			return domain.InvalidMove("level must be between 1 and 7")
		}
		if !validBidSuit(mv.Suit) {
			return domain.InvalidMove("invalid suit")
		}
		if b.HasContract {
			if bidValue(mv.Level, mv.Suit) <= bidValue(b.ContractLevel, b.ContractSuit) {
				return domain.RuleViolation("bid must be higher than current contract")
			}
		}
		return nil
	}

	return domain.InvalidMove("invalid bid type")
}

func validBidSuit(s domain.Suit) bool {
	switch s {
	case domain.SuitClubs, domain.SuitDiamonds, domain.SuitHearts, domain.SuitSpades, domain.SuitNoTrump:
		return true
	}
	return false
}

// bidValue ranks bids for comparison: five steps per level, suits
// clubs < diamonds < hearts < spades < notrump within a level.
func bidValue(level int, suit domain.Suit) int {
	order := map[domain.Suit]int{
		domain.SuitClubs:    0,
		domain.SuitDiamonds: 1,
		domain.SuitHearts:   2,
		domain.SuitSpades:   3,
		domain.SuitNoTrump:  4,
	}
	return level*5 + order[suit]
}

func (g *Bridge) validatePlay(st *domain.RoundState, seat int, mv domain.Move) error {
	b := st.Bridge
	if st.CurrentTurn != seat {
		return domain.NotYourTurn("it is not your turn")
	}
	if mv.Action != domain.ActionPlay || mv.CardID == "" {
		return domain.InvalidMove("no card specified")
	}
	card, ok := domain.FindCard(st.Hands[seat], mv.CardID)
	if !ok {
		return domain.InvalidMove("card not in hand")
	}
	if domain.MustFollow(st.Hands[seat], b.Trick, card) {
		return domain.RuleViolation("must follow suit")
	}
	return nil
}

func (g *Bridge) ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	return dispatch(g.apply, st, seat, mv, rng)
}

func (g *Bridge) applyBidEntry(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	b := st.Bridge
	b.BiddingHistory = append(b.BiddingHistory, domain.BidRecord{Seat: seat, Bid: mv})

	switch mv.Action {
	case domain.ActionPass:
		b.PassesInRow++

		// Four opening passes throw the hand in for a redeal.
		if len(b.BiddingHistory) == 4 && b.PassesInRow == 4 {
			return g.DealOrSetup(st, rng)
		}

		// Three passes close the auction once a contract exists.
		if b.HasContract && b.PassesInRow == 3 {
			st.Phase = domain.PhasePlaying
			b.TrickLeader = (st.Dealer + 1) % 4
			st.CurrentTurn = b.TrickLeader
			return nil
		}

	case domain.ActionDoubleBid:
		b.Doubled = true
		b.PassesInRow = 0

	case domain.ActionRedouble:
		b.Redoubled = true
		b.PassesInRow = 0

	case domain.ActionBid:
		b.HasContract = true
		b.ContractLevel = mv.Level
		b.ContractSuit = mv.Suit
		b.Declarer = seat
		b.Doubled = false
		b.Redoubled = false
		b.PassesInRow = 0
	}

	b.CurrentBidder = (b.CurrentBidder + 1) % 4
	return nil
}

func (g *Bridge) applyPlay(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	b := st.Bridge
	card, _ := domain.FindCard(st.Hands[seat], mv.CardID)
	st.Hands[seat] = domain.RemoveCard(st.Hands[seat], mv.CardID)
	b.Trick = append(b.Trick, domain.TrickPlay{Seat: seat, Card: card})

	// The dummy goes down after the opening lead.
	if len(b.Trick) == 1 && !b.DummyRevealed {
		b.DummySeat = (b.Declarer + 2) % 4
		b.DummyRevealed = true
	}

	if len(b.Trick) == 4 {
		g.resolveTrick(st)
	}
	return nil
}

func (g *Bridge) resolveTrick(st *domain.RoundState) {
	b := st.Bridge
	trump := b.ContractSuit
	if trump == domain.SuitNoTrump {
		trump = ""
	}

	winner := domain.TrickWinner(b.Trick, trump, func(c domain.Card) int {
		return domain.RankValue(c.Rank)
	})

	if winner%2 == 0 {
		b.TricksNS++
	} else {
		b.TricksEW++
	}

	b.Trick = []domain.TrickPlay{}
	b.TrickLeader = winner

	if b.TricksNS+b.TricksEW == 13 {
		st.Phase = domain.PhaseHandEnd
		g.scoreHand(st)
	}
}

func (g *Bridge) scoreHand(st *domain.RoundState) {
	b := st.Bridge
	declarerTeam := b.Declarer % 2
	tricksWon := b.TricksNS
	if declarerTeam == 1 {
		tricksWon = b.TricksEW
	}
	vulnerable := teamVulnerable(b.Vulnerability, declarerTeam)
	tricksMade := tricksWon - 6

	score := 0
	if tricksMade >= b.ContractLevel {
		base := trickScore(b.ContractLevel, b.ContractSuit)
		if b.Doubled {
			base *= 2
		}
		if b.Redoubled {
			base *= 4
		}

		overtricks := tricksMade - b.ContractLevel
		score = base + overtrickScore(overtricks, b.ContractSuit, b.Doubled, b.Redoubled, vulnerable)

		if base >= 100 {
			score += bonusFor(vulnerable, 500, 300)
		}
		switch b.ContractLevel {
		case 6:
			score += bonusFor(vulnerable, 750, 500)
		case 7:
			score += bonusFor(vulnerable, 1500, 1000)
		}
	} else {
		undertricks := b.ContractLevel - tricksMade
		score = -undertrickPenalty(undertricks, b.Doubled, b.Redoubled, vulnerable)
	}

	b.HandScore = score
	if declarerTeam == 0 {
		b.TotalScoreNS += score
	} else {
		b.TotalScoreEW += score
	}
	b.HandNumber++
}

func trickScore(level int, suit domain.Suit) int {
	if suit == domain.SuitNoTrump {
		return 40 + (level-1)*30
	}
	perTrick := 30
	if suit == domain.SuitClubs || suit == domain.SuitDiamonds {
		perTrick = 20
	}
	return level * perTrick
}

func overtrickScore(overtricks int, suit domain.Suit, doubled, redoubled, vulnerable bool) int {
	if doubled || redoubled {
		perTrick := bonusFor(vulnerable, 200, 100)
		if redoubled {
			perTrick *= 2
		}
		return overtricks * perTrick
	}
	perTrick := 30
	if suit == domain.SuitClubs || suit == domain.SuitDiamonds {
		perTrick = 20
	}
	return overtricks * perTrick
}

func undertrickPenalty(undertricks int, doubled, redoubled, vulnerable bool) int {
	if !doubled && !redoubled {
		return undertricks * bonusFor(vulnerable, 100, 50)
	}
	penalty := bonusFor(vulnerable, 200, 100)
	if redoubled {
		penalty *= 2
	}
	return undertricks * penalty
}

func bonusFor(vulnerable bool, vul, notVul int) int {
	if vulnerable {
		return vul
	}
	return notVul
}

func teamVulnerable(vul string, team int) bool {
	switch vul {
	case "both":
		return true
	case "ns":
		return team == 0
	case "ew":
		return team == 1
	}
	return false
}

func (g *Bridge) AdvanceTurn(st *domain.RoundState) {
	b := st.Bridge
	if st.Phase != domain.PhasePlaying {
		return
	}
	if len(b.Trick) == 0 {
		st.CurrentTurn = b.TrickLeader
	} else {
		st.CurrentTurn = (st.CurrentTurn + 1) % 4
	}
}

func (g *Bridge) ValidMoves(st *domain.RoundState, seat int) []domain.Move {
	b := st.Bridge

	if st.Phase == domain.PhaseBidding {
		if b.CurrentBidder != seat {
			return nil
		}
		moves := []domain.Move{{Action: domain.ActionPass}}
		if g.validateBid(st, seat, domain.Move{Action: domain.ActionDoubleBid}) == nil {
			moves = append(moves, domain.Move{Action: domain.ActionDoubleBid})
		}
		if g.validateBid(st, seat, domain.Move{Action: domain.ActionRedouble}) == nil {
			moves = append(moves, domain.Move{Action: domain.ActionRedouble})
		}
		start := 1
		if b.HasContract {
			start = bidValue(b.ContractLevel, b.ContractSuit) + 1
		} else {
			start = bidValue(1, domain.SuitClubs)
		}
		suits := []domain.Suit{domain.SuitClubs, domain.SuitDiamonds, domain.SuitHearts, domain.SuitSpades, domain.SuitNoTrump}
		for level := 1; level <= 7; level++ {
			for _, suit := range suits {
				if bidValue(level, suit) >= start {
					moves = append(moves, domain.Move{Action: domain.ActionBid, Level: level, Suit: suit})
				}
			}
		}
		return moves
	}

	if st.Phase != domain.PhasePlaying || st.CurrentTurn != seat {
		return nil
	}

	var valid []domain.Move
	for _, c := range st.Hands[seat] {
		mv := domain.Move{Action: domain.ActionPlay, CardID: c.ID}
		if g.validatePlay(st, seat, mv) == nil {
			valid = append(valid, mv)
		}
	}
	return valid
}

func (g *Bridge) PublicState(st *domain.RoundState, viewer int) *domain.RoundState {
	pub := redactBase(st)
	b := st.Bridge
	if b.DummyRevealed {
		hideHands(pub, viewer, b.DummySeat)
	} else {
		hideHands(pub, viewer)
	}
	return pub
}

func (g *Bridge) AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	if st.Phase == domain.PhaseBidding {
		return g.aiBid(st, seat), true
	}
	valid := g.ValidMoves(st, seat)
	return bot.PickRandom(rng, valid)
}

// aiBid opens the longest suit with 13+ high card points, or 1NT on a
// balanced 15-17, and otherwise passes.
func (g *Bridge) aiBid(st *domain.RoundState, seat int) domain.Move {
	b := st.Bridge
	hand := st.Hands[seat]

	hcp := 0
	suitCounts := map[domain.Suit]int{}
	for _, c := range hand {
		switch c.Rank {
		case "A":
			hcp += 4
		case "K":
			hcp += 3
		case "Q":
			hcp += 2
		case "J":
			hcp++
		}
		suitCounts[c.Suit]++
	}

	opening := len(b.BiddingHistory) == 0 || b.PassesInRow == 3
	if !opening || hcp < 13 {
		return domain.Move{Action: domain.ActionPass}
	}

	longest, longestCount := domain.SuitSpades, 0
	for _, suit := range domain.StandardSuits {
		if suitCounts[suit] > longestCount {
			longest, longestCount = suit, suitCounts[suit]
		}
	}

	if longestCount >= 5 {
		return domain.Move{Action: domain.ActionBid, Level: 1, Suit: longest}
	}
	if hcp >= 15 && hcp <= 17 {
		return domain.Move{Action: domain.ActionBid, Level: 1, Suit: domain.SuitNoTrump}
	}
	return domain.Move{Action: domain.ActionBid, Level: 1, Suit: longest}
}

func (g *Bridge) PendingSeats(st *domain.RoundState) []int {
	switch st.Phase {
	case domain.PhaseBidding:
		return []int{st.Bridge.CurrentBidder}
	case domain.PhasePlaying:
		return []int{st.CurrentTurn}
	}
	return nil
}

// CheckEnd never fires: the table keeps dealing hands. Rubber and
// match tracking live above the engine.
func (g *Bridge) CheckEnd(st *domain.RoundState) domain.EndResult {
	return domain.NotYet()
}
