package games

import (
	"math/rand"
	"sort"

	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Pass directions, rotating with the round number.
const (
	passLeft   = "left"
	passRight  = "right"
	passAcross = "across"
	passNone   = "none"
)

// Hearts is the 4-player point-avoidance game. Passing is a barrier
// phase; the holder of the two of clubs opens every round.
type Hearts struct {
	apply     map[handlerKey]applyFunc
	loseScore int
}

func NewHearts() *Hearts {
	g := &Hearts{loseScore: 100}
	g.apply = map[handlerKey]applyFunc{
		{domain.PhasePassing, domain.ActionPassCards}: g.applyPass,
		{domain.PhasePlaying, domain.ActionPlay}:      g.applyPlay,
	}
	return g
}

func (g *Hearts) Info() Info {
	return Info{
		ID:          "hearts",
		Name:        "Hearts",
		MinPlayers:  4,
		MaxPlayers:  4,
		HasTeams:    false,
		Description: "Avoid taking hearts and the Queen of Spades. First to 100 points loses!",
	}
}

func (g *Hearts) InitState(players []domain.Player, rules config.Rules) *domain.RoundState {
	if rules.Thresholds.HeartsLoseScore > 0 {
		g.loseScore = rules.Thresholds.HeartsLoseScore
	}
	return &domain.RoundState{
		GameID:      "hearts",
		Phase:       domain.PhasePassing,
		RoundNumber: 1,
		Players:     append([]domain.Player{}, players...),
		Hands:       make([][]domain.Card, 4),
		Hearts: &domain.HeartsState{
			PassDirection:  passLeft,
			PassSelections: make([][]string, 4),
			PassesComplete: make([]bool, 4),
			Trick:          []domain.TrickPlay{},
			TricksTaken:    make([]int, 4),
			HeartsTaken:    make([]int, 4),
			RoundScores:    make([]int, 4),
			TotalScores:    make([]int, 4),
		},
	}
}

func (g *Hearts) DealOrSetup(st *domain.RoundState, rng *rand.Rand) error {
	h := st.Hearts

	deck := domain.ShuffleDeck(rng, domain.NewStandardDeck())
	hands, remaining := domain.DealCards(deck, 4, 13)
	st.Hands = hands
	st.Deck = remaining
	st.DeckCount = 0
	for seat := range st.Hands {
		sortBySuitThenRank(st.Hands[seat])
	}

	directions := []string{passLeft, passRight, passAcross, passNone}
	h.PassDirection = directions[(st.RoundNumber-1)%4]

	if h.PassDirection == passNone {
		st.Phase = domain.PhasePlaying
		st.CurrentTurn = findTwoOfClubs(st.Hands)
		h.TrickLeader = st.CurrentTurn
	} else {
		st.Phase = domain.PhasePassing
		h.PassSelections = make([][]string, 4)
		h.PassesComplete = make([]bool, 4)
	}

	h.Trick = []domain.TrickPlay{}
	h.TricksTaken = make([]int, 4)
	h.HeartsTaken = make([]int, 4)
	h.HeartsBroken = false
	h.RoundScores = make([]int, 4)
	return nil
}

func findTwoOfClubs(hands [][]domain.Card) int {
	for seat, hand := range hands {
		if domain.HasCard(hand, domain.SuitClubs, "2") {
			return seat
		}
	}
	return 0
}

func (g *Hearts) ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error {
	switch st.Phase {
	case domain.PhasePassing:
		return g.validatePass(st, seat, mv)
	case domain.PhasePlaying:
		return g.validatePlay(st, seat, mv)
	}
	return domain.InvalidPhase("cannot make moves in this phase")
}

func (g *Hearts) validatePass(st *domain.RoundState, seat int, mv domain.Move) error {
	h := st.Hearts
	if mv.Action != domain.ActionPassCards {
		return domain.InvalidMove("select cards to pass")
	}
	if h.PassesComplete[seat] {
		return domain.RuleViolation("cards already selected")
	}
	if len(mv.CardIDs) != 3 {
		return domain.InvalidMove("must select exactly 3 cards to pass")
	}
	for _, id := range mv.CardIDs {
		if _, ok := domain.FindCard(st.Hands[seat], id); !ok {
			return domain.InvalidMove("card not in hand")
		}
	}
	return nil
}

func (g *Hearts) validatePlay(st *domain.RoundState, seat int, mv domain.Move) error {
	h := st.Hearts
	if st.CurrentTurn != seat {
		return domain.NotYourTurn("it is not your turn")
	}
	if mv.Action != domain.ActionPlay || mv.CardID == "" {
		return domain.InvalidMove("no card specified")
	}

	hand := st.Hands[seat]
	card, ok := domain.FindCard(hand, mv.CardID)
	if !ok {
		return domain.InvalidMove("card not in hand")
	}

	firstTrick := sumInts(h.TricksTaken) == 0

	// Opening lead must be the two of clubs.
	if len(h.Trick) == 0 && firstTrick {
		if card.Suit != domain.SuitClubs || card.Rank != "2" {
			if domain.HasCard(hand, domain.SuitClubs, "2") {
				return domain.RuleViolation("must lead the two of clubs")
			}
		}
	}

	if domain.MustFollow(hand, h.Trick, card) {
		return domain.RuleViolation("must follow suit")
	}

	// Hearts cannot be led until broken, unless nothing else remains.
	if len(h.Trick) == 0 && !h.HeartsBroken {
		if card.Suit == domain.SuitHearts && !onlyHearts(hand) {
			return domain.RuleViolation("hearts have not been broken yet")
		}
	}

	// No points on the first trick unless the hand forces it.
	if firstTrick && len(h.Trick) > 0 {
		lead := domain.LeadSuit(h.Trick)
		if !domain.HasSuit(hand, lead) && isPointCard(card) && hasNonPointCard(hand) {
			return domain.RuleViolation("cannot play point cards on the first trick")
		}
	}

	return nil
}

func (g *Hearts) ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	return dispatch(g.apply, st, seat, mv, rng)
}

func (g *Hearts) applyPass(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	h := st.Hearts
	h.PassSelections[seat] = append([]string{}, mv.CardIDs...)
	h.PassesComplete[seat] = true

	for _, done := range h.PassesComplete {
		if !done {
			return nil
		}
	}

	g.executePasses(st)
	st.Phase = domain.PhasePlaying
	st.CurrentTurn = findTwoOfClubs(st.Hands)
	h.TrickLeader = st.CurrentTurn
	return nil
}

func (g *Hearts) executePasses(st *domain.RoundState) {
	h := st.Hearts
	offsets := map[string]int{passLeft: 1, passRight: 3, passAcross: 2}
	offset := offsets[h.PassDirection]

	incoming := make([][]domain.Card, 4)
	for seat := 0; seat < 4; seat++ {
		target := (seat + offset) % 4
		for _, id := range h.PassSelections[seat] {
			if card, ok := domain.FindCard(st.Hands[seat], id); ok {
				incoming[target] = append(incoming[target], card)
			}
		}
		st.Hands[seat] = domain.RemoveCards(st.Hands[seat], h.PassSelections[seat])
	}

	for seat := 0; seat < 4; seat++ {
		st.Hands[seat] = append(st.Hands[seat], incoming[seat]...)
		sortBySuitThenRank(st.Hands[seat])
	}
}

func (g *Hearts) applyPlay(st *domain.RoundState, seat int, mv domain.Move, _ *rand.Rand) error {
	h := st.Hearts
	card, _ := domain.FindCard(st.Hands[seat], mv.CardID)
	st.Hands[seat] = domain.RemoveCard(st.Hands[seat], mv.CardID)
	h.Trick = append(h.Trick, domain.TrickPlay{Seat: seat, Card: card})

	if card.Suit == domain.SuitHearts {
		h.HeartsBroken = true
	}

	if len(h.Trick) == 4 {
		g.resolveTrick(st)
	}
	return nil
}

func (g *Hearts) resolveTrick(st *domain.RoundState) {
	h := st.Hearts
	winner := domain.TrickWinner(h.Trick, "", func(c domain.Card) int {
		return domain.RankValue(c.Rank)
	})

	points, hearts := 0, 0
	for _, play := range h.Trick {
		if play.Card.Suit == domain.SuitHearts {
			points++
			hearts++
		}
		if play.Card.Suit == domain.SuitSpades && play.Card.Rank == "Q" {
			points += 13
		}
	}

	h.TricksTaken[winner]++
	h.HeartsTaken[winner] += hearts
	h.RoundScores[winner] += points

	h.Trick = []domain.TrickPlay{}
	h.TrickLeader = winner

	for _, hand := range st.Hands {
		if len(hand) > 0 {
			return
		}
	}
	st.Phase = domain.PhaseRoundEnd
	g.scoreRound(st)
}

func (g *Hearts) scoreRound(st *domain.RoundState) {
	h := st.Hearts

	// Shooting the moon inverts the round.
	for seat := 0; seat < 4; seat++ {
		if h.RoundScores[seat] == 26 {
			h.RoundScores = []int{26, 26, 26, 26}
			h.RoundScores[seat] = 0
			break
		}
	}

	for seat, score := range h.RoundScores {
		h.TotalScores[seat] += score
	}
	st.RoundNumber++
}

func (g *Hearts) AdvanceTurn(st *domain.RoundState) {
	h := st.Hearts
	if st.Phase != domain.PhasePlaying {
		return
	}
	if len(h.Trick) == 0 {
		st.CurrentTurn = h.TrickLeader
	} else {
		st.CurrentTurn = (st.CurrentTurn + 1) % 4
	}
}

func (g *Hearts) ValidMoves(st *domain.RoundState, seat int) []domain.Move {
	if st.Phase == domain.PhasePassing {
		if st.Hearts.PassesComplete[seat] {
			return nil
		}
		return []domain.Move{{Action: domain.ActionPassCards}}
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

func (g *Hearts) PublicState(st *domain.RoundState, viewer int) *domain.RoundState {
	pub := redactBase(st)
	hideHands(pub, viewer)

	// Pass picks stay secret until everyone has submitted.
	if st.Phase == domain.PhasePassing {
		for seat := range pub.Hearts.PassSelections {
			if seat != viewer {
				pub.Hearts.PassSelections[seat] = nil
			}
		}
	}
	return pub
}

func (g *Hearts) AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	if st.Phase == domain.PhasePassing {
		return g.aiPass(st, seat), true
	}
	if st.Phase == domain.PhasePlaying {
		return g.aiPlay(st, seat, difficulty, rng)
	}
	return domain.Move{}, false
}

// aiPass unloads the queen of spades, high spades, and high hearts.
func (g *Hearts) aiPass(st *domain.RoundState, seat int) domain.Move {
	type scored struct {
		card  domain.Card
		score int
	}
	var ranked []scored
	for _, c := range st.Hands[seat] {
		s := domain.RankValue(c.Rank)
		if c.Suit == domain.SuitSpades && c.Rank == "Q" {
			s += 20
		}
		if c.Suit == domain.SuitSpades && (c.Rank == "A" || c.Rank == "K") {
			s += 10
		}
		if c.Suit == domain.SuitHearts {
			s += 5
		}
		ranked = append(ranked, scored{c, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	ids := make([]string, 0, 3)
	for i := 0; i < 3 && i < len(ranked); i++ {
		ids = append(ids, ranked[i].card.ID)
	}
	return domain.Move{Action: domain.ActionPassCards, CardIDs: ids}
}

func (g *Hearts) aiPlay(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool) {
	valid := g.ValidMoves(st, seat)
	if len(valid) == 0 {
		return domain.Move{}, false
	}

	if difficulty == bot.DifficultyBeginner && !bot.ShouldPlayOptimal(rng, difficulty) {
		return bot.PickRandom(rng, valid)
	}

	h := st.Hearts
	hand := st.Hands[seat]
	allowed := make(map[string]bool, len(valid))
	for _, mv := range valid {
		allowed[mv.CardID] = true
	}

	var pick domain.Card
	if len(h.Trick) == 0 {
		pick = g.bestLead(hand, h, allowed)
	} else {
		pick = g.bestFollow(hand, h.Trick, allowed)
	}
	return domain.Move{Action: domain.ActionPlay, CardID: pick.ID}, true
}

func (g *Hearts) bestLead(hand []domain.Card, h *domain.HeartsState, allowed map[string]bool) domain.Card {
	if c, ok := lowestOf(hand, allowed, domain.SuitClubs, domain.SuitDiamonds); ok {
		return c
	}
	if !domain.HasCard(hand, domain.SuitSpades, "Q") {
		if c, ok := lowestOf(hand, allowed, domain.SuitSpades); ok {
			return c
		}
	}
	if h.HeartsBroken {
		if c, ok := lowestOf(hand, allowed, domain.SuitHearts); ok {
			return c
		}
	}
	if c, ok := lowestOf(hand, allowed, domain.StandardSuits...); ok {
		return c
	}
	return hand[0]
}

func (g *Hearts) bestFollow(hand []domain.Card, trick []domain.TrickPlay, allowed map[string]bool) domain.Card {
	lead := domain.LeadSuit(trick)
	if domain.HasSuit(hand, lead) {
		winning := 0
		for _, play := range trick {
			if play.Card.Suit == lead {
				if v := domain.RankValue(play.Card.Rank); v > winning {
					winning = v
				}
			}
		}
		// Duck with the highest card that still loses the trick.
		var under, highest domain.Card
		underOK := false
		for _, c := range hand {
			if c.Suit != lead || !allowed[c.ID] {
				continue
			}
			v := domain.RankValue(c.Rank)
			if v < winning && (!underOK || v > domain.RankValue(under.Rank)) {
				under, underOK = c, true
			}
			if highest.ID == "" || v > domain.RankValue(highest.Rank) {
				highest = c
			}
		}
		if underOK {
			return under
		}
		return highest
	}

	// Void in the led suit: dump points.
	if qs, ok := domain.FindCard(hand, "Q_spades"); ok && allowed[qs.ID] {
		return qs
	}
	if c, ok := highestOf(hand, allowed, domain.SuitHearts); ok {
		return c
	}
	if c, ok := highestOf(hand, allowed, domain.SuitSpades); ok {
		return c
	}
	if c, ok := highestOf(hand, allowed, domain.StandardSuits...); ok {
		return c
	}
	return hand[0]
}

func (g *Hearts) PendingSeats(st *domain.RoundState) []int {
	switch st.Phase {
	case domain.PhasePassing:
		var pending []int
		for seat, done := range st.Hearts.PassesComplete {
			if !done {
				pending = append(pending, seat)
			}
		}
		return pending
	case domain.PhasePlaying:
		return []int{st.CurrentTurn}
	}
	return nil
}

func (g *Hearts) CheckEnd(st *domain.RoundState) domain.EndResult {
	h := st.Hearts
	if st.Phase != domain.PhaseRoundEnd {
		return domain.NotYet()
	}

	over := false
	for _, score := range h.TotalScores {
		if score >= g.loseScore {
			over = true
			break
		}
	}
	if !over {
		return domain.NotYet()
	}

	min := h.TotalScores[0]
	for _, score := range h.TotalScores[1:] {
		if score < min {
			min = score
		}
	}
	var winners []int
	for seat, score := range h.TotalScores {
		if score == min {
			winners = append(winners, seat)
		}
	}
	return domain.EndResult{Ended: true, Reason: "score_limit", Winners: winners}
}

func isPointCard(c domain.Card) bool {
	if c.Suit == domain.SuitHearts {
		return true
	}
	return c.Suit == domain.SuitSpades && c.Rank == "Q"
}

func hasNonPointCard(hand []domain.Card) bool {
	for _, c := range hand {
		if !isPointCard(c) {
			return true
		}
	}
	return false
}

func onlyHearts(hand []domain.Card) bool {
	for _, c := range hand {
		if c.Suit != domain.SuitHearts {
			return false
		}
	}
	return true
}

func sumInts(in []int) int {
	total := 0
	for _, v := range in {
		total += v
	}
	return total
}

// sortBySuitThenRank orders spades, hearts, diamonds, clubs with each
// suit descending, the common table layout.
func sortBySuitThenRank(hand []domain.Card) {
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
		return domain.RankValue(hand[i].Rank) > domain.RankValue(hand[j].Rank)
	})
}

func lowestOf(hand []domain.Card, allowed map[string]bool, suits ...domain.Suit) (domain.Card, bool) {
	var best domain.Card
	found := false
	for _, c := range hand {
		if !allowed[c.ID] || !suitIn(c.Suit, suits) {
			continue
		}
		if !found || domain.RankValue(c.Rank) < domain.RankValue(best.Rank) {
			best, found = c, true
		}
	}
	return best, found
}

func highestOf(hand []domain.Card, allowed map[string]bool, suits ...domain.Suit) (domain.Card, bool) {
	var best domain.Card
	found := false
	for _, c := range hand {
		if !allowed[c.ID] || !suitIn(c.Suit, suits) {
			continue
		}
		if !found || domain.RankValue(c.Rank) > domain.RankValue(best.Rank) {
			best, found = c, true
		}
	}
	return best, found
}

func suitIn(s domain.Suit, suits []domain.Suit) bool {
	for _, v := range suits {
		if s == v {
			return true
		}
	}
	return false
}
