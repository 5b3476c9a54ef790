package domain

// Phase names across the six machines. Each game cycles through its own
// subset; phases only loop backward through an explicit new-round reset.
const (
	PhaseBetting       = "betting"
	PhasePlayerActions = "player_actions"
	PhaseDealerPlay    = "dealer_play"
	PhasePayout        = "payout"
	PhaseBidding       = "bidding"
	PhaseTrumpSelect   = "trump_selection"
	PhasePlaying       = "playing"
	PhaseHandEnd       = "hand_end"
	PhasePassing       = "passing"
	PhaseDraw          = "draw"
	PhaseMeld          = "meld"
	PhaseDiscard       = "discard"
	PhasePegging       = "pegging"
	PhaseRoundEnd      = "round_end"
)

// Player is one seat at the table.
type Player struct {
	Name  string `json:"name"`
	IsAI  bool   `json:"is_ai"`
	Chips int    `json:"chips,omitempty"`
}

// TrickPlay is one card laid into a trick or pegging pile by a seat.
type TrickPlay struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// Meld is a laid-down set of same-rank cards.
type Meld struct {
	Rank  string `json:"rank"`
	Cards []Card `json:"cards"`
}

// BidRecord is one entry of a bidding history.
type BidRecord struct {
	Seat int  `json:"seat"`
	Bid  Move `json:"bid"`
}

// EndResult reports whether the session is over and who won.
type EndResult struct {
	Ended   bool   `json:"ended"`
	Reason  string `json:"reason,omitempty"`
	Winners []int  `json:"winners,omitempty"`
}

// NotYet is the not-ended result.
func NotYet() EndResult { return EndResult{} }

// RoundState is the single mutable snapshot of one round. Exactly one
// canonical value exists per room; redacted views are deep copies.
// The undealt deck lives in Deck (never a hidden side channel) and
// DeckCount mirrors len(Deck) so redacted views can drop the cards.
type RoundState struct {
	GameID      string   `json:"game_id"`
	Phase       string   `json:"phase"`
	CurrentTurn int      `json:"current_turn"`
	Dealer      int      `json:"dealer"`
	RoundNumber int      `json:"round_number"`
	Players     []Player `json:"players"`
	Hands       [][]Card `json:"hands"`
	HandCounts  []int    `json:"hand_counts,omitempty"` // redacted views only
	Deck        []Card   `json:"deck,omitempty"`
	DeckCount   int      `json:"deck_count"`
	GameOver    bool     `json:"game_over"`

	Blackjack *BlackjackState `json:"blackjack,omitempty"`
	Bridge    *BridgeState    `json:"bridge,omitempty"`
	Canasta   *CanastaState   `json:"canasta,omitempty"`
	Cribbage  *CribbageState  `json:"cribbage,omitempty"`
	Hearts    *HeartsState    `json:"hearts,omitempty"`
	Pinochle  *PinochleState  `json:"pinochle,omitempty"`
}

// SeatCount returns the number of seats at the table.
func (st *RoundState) SeatCount() int { return len(st.Players) }

// BlackjackState holds the blackjack section of a round.
type BlackjackState struct {
	DealerHand       []Card   `json:"dealer_hand"`
	Bets             []int    `json:"bets"`
	Status           []string `json:"player_status"` // waiting, playing, stand, bust, blackjack
	NumDecks         int      `json:"num_decks"`
	DealerHitsSoft17 bool     `json:"dealer_hits_soft_17"`
	DoubleDownRules  string   `json:"double_down_rules"`
	SplitRules       string   `json:"split_rules"`
	Payout           string   `json:"blackjack_payout"` // 3:2 or 6:5
	Results          []string `json:"results,omitempty"`
	Payouts          []int    `json:"payouts,omitempty"`
}

// BridgeState holds the bridge section of a round.
type BridgeState struct {
	CurrentBidder  int         `json:"current_bidder"`
	BiddingHistory []BidRecord `json:"bidding_history"`
	HasContract    bool        `json:"has_contract"`
	ContractLevel  int         `json:"contract_level"`
	ContractSuit   Suit        `json:"contract_suit,omitempty"`
	Declarer       int         `json:"declarer"` // -1 until a bid lands
	DummySeat      int         `json:"dummy_seat"`
	DummyRevealed  bool        `json:"dummy_revealed"`
	Doubled        bool        `json:"doubled"`
	Redoubled      bool        `json:"redoubled"`
	Trick          []TrickPlay `json:"trick"`
	TrickLeader    int         `json:"trick_leader"`
	TricksNS       int         `json:"tricks_ns"`
	TricksEW       int         `json:"tricks_ew"`
	Vulnerability  string      `json:"vulnerability"` // none, ns, ew, both
	HandScore      int         `json:"hand_score"`
	TotalScoreNS   int         `json:"total_score_ns"`
	TotalScoreEW   int         `json:"total_score_ew"`
	HandNumber     int         `json:"hand_number"`
	BiddingSystem  string      `json:"bidding_system"`
	PassesInRow    int         `json:"passes_in_row"`
}

// CanastaState holds the canasta section of a round.
type CanastaState struct {
	HasTeams      bool     `json:"has_teams"`
	Melds         [][]Meld `json:"melds"`
	DiscardPile   []Card   `json:"discard_pile"`
	MinimumMeld   int      `json:"minimum_meld_score"`
	WildcardLimit int      `json:"wildcard_limit"`
	HandScores    []int    `json:"hand_scores"`
	TotalScores   []int    `json:"total_scores"`
	TeamScores    []int    `json:"team_scores"`
}

// CribbageState holds the cribbage section of a round.
type CribbageState struct {
	Crib       []Card      `json:"crib"`
	CribCount  int         `json:"crib_count,omitempty"` // redacted views only
	Starter    *Card       `json:"starter,omitempty"`
	PegPile    []TrickPlay `json:"peg_pile"`
	PegCount   int         `json:"peg_count"`
	PegHands   [][]Card    `json:"peg_hands"`
	PegCounts  []int       `json:"peg_counts,omitempty"` // redacted views only
	LastPlayer int         `json:"last_player"`          // -1 until a card pegs
	GoCalled   []bool      `json:"go_called"`
	Discards   [][]string  `json:"discards"`
	Scores     []int       `json:"scores"`
}

// HeartsState holds the hearts section of a round.
type HeartsState struct {
	PassDirection  string      `json:"pass_direction"` // left, right, across, none
	PassSelections [][]string  `json:"pass_selections"`
	PassesComplete []bool      `json:"passes_complete"`
	Trick          []TrickPlay `json:"trick"`
	TrickLeader    int         `json:"trick_leader"`
	TricksTaken    []int       `json:"tricks_taken"`
	HeartsTaken    []int       `json:"hearts_taken"`
	HeartsBroken   bool        `json:"hearts_broken"`
	RoundScores    []int       `json:"round_scores"`
	TotalScores    []int       `json:"total_scores"`
}

// PinochleState holds the pinochle section of a round.
type PinochleState struct {
	Teams       [][]int     `json:"teams"`
	HighBid     int         `json:"high_bid"`
	HighBidder  int         `json:"high_bidder"` // -1 until a bid lands
	Passed      []bool      `json:"passed"`
	Trump       Suit        `json:"trump,omitempty"`
	Melds       []int       `json:"melds"`
	Trick       []TrickPlay `json:"trick"`
	TrickLeader int         `json:"trick_leader"`
	TricksWon   []int       `json:"tricks_won"`
	Counters    []int       `json:"counters"`
	TeamScores  []int       `json:"team_scores"`
}

// Clone returns a deep copy of the state. Redaction and AI lookahead
// operate on clones only; the canonical snapshot is never aliased.
func (st *RoundState) Clone() *RoundState {
	out := *st
	out.Players = append([]Player{}, st.Players...)
	out.Hands = CopyHands(st.Hands)
	out.HandCounts = copyInts(st.HandCounts)
	out.Deck = CopyCards(st.Deck)
	out.Blackjack = st.Blackjack.clone()
	out.Bridge = st.Bridge.clone()
	out.Canasta = st.Canasta.clone()
	out.Cribbage = st.Cribbage.clone()
	out.Hearts = st.Hearts.clone()
	out.Pinochle = st.Pinochle.clone()
	return &out
}

func (b *BlackjackState) clone() *BlackjackState {
	if b == nil {
		return nil
	}
	out := *b
	out.DealerHand = CopyCards(b.DealerHand)
	out.Bets = copyInts(b.Bets)
	out.Status = copyStrings(b.Status)
	out.Results = copyStrings(b.Results)
	out.Payouts = copyInts(b.Payouts)
	return &out
}

func (b *BridgeState) clone() *BridgeState {
	if b == nil {
		return nil
	}
	out := *b
	out.BiddingHistory = append([]BidRecord{}, b.BiddingHistory...)
	out.Trick = copyTrick(b.Trick)
	return &out
}

func (c *CanastaState) clone() *CanastaState {
	if c == nil {
		return nil
	}
	out := *c
	out.Melds = make([][]Meld, len(c.Melds))
	for i, ms := range c.Melds {
		out.Melds[i] = make([]Meld, len(ms))
		for j, m := range ms {
			out.Melds[i][j] = Meld{Rank: m.Rank, Cards: CopyCards(m.Cards)}
		}
	}
	out.DiscardPile = CopyCards(c.DiscardPile)
	out.HandScores = copyInts(c.HandScores)
	out.TotalScores = copyInts(c.TotalScores)
	out.TeamScores = copyInts(c.TeamScores)
	return &out
}

func (c *CribbageState) clone() *CribbageState {
	if c == nil {
		return nil
	}
	out := *c
	out.Crib = CopyCards(c.Crib)
	if c.Starter != nil {
		s := *c.Starter
		out.Starter = &s
	}
	out.PegPile = copyTrick(c.PegPile)
	out.PegHands = CopyHands(c.PegHands)
	out.PegCounts = copyInts(c.PegCounts)
	out.GoCalled = copyBools(c.GoCalled)
	out.Discards = copyStringLists(c.Discards)
	out.Scores = copyInts(c.Scores)
	return &out
}

func (h *HeartsState) clone() *HeartsState {
	if h == nil {
		return nil
	}
	out := *h
	out.PassSelections = copyStringLists(h.PassSelections)
	out.PassesComplete = copyBools(h.PassesComplete)
	out.Trick = copyTrick(h.Trick)
	out.TricksTaken = copyInts(h.TricksTaken)
	out.HeartsTaken = copyInts(h.HeartsTaken)
	out.RoundScores = copyInts(h.RoundScores)
	out.TotalScores = copyInts(h.TotalScores)
	return &out
}

func (p *PinochleState) clone() *PinochleState {
	if p == nil {
		return nil
	}
	out := *p
	out.Teams = make([][]int, len(p.Teams))
	for i, t := range p.Teams {
		out.Teams[i] = copyInts(t)
	}
	out.Passed = copyBools(p.Passed)
	out.Melds = copyInts(p.Melds)
	out.Trick = copyTrick(p.Trick)
	out.TricksWon = copyInts(p.TricksWon)
	out.Counters = copyInts(p.Counters)
	out.TeamScores = copyInts(p.TeamScores)
	return &out
}

func copyInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append([]int{}, in...)
}

func copyBools(in []bool) []bool {
	if in == nil {
		return nil
	}
	return append([]bool{}, in...)
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func copyStringLists(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, s := range in {
		out[i] = copyStrings(s)
	}
	return out
}

func copyTrick(in []TrickPlay) []TrickPlay {
	if in == nil {
		return nil
	}
	return append([]TrickPlay{}, in...)
}
