package domain

// Move actions. The set is closed; every engine validates the action
// against its current phase before reading any other field.
const (
	// blackjack
	ActionPlaceBet = "place_bet"
	ActionHit      = "hit"
	ActionStand    = "stand"
	ActionDouble   = "double"
	ActionSplit    = "split"

	// auctions (bridge, pinochle)
	ActionBid         = "bid"
	ActionPass        = "pass"
	ActionDoubleBid   = "double_bid"
	ActionRedouble    = "redouble"
	ActionSelectTrump = "select_trump"

	// trick play and pegging
	ActionPlay = "play"
	ActionGo   = "go"

	// hearts passing
	ActionPassCards = "pass_cards"

	// cribbage crib
	ActionDiscard = "discard"

	// canasta
	ActionDrawDeck   = "draw_deck"
	ActionDrawPile   = "draw_pile"
	ActionCreateMeld = "create_meld"
	ActionAddToMeld  = "add_to_meld"
	ActionSkipMeld   = "skip_meld"
)

// Move is the closed move union. Action selects which optional fields
// are meaningful; engines ignore the rest.
type Move struct {
	Action  string   `json:"action"`
	Amount  int      `json:"amount,omitempty"`   // place_bet
	CardID  string   `json:"card_id,omitempty"`  // play, add_to_meld
	CardIDs []string `json:"card_ids,omitempty"` // pass_cards, discard, create_meld
	Level   int      `json:"level,omitempty"`    // bridge bid level 1..7
	Suit    Suit     `json:"suit,omitempty"`     // bridge bid suit, pinochle trump
	Bid     int      `json:"bid,omitempty"`      // pinochle bid amount
}
