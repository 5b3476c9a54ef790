// Package games implements the six rule engines behind one contract.
// Engines are pure: they mutate only the state value handed to them and
// draw randomness only from the injected source.
package games

import (
	"math/rand"

	"cardroom/internal/config"
	"cardroom/internal/domain"
)

// Info describes a game for the lobby.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	HasTeams    bool   `json:"has_teams"`
	Description string `json:"description"`
}

// Engine is the contract every game implements. ApplyMove trusts that
// ValidateMove just accepted the same move for the same state; it does
// not re-validate.
type Engine interface {
	Info() Info
	InitState(players []domain.Player, rules config.Rules) *domain.RoundState
	DealOrSetup(st *domain.RoundState, rng *rand.Rand) error
	ValidateMove(st *domain.RoundState, seat int, mv domain.Move) error
	ApplyMove(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error
	AdvanceTurn(st *domain.RoundState)
	ValidMoves(st *domain.RoundState, seat int) []domain.Move
	PublicState(st *domain.RoundState, viewer int) *domain.RoundState
	AIMove(st *domain.RoundState, seat int, difficulty string, rng *rand.Rand) (domain.Move, bool)
	PendingSeats(st *domain.RoundState) []int
	CheckEnd(st *domain.RoundState) domain.EndResult
}

// handlerKey addresses one cell of a (phase, action) dispatch table.
type handlerKey struct {
	Phase  string
	Action string
}

// applyFunc is one apply handler. Tables are built per engine so the
// set of accepted (phase, action) pairs is explicit and closed.
type applyFunc func(st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error

// dispatch runs the table handler for the move, or reports the phase
// mismatch the validator would have caught.
func dispatch(table map[handlerKey]applyFunc, st *domain.RoundState, seat int, mv domain.Move, rng *rand.Rand) error {
	h, ok := table[handlerKey{Phase: st.Phase, Action: mv.Action}]
	if !ok {
		return domain.InvalidPhase("no handler for this phase and action")
	}
	return h(st, seat, mv, rng)
}

// redactBase applies the redaction every game shares: the undealt deck
// is dropped and per-seat card counts are published.
func redactBase(st *domain.RoundState) *domain.RoundState {
	pub := st.Clone()
	pub.DeckCount = len(pub.Deck)
	pub.Deck = nil
	pub.HandCounts = domain.HandCounts(st.Hands)
	return pub
}

// hideHands nils every hand except the listed seats. Counts stay
// available through HandCounts.
func hideHands(pub *domain.RoundState, visible ...int) {
	keep := make(map[int]bool, len(visible))
	for _, s := range visible {
		keep[s] = true
	}
	for seat := range pub.Hands {
		if !keep[seat] {
			pub.Hands[seat] = nil
		}
	}
}
