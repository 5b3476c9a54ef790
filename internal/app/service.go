// Package app drives rounds through the engine contract: start, submit
// moves transactionally, and run bot seats to quiescence. The caller
// serializes access per round; the service holds no locks.
package app

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"cardroom/internal/bot"
	"cardroom/internal/config"
	"cardroom/internal/domain"
	"cardroom/internal/domain/games"
)

// botMoveCap bounds one bot-driving pass so a stuck engine cannot
// spin. A full canasta hand played by bots runs several hundred moves.
const botMoveCap = 1000

// Round is one live round of a game.
type Round struct {
	ID     string
	GameID string
	Engine games.Engine
	State  *domain.RoundState
}

// Service is the use-case layer over the engines.
type Service struct {
	rng        *rand.Rand
	rules      config.Rules
	difficulty string
}

// NewService builds a service around an injected randomness source.
// Pass nil for a time-seeded default.
func NewService(rng *rand.Rand, rules config.Rules) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, rules: rules, difficulty: bot.DifficultyBeginner}
}

// SetBotDifficulty switches the strategy gating for computer seats.
func (s *Service) SetBotDifficulty(d string) { s.difficulty = d }

// StartRound initializes and deals a new round of the given game.
func (s *Service) StartRound(gameID string, players []domain.Player) (*Round, []Event, error) {
	engine, ok := games.Get(gameID)
	if !ok {
		return nil, nil, domain.InvalidMove("unknown game: " + gameID)
	}

	info := engine.Info()
	if len(players) < info.MinPlayers || len(players) > info.MaxPlayers {
		return nil, nil, domain.InvalidMove("wrong player count for " + gameID)
	}

	st := engine.InitState(players, s.rules)
	if err := engine.DealOrSetup(st, s.rng); err != nil {
		return nil, nil, err
	}

	r := &Round{
		ID:     uuid.NewString(),
		GameID: gameID,
		Engine: engine,
		State:  st,
	}

	events := s.dealEvents(r)
	events = append(events, s.runBots(r)...)
	return r, events, nil
}

// SubmitMove is the transactional attempt: validate, then apply and
// advance only on success, then let bot seats act. A rejected move
// leaves the state untouched.
func (s *Service) SubmitMove(r *Round, seat int, mv domain.Move) ([]Event, error) {
	if r.State.GameOver {
		return nil, domain.InvalidPhase("the game is over")
	}
	if seat < 0 || seat >= r.State.SeatCount() {
		return nil, domain.InvalidMove("no such seat")
	}

	if err := r.Engine.ValidateMove(r.State, seat, mv); err != nil {
		return nil, err
	}
	if err := r.Engine.ApplyMove(r.State, seat, mv, s.rng); err != nil {
		return nil, err
	}
	r.Engine.AdvanceTurn(r.State)

	events := []Event{broadcast(EventMoveApplied, MovePayload{Seat: seat, Move: publicMove(mv), Phase: r.State.Phase})}
	events = append(events, s.afterMove(r)...)
	events = append(events, s.runBots(r)...)
	return events, nil
}

// NextRound re-deals after a terminal sub-phase.
func (s *Service) NextRound(r *Round) ([]Event, error) {
	if r.State.GameOver {
		return nil, domain.InvalidPhase("the game is over")
	}
	if !terminalPhase(r.State.Phase) {
		return nil, domain.InvalidPhase("the round is still in progress")
	}
	if err := r.Engine.DealOrSetup(r.State, s.rng); err != nil {
		return nil, err
	}
	events := s.dealEvents(r)
	events = append(events, s.runBots(r)...)
	return events, nil
}

// PublicState returns the viewer's redacted snapshot.
func (s *Service) PublicState(r *Round, viewer int) *domain.RoundState {
	return r.Engine.PublicState(r.State, viewer)
}

// ValidMoves returns the seat's legal moves for the current phase.
func (s *Service) ValidMoves(r *Round, seat int) []domain.Move {
	return r.Engine.ValidMoves(r.State, seat)
}

// runBots plays every pending computer seat until a human is up, the
// round reaches a terminal sub-phase, or the session ends. Each bot
// move goes through the same validate-then-apply gate as a human move.
func (s *Service) runBots(r *Round) []Event {
	var events []Event

	for moves := 0; moves < botMoveCap; moves++ {
		if r.State.GameOver || terminalPhase(r.State.Phase) {
			return events
		}

		seat, ok := s.nextBotSeat(r)
		if !ok {
			return events
		}

		mv, ok := r.Engine.AIMove(r.State, seat, s.difficulty, s.rng)
		if !ok {
			return events
		}
		if err := r.Engine.ValidateMove(r.State, seat, mv); err != nil {
			return events
		}
		if err := r.Engine.ApplyMove(r.State, seat, mv, s.rng); err != nil {
			return events
		}
		r.Engine.AdvanceTurn(r.State)

		events = append(events, broadcast(EventBotMoved, MovePayload{Seat: seat, Move: publicMove(mv), Phase: r.State.Phase}))
		events = append(events, s.afterMove(r)...)
	}
	return events
}

func (s *Service) nextBotSeat(r *Round) (int, bool) {
	for _, seat := range r.Engine.PendingSeats(r.State) {
		if r.State.Players[seat].IsAI {
			return seat, true
		}
	}
	return 0, false
}

// afterMove reports terminal sub-phases and checks the end condition.
func (s *Service) afterMove(r *Round) []Event {
	if !terminalPhase(r.State.Phase) {
		return nil
	}

	events := []Event{broadcast(EventRoundScored, ScorePayload{
		Phase:       r.State.Phase,
		RoundNumber: r.State.RoundNumber,
	})}

	if end := r.Engine.CheckEnd(r.State); end.Ended {
		r.State.GameOver = true
		events = append(events, broadcast(EventGameEnded, end))
	}
	return events
}

func (s *Service) dealEvents(r *Round) []Event {
	events := []Event{broadcast(EventRoundStarted, RoundStartedPayload{
		RoundID:     r.ID,
		GameID:      r.GameID,
		RoundNumber: r.State.RoundNumber,
		Phase:       r.State.Phase,
	})}
	for seat := range r.State.Players {
		events = append(events, to(seat, EventHandDealt, HandDealtPayload{
			Seat:  seat,
			State: r.Engine.PublicState(r.State, seat),
		}))
	}
	return events
}

// publicMove strips hidden card selections before a move is announced:
// hearts passes and crib discards stay secret until the engine reveals
// their effect. Canasta melds and discards land face up, so their card
// lists stay.
func publicMove(mv domain.Move) domain.Move {
	switch mv.Action {
	case domain.ActionPassCards, domain.ActionDiscard:
		mv.CardIDs = nil
	}
	return mv
}

func terminalPhase(phase string) bool {
	switch phase {
	case domain.PhasePayout, domain.PhaseHandEnd, domain.PhaseRoundEnd:
		return true
	}
	return false
}
