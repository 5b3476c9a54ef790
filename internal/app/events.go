package app

import "cardroom/internal/domain"

// EventKind tags an outbound event.
type EventKind string

const (
	EventRoundStarted EventKind = "round_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventMoveApplied  EventKind = "move_applied"
	EventBotMoved     EventKind = "bot_moved"
	EventRoundScored  EventKind = "round_scored"
	EventGameEnded    EventKind = "game_ended"
)

// Event is one outbound notification. Recipients lists the seats it is
// addressed to; nil means every seat.
type Event struct {
	Kind       EventKind `json:"kind"`
	Payload    any       `json:"payload,omitempty"`
	Recipients []int     `json:"-"`
}

// RoundStartedPayload announces a fresh deal.
type RoundStartedPayload struct {
	RoundID     string `json:"round_id"`
	GameID      string `json:"game_id"`
	RoundNumber int    `json:"round_number"`
	Phase       string `json:"phase"`
}

// HandDealtPayload carries one seat's redacted view of the new round.
type HandDealtPayload struct {
	Seat  int                `json:"seat"`
	State *domain.RoundState `json:"state"`
}

// MovePayload reports an accepted move and the phase it left behind.
type MovePayload struct {
	Seat  int         `json:"seat"`
	Move  domain.Move `json:"move"`
	Phase string      `json:"phase"`
}

// ScorePayload reports a terminal sub-phase was reached.
type ScorePayload struct {
	Phase       string `json:"phase"`
	RoundNumber int    `json:"round_number"`
}

func broadcast(kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}

func to(seat int, kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload, Recipients: []int{seat}}
}
