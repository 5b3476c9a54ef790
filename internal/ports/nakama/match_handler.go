package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"cardroom/internal/app"
	"cardroom/internal/config"
	"cardroom/internal/domain"
	"cardroom/internal/domain/games"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Label is the match label advertised for quick-match queries.
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for one table.
type MatchState struct {
	GameID    string                      `json:"game_id"`
	Seats     []string                    `json:"seats"` // user ids, "" means empty
	OwnerSeat int                         `json:"owner_seat"`
	Presences map[string]runtime.Presence `json:"-"`
	App       *app.Service                `json:"-"`
	Round     *app.Round                  `json:"-"` // nil while in the lobby
	RoundSeat []string                    `json:"-"` // round seat -> user id ("" for a bot seat)
}

// GetOpenSeatsCount reports how many lobby seats are still free.
func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

// GetOccupiedSeatCount reports how many lobby seats are taken.
func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) seatOf(userID string) int {
	for i, uid := range ms.Seats {
		if uid == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) roundSeatOf(userID string) int {
	for i, uid := range ms.RoundSeat {
		if uid == userID {
			return i
		}
	}
	return -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit boots a table for the game named in the creation params.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	gameID, _ := params["game"].(string)
	if gameID == "" {
		gameID = "hearts"
	}
	engine, ok := games.Get(gameID)
	if !ok {
		logger.Error("MatchInit: unknown game %q", gameID)
		return nil, 0, ""
	}
	info := engine.Info()

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	rules := config.Load(env["cardroom_rules_path"])

	svc := app.NewService(nil, rules)
	if d := env["cardroom_bot_difficulty"]; d != "" {
		svc.SetBotDifficulty(d)
	}

	state := &MatchState{
		GameID:    gameID,
		Seats:     make([]string, info.MaxPlayers),
		OwnerSeat: -1,
		Presences: make(map[string]runtime.Presence),
		App:       svc,
	}

	tickRate := 1
	return state, tickRate, buildLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow rejoin any time; new joins only while the table is in the lobby.
	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.Round != nil {
		return state, false, "match_in_progress"
	}
	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "match_full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		matchState.Presences[uid] = p

		if matchState.seatOf(uid) >= 0 {
			continue // rejoin, presence refreshed above
		}

		assigned := -1
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = uid
				assigned = i
				break
			}
		}
		if assigned < 0 {
			logger.Warn("MatchJoin: user %s joined but no seat was available", uid)
			continue
		}

		if matchState.OwnerSeat < 0 {
			matchState.OwnerSeat = assigned
		}

		evt, _ := json.Marshal(map[string]any{
			"user_id": uid,
			"seat":    assigned,
			"owner":   assigned == matchState.OwnerSeat,
		})
		_ = dispatcher.BroadcastMessage(OpPlayerJoined, evt, nil, nil, true)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(matchState.Presences, uid)

		// Mid-round leavers keep their round seat so the game can finish;
		// they may rejoin. Lobby leavers free the seat.
		if matchState.Round == nil {
			if seat := matchState.seatOf(uid); seat >= 0 {
				matchState.Seats[seat] = ""
			}
		}

		evt, _ := json.Marshal(map[string]any{"user_id": uid})
		_ = dispatcher.BroadcastMessage(OpPlayerLeft, evt, nil, nil, true)
	}

	// Owner reassignment to the first remaining connected seat.
	if matchState.OwnerSeat >= 0 {
		if _, connected := matchState.Presences[matchState.Seats[matchState.OwnerSeat]]; !connected {
			matchState.OwnerSeat = -1
			for i, uid := range matchState.Seats {
				if _, ok := matchState.Presences[uid]; ok && uid != "" {
					matchState.OwnerSeat = i
					break
				}
			}
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: terminating match with no connected players")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartRound:
			mh.handleStartRound(matchState, dispatcher, logger, msg)
		case OpSubmitMove:
			mh.handleSubmitMove(matchState, dispatcher, logger, msg)
		case OpNextRound:
			mh.handleNextRound(matchState, dispatcher, logger, msg)
		case OpGetState:
			mh.handleGetState(matchState, dispatcher, logger, msg)
		case OpGetValidMoves:
			mh.handleGetValidMoves(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: match terminated")
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

/* ---- message handlers ---- */

// startRoundRequest lets the owner ask for bot seats beyond the humans
// present, up to the game's seat range.
type startRoundRequest struct {
	BotSeats int `json:"bot_seats"`
}

func (mh *matchHandler) handleStartRound(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Round != nil {
		mh.sendError(state, dispatcher, logger, senderID, "a round is already running")
		return
	}
	if state.seatOf(senderID) != state.OwnerSeat {
		logger.Warn("StartRound: user %s tried to start but is not owner", senderID)
		return
	}

	var req startRoundRequest
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(state, dispatcher, logger, senderID, "bad start payload")
			return
		}
	}

	engine, _ := games.Get(state.GameID)
	info := engine.Info()

	// Humans take the low round seats in lobby order, bots fill the rest.
	var players []domain.Player
	var roundSeat []string
	for _, uid := range state.Seats {
		if uid == "" {
			continue
		}
		name := uid
		if p, ok := state.Presences[uid]; ok {
			name = p.GetUsername()
		}
		players = append(players, domain.Player{Name: name})
		roundSeat = append(roundSeat, uid)
	}
	want := len(players) + req.BotSeats
	if want < info.MinPlayers {
		want = info.MinPlayers
	}
	if want > info.MaxPlayers {
		want = info.MaxPlayers
	}
	for i := len(players); i < want; i++ {
		players = append(players, domain.Player{Name: "bot_" + strconv.Itoa(i), IsAI: true})
		roundSeat = append(roundSeat, "")
	}
	if len(players) < info.MinPlayers {
		mh.sendError(state, dispatcher, logger, senderID, "not enough players for "+state.GameID)
		return
	}

	round, events, err := state.App.StartRound(state.GameID, players)
	if err != nil {
		logger.Error("StartRound: failed to start %s: %v", state.GameID, err)
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}

	state.Round = round
	state.RoundSeat = roundSeat
	mh.updateLabel(state, dispatcher, logger)

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	logger.Info("StartRound: %s round %s started with %d players", state.GameID, round.ID, len(players))
}

func (mh *matchHandler) handleSubmitMove(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Round == nil {
		mh.sendError(state, dispatcher, logger, senderID, "no round in progress")
		return
	}
	seat := state.roundSeatOf(senderID)
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, "you are not seated in this round")
		return
	}

	var mv domain.Move
	if err := json.Unmarshal(msg.GetData(), &mv); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, "bad move payload")
		return
	}

	events, err := state.App.SubmitMove(state.Round, seat, mv)
	if err != nil {
		logger.Warn("SubmitMove: user %s (seat %d) rejected: %v", senderID, seat, err)
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleNextRound(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Round == nil {
		mh.sendError(state, dispatcher, logger, senderID, "no round in progress")
		return
	}
	if state.seatOf(senderID) != state.OwnerSeat {
		logger.Warn("NextRound: user %s tried to redeal but is not owner", senderID)
		return
	}

	events, err := state.App.NextRound(state.Round)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleGetState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Round == nil {
		mh.sendError(state, dispatcher, logger, senderID, "no round in progress")
		return
	}
	seat := state.roundSeatOf(senderID)
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, "you are not seated in this round")
		return
	}

	view := state.App.PublicState(state.Round, seat)
	bytes, err := json.Marshal(view)
	if err != nil {
		logger.Error("GetState: marshal failed: %v", err)
		return
	}
	mh.sendTo(state, dispatcher, logger, senderID, OpStateView, bytes)
}

func (mh *matchHandler) handleGetValidMoves(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Round == nil {
		mh.sendError(state, dispatcher, logger, senderID, "no round in progress")
		return
	}
	seat := state.roundSeatOf(senderID)
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, "you are not seated in this round")
		return
	}

	moves := state.App.ValidMoves(state.Round, seat)
	bytes, _ := json.Marshal(map[string]any{"seat": seat, "moves": moves})
	mh.sendTo(state, dispatcher, logger, senderID, OpValidMoves, bytes)
}

/* ---- event dispatch ---- */

// broadcastEvent maps an app event to its opcode and sends it to the
// event's recipients, or to everyone when no recipients are named.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	switch ev.Kind {
	case app.EventRoundStarted:
		opCode = OpRoundStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventMoveApplied:
		opCode = OpMoveApplied
	case app.EventBotMoved:
		opCode = OpBotMoved
	case app.EventRoundScored:
		opCode = OpRoundScored
	case app.EventGameEnded:
		opCode = OpGameEnded
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, seat := range ev.Recipients {
			if seat < 0 || seat >= len(state.RoundSeat) {
				continue
			}
			if p, ok := state.Presences[state.RoundSeat[seat]]; ok {
				recipients = append(recipients, p)
			}
		}
		// Addressed events with no connected recipient (bot seats) must
		// not leak to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	_ = dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)

	// The session outcome drops the table back to the lobby.
	if ev.Kind == app.EventGameEnded {
		state.Round = nil
		state.RoundSeat = nil
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, message string) {
	bytes, _ := json.Marshal(map[string]any{"message": message})
	mh.sendTo(state, dispatcher, logger, userID, OpGameError, bytes)
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload []byte) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send opcode %d to %s: presence not found", opCode, userID)
		return
	}
	_ = dispatcher.BroadcastMessage(opCode, payload, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(state)); err != nil {
		logger.Error("UpdateLabel: failed to update: %v", err)
	}
}

func buildLabel(state *MatchState) string {
	phase := "lobby"
	open := state.GetOpenSeatsCount()
	if state.Round != nil {
		phase = state.Round.State.Phase
		open = 0
	}
	b, _ := json.Marshal(Label{Open: open, Game: state.GameID, Phase: phase})
	return string(b)
}
