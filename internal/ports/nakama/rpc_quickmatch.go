package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"cardroom/internal/domain/games"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest names the game the client wants a table for.
type QuickMatchRequest struct {
	Game string `json:"game"`
}

// QuickMatchResponse is the payload returned to clients when requesting
// a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcListGames, rpcListGames)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("bad quick_match payload", 3)
		}
	}
	if req.Game == "" {
		req.Game = "hearts"
	}
	if _, ok := games.Get(req.Game); !ok {
		return "", runtime.NewError("unknown game: "+req.Game, 3)
	}

	// Find any open lobby for this game.
	query := "+label.open:>0 +label.game:" + req.Game + " +label.phase:lobby"

	limit := 10
	authoritative := true
	minSize := 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, nil, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create a new table; seat/owner assignment happens in MatchJoin.
	matchID, err := nk.MatchCreate(ctx, MatchNameCardRoom, map[string]interface{}{"game": req.Game})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

func rpcListGames(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	infos := make([]games.Info, 0, len(games.IDs()))
	for _, id := range games.IDs() {
		engine, _ := games.Get(id)
		infos = append(infos, engine.Info())
	}
	b, err := json.Marshal(map[string]any{"games": infos})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
