package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// lobby-capable match for a chosen game.
	RpcQuickMatch = "quick_match"

	// RpcListGames is the Nakama RPC id returning the playable game ids.
	RpcListGames = "list_games"

	// MatchNameCardRoom is the authoritative match handler name registered
	// with Nakama. One handler serves every game; the game id arrives as a
	// match creation parameter.
	MatchNameCardRoom = "cardroom_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartRound    int64 = 1
	OpSubmitMove    int64 = 2
	OpNextRound     int64 = 3
	OpGetState      int64 = 4
	OpGetValidMoves int64 = 5

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpRoundStarted int64 = 103
	OpHandDealt    int64 = 104 // sent privately
	OpMoveApplied  int64 = 105
	OpBotMoved     int64 = 106
	OpRoundScored  int64 = 107
	OpGameEnded    int64 = 108
	OpStateView    int64 = 109 // sent privately
	OpValidMoves   int64 = 110 // sent privately
	OpGameError    int64 = 111 // sent privately
)
