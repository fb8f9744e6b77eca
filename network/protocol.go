package network

// Inbound events
const (
	EventLocalJoinRoom  = "local:join-room"
	EventLocalStartGame = "local:start-game"
	EventLocalAnswer    = "local:answer"
	EventLocalReport    = "local:report-question"
	EventLocalLeave     = "local:player-leave"
	EventOnlineJoinRoom = "online:join-room"
	EventGetGameInfo    = "get:game-info"
)

// Outbound events
const (
	EventLocalPlayersReady  = "local:players-ready"
	EventLocalGameStarted   = "local:game-started"
	EventLocalNextRound     = "local:next-round"
	EventLocalUpdateScore   = "local:update-score"
	EventLocalEndGame       = "local:end-game"
	EventOnlinePlayerJoined = "online:player-joined"
	EventOnlinePlayersReady = "online:players-ready"
	EventGameInfo           = "response:game-info"
)

// Error events, sent to the originating connection only
const (
	EventLocalErrorJoin  = "local:error_join-room"
	EventLocalErrorStart = "local:error_start-game"
	EventLocalError      = "local:error"
	EventOnlineErrorJoin = "online:error_join-room"
)
