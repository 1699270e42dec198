package ws

const (
	// client - server
	MsgRefresh = "refresh"
	MsgPing    = "ping"

	// server - client
	MsgReady   = "ready"
	MsgAccrual = "accrual"
	MsgPong    = "pong"
	MsgError   = "error"
)
