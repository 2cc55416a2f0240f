package domain

// WebSocket message types from displays.
const (
	MsgTypeJoin = "join"
	MsgTypePing = "ping"
)

// WebSocket message types to displays.
const (
	MsgTypeZoneJoined = "zone_joined"
	MsgTypeError      = "error"
	MsgTypePong       = "pong"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseMessage is the base structure for structured WebSocket messages.
// Displays may also send a bare zone name as their join message; the
// handler falls back to that form when a frame is not valid JSON.
type BaseMessage struct {
	Type string `json:"type"`
}

// JoinMessage subscribes the connection to a zone. Joining again replaces
// the previous membership.
type JoinMessage struct {
	Type string `json:"type"`
	Zone string `json:"zone"`
}

// ZoneJoinedMessage acknowledges a join.
type ZoneJoinedMessage struct {
	Type string `json:"type"`
	Zone string `json:"zone"`
}

// ErrorMessage reports a protocol error to a display.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
