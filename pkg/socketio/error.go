package socketio

import "github.com/gorilla/websocket"

func NewError(msg string) *SocketError {
	return &SocketError{
		Code:    websocket.ClosePolicyViolation,
		Message: msg,
	}
}

type SocketError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *SocketError) Error() string {
	return s.Message
}

// Error pushes a SocketError frame to the peer without closing the socket.
func (s *Socket[T]) Error(serr *SocketError) bool {
	return s.EmitAny(serr)
}
