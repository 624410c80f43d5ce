package socketio

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// IO upgrades websocket connections and indexes live sockets by id. It is
// the process-local half of session addressing: callers resolve a session id
// elsewhere and hand it to Emit, which reports false for a dead or unknown
// socket instead of erroring.
type IO[T any] struct {
	websocket.Upgrader
	Log     *zap.Logger
	mu      sync.RWMutex
	sockets map[string]*Socket[T]
}

func NewIO[T any](log *zap.Logger) *IO[T] {
	if log == nil {
		log = zap.NewNop()
	}

	return &IO[T]{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		Log:     log,
		sockets: make(map[string]*Socket[T]),
	}
}

func (io *IO[T]) ServeWS(w http.ResponseWriter, r *http.Request) (*Socket[T], error, func()) {
	ws, err := io.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("io: failed to upgrade websocket connection: %w", err), nil
	}

	socket, _ := NewSocket[T](ws, io.Log)
	io.register(socket)

	return socket, nil, func() {
		io.deregister(socket)
	}
}

func (io *IO[T]) Error(socketID string, err error) bool {
	io.mu.RLock()
	socket, ok := io.sockets[socketID]
	io.mu.RUnlock()

	if !ok {
		return ok
	}

	return socket.Error(NewError(err.Error()))
}

func (io *IO[T]) Emit(socketID string, msg T) bool {
	io.mu.RLock()
	socket, ok := io.sockets[socketID]
	io.mu.RUnlock()

	if !ok {
		return ok
	}

	return socket.Emit(msg)
}

func (io *IO[T]) Has(socketID string) bool {
	io.mu.RLock()
	_, ok := io.sockets[socketID]
	io.mu.RUnlock()

	return ok
}

func (io *IO[T]) Len() int {
	io.mu.RLock()
	defer io.mu.RUnlock()

	return len(io.sockets)
}

func (io *IO[T]) register(socket *Socket[T]) {
	io.mu.Lock()
	io.sockets[socket.ID] = socket
	io.mu.Unlock()
}

func (io *IO[T]) deregister(socket *Socket[T]) {
	io.mu.Lock()

	socket, ok := io.sockets[socket.ID]
	if ok {
		socket.close()
		delete(io.sockets, socket.ID)
	}

	io.mu.Unlock()
}
