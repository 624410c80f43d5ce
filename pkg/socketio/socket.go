package socketio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeTimeout = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongTimeout = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongTimeout.
	pingTimeout = (pongTimeout * 9) / 10

	maxMessageSize = 4096
)

// Socket wraps one websocket connection with a reader and a writer pump.
// Emit never blocks past the socket's lifetime: once the socket is done it
// reports false and the frame is dropped.
type Socket[T any] struct {
	ID             string
	WriteTimeout   time.Duration
	PingTimeout    time.Duration
	PongTimeout    time.Duration
	MaxMessageSize int64

	log     *zap.Logger
	conn    *websocket.Conn
	done    chan struct{}
	quit    sync.Once
	wg      sync.WaitGroup
	readCh  chan T
	writeCh chan any
}

func NewSocket[T any](conn *websocket.Conn, log *zap.Logger) (*Socket[T], func()) {
	if log == nil {
		log = zap.NewNop()
	}

	socket := &Socket[T]{
		ID:             uuid.New().String(),
		WriteTimeout:   writeTimeout,
		PongTimeout:    pongTimeout,
		PingTimeout:    pingTimeout,
		MaxMessageSize: maxMessageSize,

		log:     log,
		conn:    conn,
		done:    make(chan struct{}),
		readCh:  make(chan T),
		writeCh: make(chan any),
	}

	socket.wg.Add(1)
	go func() {
		defer socket.wg.Done()

		socket.writer()
	}()

	socket.wg.Add(1)
	go func() {
		defer socket.wg.Done()

		socket.reader()
	}()

	return socket, socket.close
}

func (s *Socket[T]) Emit(msg T) bool {
	select {
	case <-s.done:
		return false
	case s.writeCh <- msg:
		return true
	}
}

func (s *Socket[T]) EmitAny(msg any) bool {
	select {
	case <-s.done:
		return false
	case s.writeCh <- msg:
		return true
	}
}

func (s *Socket[T]) Listen() <-chan T {
	return s.readCh
}

func (s *Socket[T]) close() {
	s.quit.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.conn.Close()
	})
}

func (s *Socket[T]) writer() {
	pinger := time.NewTicker(s.PingTimeout)
	defer pinger.Stop()

	for {
		select {
		case <-s.done:
			return
		case msg, open := <-s.writeCh:
			if !open {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			_ = s.conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()))

				return
			}

		case <-pinger.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))

			if err := s.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func (s *Socket[T]) reader() {
	// Closing readCh is what ends the caller's Listen loop: without it an
	// abrupt peer disconnect would leave the session goroutine ranging
	// forever and the socket registered.
	defer close(s.readCh)

	s.conn.SetReadLimit(s.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.PongTimeout))
	})

	for {
		var msg T
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("socket: read", zap.String("socket_id", s.ID), zap.Error(err))
			}

			return
		}

		select {
		case <-s.done:
			return
		case s.readCh <- msg:
		}
	}
}
