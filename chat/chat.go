// Package chat is the connection-addressed event broker: it owns the
// per-connection lifecycle, routes inbound events to the domain workflows,
// and addresses outbound events to the one live session the presence
// registry resolves, never broadcasting.
package chat

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/socketio"
	"github.com/hnh-zeal/ChatApp-Backend/presence"
	"github.com/hnh-zeal/ChatApp-Backend/usecase"
)

type authorizer interface {
	Verify(token string) (string, error)
}

type frameEmitter interface {
	Emit(Frame) bool
}

// Session is one live, authenticated connection.
type Session struct {
	ID     string
	UserID string

	socket frameEmitter
}

type Chat struct {
	io       *socketio.IO[Frame]
	registry presence.Registry
	authz    authorizer
	router   *Router
	log      *zap.Logger

	users   domain.UserStore
	friends *usecase.FriendWorkflow
	relay   *usecase.ConversationRelay
	calls   *usecase.CallSignaling
}

type Options struct {
	IO       *socketio.IO[Frame]
	Registry presence.Registry
	Authz    authorizer
	Users    domain.UserStore
	Log      *zap.Logger
}

func New(opts Options, friends *usecase.FriendWorkflow, relay *usecase.ConversationRelay, calls *usecase.CallSignaling) *Chat {
	c := &Chat{
		io:       opts.IO,
		registry: opts.Registry,
		authz:    opts.Authz,
		router:   NewRouter(),
		log:      opts.Log,
		users:    opts.Users,
		friends:  friends,
		relay:    relay,
		calls:    calls,
	}

	c.routes()

	return c
}

// ServeWS authenticates the handshake, registers presence before any event
// is processed, then drives the session's event loop. Each inbound event is
// handled in its own goroutine: the broker promises no ordering across
// events, the workflows serialize where it matters.
func (c *Chat) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	userID, err := c.authz.Verify(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)

		return
	}

	socket, err, flush := c.io.ServeWS(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	defer flush()

	ctx := context.Background()

	sess := &Session{
		ID:     socket.ID,
		UserID: userID,
		socket: socket,
	}

	if err := c.registry.Register(ctx, userID, socket.ID); err != nil {
		c.log.Error("presence register", zap.String("user_id", userID), zap.Error(err))
	}
	if err := c.users.SetStatus(ctx, userID, domain.StatusOnline); err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.log.Warn("set status online", zap.String("user_id", userID), zap.Error(err))
	}

	c.log.Info("session connected",
		zap.String("user_id", userID),
		zap.String("session_id", socket.ID))

	for frame := range socket.Listen() {
		frame := frame

		// A transport-level disconnect does not cancel work already
		// dispatched; a late push simply finds no resolvable target.
		go c.dispatch(context.Background(), sess, frame)
	}

	// The transport dropping is not a presence signal: only the explicit
	// end event clears the registry.
	c.log.Info("session closed",
		zap.String("user_id", userID),
		zap.String("session_id", socket.ID))
}

func (c *Chat) dispatch(ctx context.Context, sess *Session, frame Frame) {
	err := c.router.Dispatch(ctx, sess, frame)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.reply(sess, replyError, errorReply{Code: "not_found", Message: err.Error()})
	case isBadPayload(err):
		c.reply(sess, replyError, errorReply{Code: "bad_payload", Message: err.Error()})
	default:
		// Storage failure: log it, and still tell the originating session
		// the operation did not complete.
		c.log.Error("event failed",
			zap.String("event", frame.Event),
			zap.String("user_id", sess.UserID),
			zap.Error(err))
		c.reply(sess, replyError, errorReply{Code: "internal", Message: "operation did not complete"})
	}
}

// reply delivers a direct reply to the originating session.
func (c *Chat) reply(sess *Session, event string, payload any) {
	frame, err := newFrame(event, payload)
	if err != nil {
		c.log.Error("reply marshal", zap.String("event", event), zap.Error(err))

		return
	}

	sess.socket.Emit(frame)
}
