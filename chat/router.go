package chat

import (
	"context"
	"encoding/json"
	"sync"
)

// Handler processes one inbound event for one session.
type Handler func(ctx context.Context, sess *Session, data json.RawMessage) error

// Router maps inbound event names to handlers. Registration happens at
// construction time; dispatch is concurrent.
type Router struct {
	rw       sync.RWMutex
	handlers map[string]Handler
}

func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]Handler),
	}
}

// On registers a handler for an event name. The first registration wins.
func (r *Router) On(event string, fn Handler) {
	r.rw.Lock()
	defer r.rw.Unlock()

	if _, exists := r.handlers[event]; exists {
		return
	}
	r.handlers[event] = fn
}

// Dispatch routes a frame to its handler. Unknown events are ignored.
func (r *Router) Dispatch(ctx context.Context, sess *Session, frame Frame) error {
	r.rw.RLock()
	handler, exists := r.handlers[frame.Event]
	r.rw.RUnlock()

	if !exists {
		return nil
	}

	return handler(ctx, sess, frame.Data)
}
