package chat

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/pkg/socketio"
	"github.com/hnh-zeal/ChatApp-Backend/presence"
)

// Delivery is the push side of the broker: resolve the target user's live
// session through the presence registry and emit to exactly that socket.
// Delivery is fire-and-forget; an unreachable target drops silently.
type Delivery struct {
	io       *socketio.IO[Frame]
	bridge   *socketio.IORedis[remoteFrame]
	registry presence.Registry
	log      *zap.Logger

	done chan struct{}
	quit sync.Once
	wg   sync.WaitGroup
}

// NewDelivery wires local emission, and, when a redis client is given, the
// cross-process bridge: frames for sessions living in another process are
// forwarded over pubsub and delivered by whichever process owns the socket.
func NewDelivery(io *socketio.IO[Frame], registry presence.Registry, rdb *redis.Client, channel string, log *zap.Logger) (*Delivery, func()) {
	d := &Delivery{
		io:       io,
		registry: registry,
		log:      log,
		done:     make(chan struct{}),
	}

	var closeBridge func()
	if rdb != nil {
		if channel == "" {
			channel = "chat"
		}
		d.bridge, closeBridge = socketio.NewIORedis[remoteFrame](channel, rdb, log)
		d.bridgeLoopAsync()
	}

	return d, func() {
		d.quit.Do(func() {
			close(d.done)
		})
		if closeBridge != nil {
			closeBridge()
		}
		d.wg.Wait()
	}
}

// Push implements usecase.Pusher.
func (d *Delivery) Push(ctx context.Context, userID, event string, payload any) {
	frame, err := newFrame(event, payload)
	if err != nil {
		d.log.Error("push marshal", zap.String("event", event), zap.Error(err))

		return
	}

	sessionID, ok, err := d.registry.Resolve(ctx, userID)
	if err != nil {
		d.log.Error("presence resolve", zap.String("user_id", userID), zap.Error(err))

		return
	}
	if !ok {
		// Recipient currently absent: a normal, silent outcome.
		return
	}

	if d.io.Emit(sessionID, frame) {
		return
	}

	if d.bridge != nil {
		if err := d.bridge.Publish(ctx, remoteFrame{
			SessionID: sessionID,
			Event:     event,
			Data:      frame.Data,
		}); err != nil {
			d.log.Warn("bridge publish", zap.String("event", event), zap.Error(err))
		}
	}
}

func (d *Delivery) bridgeLoopAsync() {
	ch := d.bridge.Subscribe()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		for {
			select {
			case <-d.done:
				return
			case rf, ok := <-ch:
				if !ok {
					return
				}
				// Deliver if the session lives here; otherwise another
				// process owns it and will.
				d.io.Emit(rf.SessionID, Frame{Event: rf.Event, Data: rf.Data})
			}
		}
	}()
}
