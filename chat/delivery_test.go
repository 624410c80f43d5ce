package chat

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/pkg/socketio"
	"github.com/hnh-zeal/ChatApp-Backend/presence"
	"github.com/hnh-zeal/ChatApp-Backend/usecase"
)

func TestPushToAbsentUserIsNoOp(t *testing.T) {
	log := zap.NewNop()
	io := socketio.NewIO[Frame](log)
	registry := presence.NewMemory()

	delivery, closeDelivery := NewDelivery(io, registry, nil, "", log)
	defer closeDelivery()

	// Nobody registered: nothing to deliver, nothing to report.
	delivery.Push(context.Background(), "ghost", "new_message", usecase.Notice{Message: "hi"})
}

func TestPushToDeadSessionIsDropped(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()
	io := socketio.NewIO[Frame](log)
	registry := presence.NewMemory()

	delivery, closeDelivery := NewDelivery(io, registry, nil, "", log)
	defer closeDelivery()

	// The registry still resolves the session, but the socket is gone and
	// there is no bridge: the push drops silently.
	if err := registry.Register(ctx, "user-1", "sess-gone"); err != nil {
		t.Fatalf("register: %v", err)
	}
	delivery.Push(ctx, "user-1", "new_message", usecase.Notice{Message: "hi"})

	if io.Has("sess-gone") {
		t.Fatal("no socket should exist for the dead session")
	}
}

func TestPushUnmarshalablePayloadIsDropped(t *testing.T) {
	log := zap.NewNop()
	io := socketio.NewIO[Frame](log)
	registry := presence.NewMemory()

	delivery, closeDelivery := NewDelivery(io, registry, nil, "", log)
	defer closeDelivery()

	delivery.Push(context.Background(), "user-1", "new_message", make(chan int))
}
