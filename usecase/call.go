package usecase

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/keymutex"
)

// CallSignaling coordinates a call attempt's ring/accept/deny/busy/missed
// lifecycle between exactly two participants. Every transition resolves
// the call by its unordered participant pair, assuming at most one ongoing
// call per pair at a time; the conditional update in the store makes the
// terminal verdict single-shot.
type CallSignaling struct {
	calls  domain.CallStore
	users  domain.UserStore
	pairs  *keymutex.KeyMutex
	pusher Pusher
	log    *zap.Logger
}

func NewCallSignaling(calls domain.CallStore, users domain.UserStore, pusher Pusher, log *zap.Logger) *CallSignaling {
	return &CallSignaling{
		calls:  calls,
		users:  users,
		pairs:  keymutex.New(),
		pusher: pusher,
		log:    log,
	}
}

// CallNotification is the payload pushed to the callee on start. The shape
// follows what the call SDK on the client expects.
type CallNotification struct {
	From     domain.Profile `json:"from"`
	RoomID   string         `json:"roomID"`
	StreamID string         `json:"streamID"`
	UserID   string         `json:"userID"`
	UserName string         `json:"userName"`
}

// CallUpdate is the payload for every terminal-transition push.
type CallUpdate struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func notificationEvent(kind domain.CallKind) string { return string(kind) + "_call_notification" }
func missedEvent(kind domain.CallKind) string       { return string(kind) + "_call_missed" }
func acceptedEvent(kind domain.CallKind) string     { return string(kind) + "_call_accepted" }
func deniedEvent(kind domain.CallKind) string       { return string(kind) + "_call_denied" }
func busyEvent(kind domain.CallKind) string         { return "on_another_" + string(kind) + "_call" }

// Start creates the call record and rings the callee. If an ongoing,
// unresolved call already exists for the pair the existing record is
// reused: the caller side is expected not to run two concurrent attempts
// against the same peer, and start must not mint a second record when a
// duplicate event slips through.
func (c *CallSignaling) Start(ctx context.Context, kind domain.CallKind, from, to, roomID string) (*domain.Call, error) {
	pair := string(kind) + "|" + domain.PairKey(from, to)
	c.pairs.Lock(pair)
	defer c.pairs.Unlock(pair)

	call, err := c.calls.FindOngoing(ctx, kind, from, to)
	if errors.Is(err, domain.ErrNotFound) {
		call = &domain.Call{
			Kind:   kind,
			From:   from,
			To:     to,
			RoomID: roomID,
		}
		if err := c.calls.Create(ctx, call); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	caller, err := c.users.FindByID(ctx, from)
	if err != nil {
		return nil, err
	}

	c.pusher.Push(ctx, to, notificationEvent(kind), CallNotification{
		From:     caller.Profile(),
		RoomID:   call.RoomID,
		StreamID: from,
		UserID:   to,
		UserName: to,
	})

	return call, nil
}

// NotPicked marks the attempt Missed and Ended, informing the callee. The
// ring timeout is decided client-side.
func (c *CallSignaling) NotPicked(ctx context.Context, kind domain.CallKind, to, from string) (*domain.Call, error) {
	call, err := c.calls.Resolve(ctx, kind, to, from, domain.VerdictMissed, true)
	if err != nil {
		return nil, err
	}

	c.pusher.Push(ctx, to, missedEvent(kind), CallUpdate{From: from, To: to})

	return call, nil
}

// Accepted sets the verdict while the call itself continues: status stays
// Ongoing. The caller is informed.
func (c *CallSignaling) Accepted(ctx context.Context, kind domain.CallKind, to, from string) (*domain.Call, error) {
	call, err := c.calls.Resolve(ctx, kind, to, from, domain.VerdictAccepted, false)
	if err != nil {
		return nil, err
	}

	c.pusher.Push(ctx, from, acceptedEvent(kind), CallUpdate{From: from, To: to})

	return call, nil
}

func (c *CallSignaling) Denied(ctx context.Context, kind domain.CallKind, to, from string) (*domain.Call, error) {
	call, err := c.calls.Resolve(ctx, kind, to, from, domain.VerdictDenied, true)
	if err != nil {
		return nil, err
	}

	c.pusher.Push(ctx, from, deniedEvent(kind), CallUpdate{From: from, To: to})

	return call, nil
}

// Busy ends the attempt because the callee is on another call.
func (c *CallSignaling) Busy(ctx context.Context, kind domain.CallKind, to, from string) (*domain.Call, error) {
	call, err := c.calls.Resolve(ctx, kind, to, from, domain.VerdictBusy, true)
	if err != nil {
		return nil, err
	}

	c.pusher.Push(ctx, from, busyEvent(kind), CallUpdate{From: from, To: to})

	return call, nil
}

// CallLog is one entry of the call history projection.
type CallLog struct {
	ID       string          `json:"id"`
	Kind     domain.CallKind `json:"kind"`
	Img      string          `json:"img,omitempty"`
	Name     string          `json:"name"`
	Online   bool            `json:"online"`
	Incoming bool            `json:"incoming"`
	Missed   bool            `json:"missed"`
}

// Logs flattens the user's audio and video call history. A call counts as
// missed unless its verdict ended up Accepted.
func (c *CallSignaling) Logs(ctx context.Context, userID string) ([]CallLog, error) {
	logs := []CallLog{}

	for _, kind := range []domain.CallKind{domain.CallAudio, domain.CallVideo} {
		calls, err := c.calls.FindByParticipant(ctx, kind, userID)
		if err != nil {
			return nil, err
		}

		for _, call := range calls {
			otherID := call.To
			incoming := false
			if call.To == userID {
				otherID = call.From
				incoming = true
			}

			other, err := c.users.FindByID(ctx, otherID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}

				return nil, err
			}

			logs = append(logs, CallLog{
				ID:       call.ID,
				Kind:     call.Kind,
				Img:      other.Avatar,
				Name:     other.FirstName,
				Online:   other.Status == domain.StatusOnline,
				Incoming: incoming,
				Missed:   call.Verdict != domain.VerdictAccepted,
			})
		}
	}

	return logs, nil
}
