package usecase

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/keymutex"
)

// FriendWorkflow owns the lifecycle of a pending relationship offer: the
// record's existence is the Pending state, accept and cancel consume it.
type FriendWorkflow struct {
	users    domain.UserStore
	requests domain.FriendRequestStore
	pairs    *keymutex.KeyMutex
	pusher   Pusher
	log      *zap.Logger
}

func NewFriendWorkflow(users domain.UserStore, requests domain.FriendRequestStore, pusher Pusher, log *zap.Logger) *FriendWorkflow {
	return &FriendWorkflow{
		users:    users,
		requests: requests,
		pairs:    keymutex.New(),
		pusher:   pusher,
		log:      log,
	}
}

// Send creates a pending request from sender to recipient unless one
// already exists for the unordered pair, in either direction. The
// lookup-then-create is serialized on the pair key, so two concurrent sends
// cannot produce duplicate records. Reports whether a request was created.
func (f *FriendWorkflow) Send(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, bool, error) {
	pair := domain.PairKey(senderID, recipientID)
	f.pairs.Lock(pair)
	defer f.pairs.Unlock(pair)

	existing, err := f.requests.FindByPair(ctx, senderID, recipientID)
	if err == nil {
		f.pusher.Push(ctx, senderID, EventRequestSent, Notice{Message: "Friend request is already sent!"})

		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	req := &domain.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
	}
	if err := f.requests.Create(ctx, req); err != nil {
		return nil, false, err
	}

	f.pusher.Push(ctx, recipientID, EventNewFriendRequest, Notice{Message: "New friend request received!"})
	f.pusher.Push(ctx, senderID, EventRequestSent, Notice{Message: "Friend request sent!"})

	return req, true, nil
}

// Accept makes the friend relation symmetric, then consumes the pending
// record. The graph mutation commits first: a crash in between leaves a
// duplicate-accept opportunity rather than a dropped edge.
func (f *FriendWorkflow) Accept(ctx context.Context, requestID string) error {
	req, err := f.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}

	pair := domain.PairKey(req.SenderID, req.RecipientID)
	f.pairs.Lock(pair)
	defer f.pairs.Unlock(pair)

	// The first read happened outside the lock; a cancel may have consumed
	// the record in between. Re-check before mutating the graph so a
	// cancelled request never produces a friendship.
	req, err = f.requests.FindByID(ctx, req.ID)
	if err != nil {
		return err
	}

	if err := f.users.AddFriend(ctx, req.SenderID, req.RecipientID); err != nil {
		return err
	}
	if err := f.users.AddFriend(ctx, req.RecipientID, req.SenderID); err != nil {
		return err
	}

	if err := f.requests.Delete(ctx, req.ID); err != nil {
		return err
	}

	f.pusher.Push(ctx, req.SenderID, EventRequestAccepted, Notice{Message: "Friend request accepted!"})
	f.pusher.Push(ctx, req.RecipientID, EventRequestAccepted, Notice{Message: "Friend request accepted!"})

	return nil
}

// Cancel consumes the pending record and notifies the original sender only.
// Cancelling an already-consumed request reports ErrNotFound, so a client
// can tell a double tap from a real failure.
func (f *FriendWorkflow) Cancel(ctx context.Context, requestID string) error {
	req, err := f.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}

	pair := domain.PairKey(req.SenderID, req.RecipientID)
	f.pairs.Lock(pair)
	defer f.pairs.Unlock(pair)

	if err := f.requests.Delete(ctx, req.ID); err != nil {
		return err
	}

	f.pusher.Push(ctx, req.SenderID, EventRequestCancelled, Notice{Message: "Friend request cancelled!"})

	return nil
}

// PendingRequest is the hydrated projection of a pending request for the
// recipient's inbox.
type PendingRequest struct {
	ID      string         `json:"id"`
	Sender  domain.Profile `json:"sender"`
	Created int64          `json:"created_at"`
}

// SentRequest is the sender-side projection.
type SentRequest struct {
	ID        string         `json:"id"`
	Recipient domain.Profile `json:"recipient"`
	Created   int64          `json:"created_at"`
}

func (f *FriendWorkflow) PendingFor(ctx context.Context, userID string) ([]PendingRequest, error) {
	reqs, err := f.requests.FindByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]PendingRequest, 0, len(reqs))
	for _, req := range reqs {
		sender, err := f.users.FindByID(ctx, req.SenderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}

			return nil, err
		}

		out = append(out, PendingRequest{
			ID:      req.ID,
			Sender:  sender.Profile(),
			Created: req.CreatedAt.Unix(),
		})
	}

	return out, nil
}

func (f *FriendWorkflow) SentBy(ctx context.Context, userID string) ([]SentRequest, error) {
	reqs, err := f.requests.FindBySender(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SentRequest, 0, len(reqs))
	for _, req := range reqs {
		recipient, err := f.users.FindByID(ctx, req.RecipientID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}

			return nil, err
		}

		out = append(out, SentRequest{
			ID:        req.ID,
			Recipient: recipient.Profile(),
			Created:   req.CreatedAt.Unix(),
		})
	}

	return out, nil
}
