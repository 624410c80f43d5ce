package usecase

import (
	"context"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

// Directory serves the read-only user projections: who you can add, who
// your friends are, your own profile.
type Directory struct {
	users    domain.UserStore
	requests domain.FriendRequestStore
}

func NewDirectory(users domain.UserStore, requests domain.FriendRequestStore) *Directory {
	return &Directory{
		users:    users,
		requests: requests,
	}
}

// Discover lists verified users the caller could send a request to:
// not themselves, not already friends, no pending request in either
// direction.
func (d *Directory) Discover(ctx context.Context, userID string) ([]domain.Profile, error) {
	me, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := d.requests.FindByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	sent, err := d.requests.FindBySender(ctx, userID)
	if err != nil {
		return nil, err
	}

	excluded := map[string]bool{userID: true}
	for _, req := range pending {
		excluded[req.SenderID] = true
	}
	for _, req := range sent {
		excluded[req.RecipientID] = true
	}
	for _, friendID := range me.Friends {
		excluded[friendID] = true
	}

	all, err := d.users.FindVerified(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Profile, 0, len(all))
	for i := range all {
		if excluded[all[i].ID] {
			continue
		}
		out = append(out, all[i].Profile())
	}

	return out, nil
}

// AllVerified is the unfiltered variant, still excluding the caller.
func (d *Directory) AllVerified(ctx context.Context, userID string) ([]domain.Profile, error) {
	all, err := d.users.FindVerified(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Profile, 0, len(all))
	for i := range all {
		if all[i].ID == userID {
			continue
		}
		out = append(out, all[i].Profile())
	}

	return out, nil
}

func (d *Directory) Friends(ctx context.Context, userID string) ([]domain.Profile, error) {
	me, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends, err := d.users.FindByIDs(ctx, me.Friends)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Profile, 0, len(friends))
	for i := range friends {
		out = append(out, friends[i].Profile())
	}

	return out, nil
}

func (d *Directory) Me(ctx context.Context, userID string) (*domain.User, error) {
	return d.users.FindByID(ctx, userID)
}

// profileFields maps the client-updatable profile fields to their stored
// names; anything else in the patch is dropped.
var profileFields = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"bio":       "bio",
	"avatar":    "avatar",
}

func (d *Directory) UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.User, error) {
	fields := make(map[string]any, len(patch))
	for k, v := range patch {
		if name, ok := profileFields[k]; ok {
			fields[name] = v
		}
	}

	return d.users.UpdateFields(ctx, userID, fields)
}
