package domain

import (
	"context"
	"time"
)

// FriendRequest has no status field: the record's existence is the Pending
// state. Accept and cancel both consume the record.
type FriendRequest struct {
	ID          string    `bson:"_id" json:"id"`
	SenderID    string    `bson:"sender" json:"sender"`
	RecipientID string    `bson:"recipient" json:"recipient"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type FriendRequestStore interface {
	Create(ctx context.Context, req *FriendRequest) error
	FindByID(ctx context.Context, id string) (*FriendRequest, error)
	// FindByPair matches the unordered {sender, recipient} pair in either
	// direction.
	FindByPair(ctx context.Context, userA, userB string) (*FriendRequest, error)
	FindByRecipient(ctx context.Context, userID string) ([]FriendRequest, error)
	FindBySender(ctx context.Context, userID string) ([]FriendRequest, error)
	// Delete reports ErrNotFound when the record was already consumed.
	Delete(ctx context.Context, id string) error
}
