// Package mongo implements the domain stores on MongoDB. The concurrency
// contracts (single conversation per pair, at-most-once call verdicts,
// monotonic message sequence) are pushed down to conditional single-document
// updates here.
package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colUsers          = "users"
	colConversations  = "conversations"
	colFriendRequests = "friend_requests"
	colCalls          = "calls"
)

type Stores struct {
	Users          *UserStore
	Conversations  *ConversationStore
	FriendRequests *FriendRequestStore
	Calls          *CallStore
}

func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:          &UserStore{col: db.Collection(colUsers)},
		Conversations:  &ConversationStore{col: db.Collection(colConversations)},
		FriendRequests: &FriendRequestStore{col: db.Collection(colFriendRequests)},
		Calls:          &CallStore{col: db.Collection(colCalls)},
	}
}

// EnsureIndexes creates the indexes the conditional updates rely on; the
// unique pair_key index on conversations is what makes FindOrCreate safe
// under concurrent upserts.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.Users.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "mongo: users index")
	}

	_, err = s.Conversations.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "mongo: conversations index")
	}

	_, err = s.FriendRequests.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sender", Value: 1}, {Key: "recipient", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "mongo: friend_requests index")
	}

	_, err = s.Calls.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "kind", Value: 1}, {Key: "pair_key", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "mongo: calls index")
	}

	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}
