package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type FriendRequestStore struct {
	col *mongo.Collection
}

func (s *FriendRequestStore) Create(ctx context.Context, req *domain.FriendRequest) error {
	if req.ID == "" {
		req.ID = newID()
	}
	req.CreatedAt = time.Now()

	if _, err := s.col.InsertOne(ctx, req); err != nil {
		return errors.Wrap(err, "mongo: create friend request")
	}

	return nil
}

func (s *FriendRequestStore) FindByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find friend request")
	}

	return &req, nil
}

func (s *FriendRequestStore) FindByPair(ctx context.Context, userA, userB string) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := s.col.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"sender": userA, "recipient": userB},
		bson.M{"sender": userB, "recipient": userA},
	}}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find friend request by pair")
	}

	return &req, nil
}

func (s *FriendRequestStore) FindByRecipient(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.findMany(ctx, bson.M{"recipient": userID})
}

func (s *FriendRequestStore) FindBySender(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.findMany(ctx, bson.M{"sender": userID})
}

// Delete reports ErrNotFound when the record was already consumed, so a
// double accept or a cancel racing an accept surfaces instead of being
// silently absorbed.
func (s *FriendRequestStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "mongo: delete friend request")
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *FriendRequestStore) findMany(ctx context.Context, filter bson.M) ([]domain.FriendRequest, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find friend requests")
	}

	var reqs []domain.FriendRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, errors.Wrap(err, "mongo: decode friend requests")
	}

	return reqs, nil
}
