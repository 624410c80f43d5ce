package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type UserStore struct {
	col *mongo.Collection
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.StatusOffline
	}
	if user.Friends == nil {
		user.Friends = []string{}
	}
	if user.Conversations == nil {
		user.Conversations = []string{}
	}

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}

		return errors.Wrap(err, "mongo: create user")
	}

	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{
		"password_reset_token":   token,
		"password_reset_expires": bson.M{"$gt": time.Now()},
	})
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	return s.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *UserStore) FindVerified(ctx context.Context) ([]domain.User, error) {
	return s.findMany(ctx, bson.M{"verified": true})
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return errors.Wrap(err, "mongo: update user")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *UserStore) UpdateFields(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	var user domain.User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: update user fields")
	}

	return &user, nil
}

func (s *UserStore) SetStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return errors.Wrap(err, "mongo: set status")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *UserStore) AddFriend(ctx context.Context, id, friendID string) error {
	return s.addToSet(ctx, id, "friends", friendID)
}

func (s *UserStore) AddConversation(ctx context.Context, id, conversationID string) error {
	return s.addToSet(ctx, id, "conversations", conversationID)
}

func (s *UserStore) RemoveConversation(ctx context.Context, id, conversationID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"conversations": conversationID}},
	)
	if err != nil {
		return errors.Wrap(err, "mongo: remove conversation")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *UserStore) addToSet(ctx context.Context, id, field, value string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{field: value}},
	)
	if err != nil {
		return errors.Wrapf(err, "mongo: add to %s", field)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find user")
	}

	return &user, nil
}

func (s *UserStore) findMany(ctx context.Context, filter bson.M) ([]domain.User, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find users")
	}

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "mongo: decode users")
	}

	return users, nil
}
