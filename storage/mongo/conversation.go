package mongo

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type ConversationStore struct {
	col *mongo.Collection
}

// FindOrCreate upserts on the canonical pair key. Two concurrent calls for
// the same pair race on the unique pair_key index, so exactly one document
// ever exists per pair; the loser of the race reads the winner's document.
func (s *ConversationStore) FindOrCreate(ctx context.Context, userA, userB string) (*domain.Conversation, bool, error) {
	pairKey := domain.PairKey(userA, userB)
	id := newID()

	var conv domain.Conversation
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"pair_key": pairKey},
		bson.M{"$setOnInsert": bson.M{
			"_id":          id,
			"pair_key":     pairKey,
			"participants": strings.Split(pairKey, "|"),
			"messages":     []domain.Message{},
			"seq":          int64(0),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&conv)
	if err != nil {
		return nil, false, errors.Wrap(err, "mongo: find or create conversation")
	}

	return &conv, conv.ID == id, nil
}

func (s *ConversationStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find conversation")
	}

	return &conv, nil
}

func (s *ConversationStore) FindByIDs(ctx context.Context, ids []string) ([]domain.Conversation, error) {
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find conversations")
	}

	var convs []domain.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, errors.Wrap(err, "mongo: decode conversations")
	}

	return convs, nil
}

// Append bumps the conversation's own sequence and appends the stamped
// message in a single pipeline update, so the log order is always the
// commit order of the sequence, even with concurrent writers.
func (s *ConversationStore) Append(ctx context.Context, id string, msg domain.Message) (*domain.Conversation, error) {
	nextSeq := bson.D{{Key: "$add", Value: bson.A{"$seq", 1}}}
	doc := bson.D{
		{Key: "to", Value: literal(msg.To)},
		{Key: "from", Value: literal(msg.From)},
		{Key: "type", Value: literal(string(msg.Type))},
		{Key: "text", Value: literal(msg.Text)},
		{Key: "file", Value: literal(msg.File)},
		{Key: "created_at", Value: bson.D{{Key: "$literal", Value: msg.CreatedAt}}},
		{Key: "seq", Value: nextSeq},
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "seq", Value: nextSeq},
			{Key: "messages", Value: bson.D{{Key: "$concatArrays", Value: bson.A{"$messages", bson.A{doc}}}}},
		}}},
	}

	var conv domain.Conversation
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: append message")
	}

	return &conv, nil
}

func (s *ConversationStore) Clear(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"messages": []domain.Message{}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: clear conversation")
	}

	return &conv, nil
}

// literal shields user-supplied strings from being read as field paths
// inside the aggregation pipeline.
func literal(s string) bson.D {
	return bson.D{{Key: "$literal", Value: s}}
}
