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

type CallStore struct {
	col *mongo.Collection
}

func (s *CallStore) Create(ctx context.Context, call *domain.Call) error {
	if call.ID == "" {
		call.ID = newID()
	}
	call.PairKey = domain.PairKey(call.From, call.To)
	call.Participants = []string{call.From, call.To}
	call.Status = domain.CallOngoing
	call.Verdict = domain.VerdictUnset
	call.StartedAt = time.Now()

	if _, err := s.col.InsertOne(ctx, call); err != nil {
		return errors.Wrap(err, "mongo: create call")
	}

	return nil
}

func ongoingFilter(kind domain.CallKind, userA, userB string) bson.M {
	return bson.M{
		"kind":     kind,
		"pair_key": domain.PairKey(userA, userB),
		"status":   domain.CallOngoing,
		"verdict":  domain.VerdictUnset,
	}
}

func (s *CallStore) FindOngoing(ctx context.Context, kind domain.CallKind, userA, userB string) (*domain.Call, error) {
	var call domain.Call
	err := s.col.FindOne(ctx, ongoingFilter(kind, userA, userB)).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find ongoing call")
	}

	return &call, nil
}

// Resolve is the conditional write behind every signaling transition: the
// filter requires an unset verdict, so the first terminal event wins and
// any later one finds no matching document.
func (s *CallStore) Resolve(ctx context.Context, kind domain.CallKind, userA, userB string, verdict domain.Verdict, end bool) (*domain.Call, error) {
	set := bson.M{"verdict": verdict}
	if end {
		set["status"] = domain.CallEnded
		set["ended_at"] = time.Now()
	}

	var call domain.Call
	err := s.col.FindOneAndUpdate(ctx,
		ongoingFilter(kind, userA, userB),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongo: resolve call")
	}

	return &call, nil
}

func (s *CallStore) FindByParticipant(ctx context.Context, kind domain.CallKind, userID string) ([]domain.Call, error) {
	cur, err := s.col.Find(ctx,
		bson.M{"kind": kind, "participants": userID},
		options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find calls")
	}

	var calls []domain.Call
	if err := cur.All(ctx, &calls); err != nil {
		return nil, errors.Wrap(err, "mongo: decode calls")
	}

	return calls, nil
}
