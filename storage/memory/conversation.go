package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type ConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	byPair        map[string]string
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*domain.Conversation),
		byPair:        make(map[string]string),
	}
}

func cloneConversation(c *domain.Conversation) *domain.Conversation {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.Messages = append([]domain.Message(nil), c.Messages...)
	return &out
}

// FindOrCreate holds the store lock across lookup and insert, so exactly
// one conversation per pair exists no matter how the callers race.
func (s *ConversationStore) FindOrCreate(_ context.Context, userA, userB string) (*domain.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairKey := domain.PairKey(userA, userB)
	if id, ok := s.byPair[pairKey]; ok {
		return cloneConversation(s.conversations[id]), false, nil
	}

	conv := &domain.Conversation{
		ID:           newID(),
		PairKey:      pairKey,
		Participants: strings.Split(pairKey, "|"),
		Messages:     []domain.Message{},
	}
	s.conversations[conv.ID] = conv
	s.byPair[pairKey] = conv.ID

	return cloneConversation(conv), true, nil
}

func (s *ConversationStore) FindByID(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return cloneConversation(conv), nil
}

func (s *ConversationStore) FindByIDs(_ context.Context, ids []string) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Conversation, 0, len(ids))
	for _, id := range ids {
		if conv, ok := s.conversations[id]; ok {
			out = append(out, *cloneConversation(conv))
		}
	}

	return out, nil
}

// Append stamps the conversation's next sequence number and appends under
// one lock acquisition: commit order and sequence order cannot diverge.
func (s *ConversationStore) Append(_ context.Context, id string, msg domain.Message) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	conv.Seq++
	msg.Seq = conv.Seq
	conv.Messages = append(conv.Messages, msg)

	return cloneConversation(conv), nil
}

func (s *ConversationStore) Clear(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	conv.Messages = []domain.Message{}

	return cloneConversation(conv), nil
}
