package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type FriendRequestStore struct {
	mu       sync.Mutex
	requests map[string]*domain.FriendRequest
}

func NewFriendRequestStore() *FriendRequestStore {
	return &FriendRequestStore{requests: make(map[string]*domain.FriendRequest)}
}

func (s *FriendRequestStore) Create(_ context.Context, req *domain.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ID == "" {
		req.ID = newID()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	clone := *req
	s.requests[req.ID] = &clone

	return nil
}

func (s *FriendRequestStore) FindByID(_ context.Context, id string) (*domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *req

	return &clone, nil
}

func (s *FriendRequestStore) FindByPair(_ context.Context, userA, userB string) (*domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range s.requests {
		if (req.SenderID == userA && req.RecipientID == userB) ||
			(req.SenderID == userB && req.RecipientID == userA) {
			clone := *req
			return &clone, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (s *FriendRequestStore) FindByRecipient(_ context.Context, userID string) ([]domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.FriendRequest
	for _, req := range s.requests {
		if req.RecipientID == userID {
			out = append(out, *req)
		}
	}

	return out, nil
}

func (s *FriendRequestStore) FindBySender(_ context.Context, userID string) ([]domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.FriendRequest
	for _, req := range s.requests {
		if req.SenderID == userID {
			out = append(out, *req)
		}
	}

	return out, nil
}

func (s *FriendRequestStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.requests, id)

	return nil
}
