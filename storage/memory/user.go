package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*domain.User),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Friends = append([]string(nil), u.Friends...)
	c.Conversations = append([]string(nil), u.Conversations...)
	return &c
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = newID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.StatusOffline
	}

	s.users[user.ID] = cloneUser(user)

	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return cloneUser(user), nil
}

func (s *UserStore) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, *cloneUser(user))
		}
	}

	return out, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}

	return nil, domain.ErrNotFound
}

func (s *UserStore) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.PasswordResetToken == token && time.Now().Before(user.PasswordResetExpires) {
			return cloneUser(user), nil
		}
	}

	return nil, domain.ErrNotFound
}

func (s *UserStore) FindVerified(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.User
	for _, user := range s.users {
		if user.Verified {
			out = append(out, *cloneUser(user))
		}
	}

	return out, nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = cloneUser(user)

	return nil
}

func (s *UserStore) UpdateFields(_ context.Context, id string, fields map[string]any) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	for k, v := range fields {
		str, _ := v.(string)
		switch k {
		case "first_name":
			user.FirstName = str
		case "last_name":
			user.LastName = str
		case "bio":
			user.Bio = str
		case "avatar":
			user.Avatar = str
		}
	}
	user.UpdatedAt = time.Now()

	return cloneUser(user), nil
}

func (s *UserStore) SetStatus(_ context.Context, id string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.Status = status

	return nil
}

func (s *UserStore) AddFriend(_ context.Context, id, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !user.HasFriend(friendID) {
		user.Friends = append(user.Friends, friendID)
	}

	return nil
}

func (s *UserStore) AddConversation(_ context.Context, id, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !user.HasConversation(conversationID) {
		user.Conversations = append(user.Conversations, conversationID)
	}

	return nil
}

func (s *UserStore) RemoveConversation(_ context.Context, id, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}

	kept := user.Conversations[:0]
	for _, c := range user.Conversations {
		if c != conversationID {
			kept = append(kept, c)
		}
	}
	user.Conversations = kept

	return nil
}
