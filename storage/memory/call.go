package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type CallStore struct {
	mu    sync.Mutex
	calls map[string]*domain.Call
}

func NewCallStore() *CallStore {
	return &CallStore{calls: make(map[string]*domain.Call)}
}

func cloneCall(c *domain.Call) *domain.Call {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	if c.EndedAt != nil {
		t := *c.EndedAt
		out.EndedAt = &t
	}
	return &out
}

func (s *CallStore) Create(_ context.Context, call *domain.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call.ID == "" {
		call.ID = newID()
	}
	call.PairKey = domain.PairKey(call.From, call.To)
	call.Participants = []string{call.From, call.To}
	call.Status = domain.CallOngoing
	call.Verdict = domain.VerdictUnset
	call.StartedAt = time.Now()
	s.calls[call.ID] = cloneCall(call)

	return nil
}

func (s *CallStore) findOngoingLocked(kind domain.CallKind, userA, userB string) *domain.Call {
	pairKey := domain.PairKey(userA, userB)
	for _, call := range s.calls {
		if call.Kind == kind && call.PairKey == pairKey &&
			call.Status == domain.CallOngoing && call.Verdict == domain.VerdictUnset {
			return call
		}
	}
	return nil
}

func (s *CallStore) FindOngoing(_ context.Context, kind domain.CallKind, userA, userB string) (*domain.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.findOngoingLocked(kind, userA, userB)
	if call == nil {
		return nil, domain.ErrNotFound
	}

	return cloneCall(call), nil
}

// Resolve performs the match and the write under one lock acquisition, so a
// verdict lands on a given call at most once.
func (s *CallStore) Resolve(_ context.Context, kind domain.CallKind, userA, userB string, verdict domain.Verdict, end bool) (*domain.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.findOngoingLocked(kind, userA, userB)
	if call == nil {
		return nil, domain.ErrNotFound
	}

	call.Verdict = verdict
	if end {
		call.Status = domain.CallEnded
		now := time.Now()
		call.EndedAt = &now
	}

	return cloneCall(call), nil
}

func (s *CallStore) FindByParticipant(_ context.Context, kind domain.CallKind, userID string) ([]domain.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Call
	for _, call := range s.calls {
		if call.Kind != kind {
			continue
		}
		for _, p := range call.Participants {
			if p == userID {
				out = append(out, *cloneCall(call))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	return out, nil
}
