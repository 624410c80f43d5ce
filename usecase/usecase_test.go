package usecase

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/storage/memory"
)

// push is one recorded fire-and-forget delivery.
type push struct {
	UserID  string
	Event   string
	Payload any
}

// recordingPusher captures pushes so tests can assert who was told what.
type recordingPusher struct {
	mu     sync.Mutex
	pushes []push
}

func (p *recordingPusher) Push(_ context.Context, userID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pushes = append(p.pushes, push{UserID: userID, Event: event, Payload: payload})
}

func (p *recordingPusher) all() []push {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]push(nil), p.pushes...)
}

func (p *recordingPusher) to(userID string) []push {
	var out []push
	for _, rec := range p.all() {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

func (p *recordingPusher) events(userID string) []string {
	var out []string
	for _, rec := range p.to(userID) {
		out = append(out, rec.Event)
	}
	return out
}

// captureMailer records outbound mail instead of sending it.
type captureMailer struct {
	mu         sync.Mutex
	otps       map[string]string
	resetToken map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		otps:       make(map[string]string),
		resetToken: make(map[string]string),
	}
}

func (m *captureMailer) SendOTP(_ context.Context, email, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.otps[email] = otp
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetToken[email] = token
	return nil
}

func seedUser(t *testing.T, stores *memory.Stores, firstName, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		FirstName: firstName,
		LastName:  "Test",
		Email:     email,
		Verified:  true,
	}
	if err := stores.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	return user
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func hasEvent(events []string, want string) bool {
	for _, e := range events {
		if e == want {
			return true
		}
	}
	return false
}
