package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/roomtoken"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/ticket"
	"github.com/hnh-zeal/ChatApp-Backend/storage/memory"
	"github.com/hnh-zeal/ChatApp-Backend/usecase"
)

type nopPusher struct{}

func (nopPusher) Push(context.Context, string, string, any) {}

type fixture struct {
	router *httprouter.Router
	stores *memory.Stores
	issuer ticket.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zap.NewNop()
	stores := memory.NewStores()
	issuer := ticket.New([]byte("test-secret"), time.Hour)

	auth := usecase.NewAuth(stores.Users, issuer, usecase.NewLogMailer(log), log)
	directory := usecase.NewDirectory(stores.Users, stores.FriendRequests)
	friends := usecase.NewFriendWorkflow(stores.Users, stores.FriendRequests, nopPusher{}, log)
	calls := usecase.NewCallSignaling(stores.Calls, stores.Users, nopPusher{}, log)

	server := NewServer(auth, directory, friends, calls, issuer, 12345, "zego-secret", log)

	router := httprouter.New()
	server.Register(router)

	return &fixture{router: router, stores: stores, issuer: issuer}
}

func (f *fixture) seedVerified(t *testing.T, firstName, email, password string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &domain.User{
		FirstName: firstName,
		LastName:  "Test",
		Email:     email,
		Password:  string(hash),
		Verified:  true,
	}
	if err := f.stores.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return user
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var res response
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}

	return rec, res
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	rec, res := f.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Alice",
		"lastName":  "Test",
		"email":     "alice@example.com",
		"password":  "password1",
	})
	if rec.Code != http.StatusOK || res.Status != "success" {
		t.Fatalf("register: code=%d body=%+v", rec.Code, res)
	}

	// Not verified yet.
	rec, _ = f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unverified login, got %d", rec.Code)
	}

	user, err := f.stores.Users.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	user.Verified = true
	if err := f.stores.Users.Update(context.Background(), user); err != nil {
		t.Fatalf("mark verified: %v", err)
	}

	rec, res = f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: code=%d body=%+v", rec.Code, res)
	}
	if res.Token == "" {
		t.Fatal("expected a ticket in the login response")
	}

	subject, err := f.issuer.Verify(res.Token)
	if err != nil || subject != user.ID {
		t.Fatalf("expected a ticket for %s, got %q err=%v", user.ID, subject, err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.seedVerified(t, "Alice", "alice@example.com", "password1")

	rec, _ := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "nope",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthorizedRoutesRequireTicket(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a ticket, got %d", rec.Code)
	}

	rec, _ = f.do(t, http.MethodGet, "/me", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad ticket, got %d", rec.Code)
	}
}

func TestMeAndProfileUpdate(t *testing.T) {
	f := newFixture(t)
	alice := f.seedVerified(t, "Alice", "alice@example.com", "password1")

	token, err := f.issuer.Issue(alice.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, res := f.do(t, http.MethodGet, "/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: code=%d body=%+v", rec.Code, res)
	}

	rec, res = f.do(t, http.MethodPatch, "/me", token, map[string]string{
		"firstName": "Alicia",
		"bio":       "hello",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch me: code=%d body=%+v", rec.Code, res)
	}

	updated, err := f.stores.Users.FindByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if updated.FirstName != "Alicia" || updated.Bio != "hello" {
		t.Fatalf("profile not updated: %+v", updated)
	}
}

func TestStartCallOverHTTP(t *testing.T) {
	f := newFixture(t)
	alice := f.seedVerified(t, "Alice", "alice@example.com", "password1")
	bob := f.seedVerified(t, "Bob", "bob@example.com", "password2")

	token, err := f.issuer.Issue(alice.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, res := f.do(t, http.MethodPost, "/calls/audio", token, map[string]string{"id": bob.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("start call: code=%d body=%+v", rec.Code, res)
	}

	call, err := f.stores.Calls.FindOngoing(context.Background(), domain.CallAudio, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("expected an ongoing call record: %v", err)
	}
	if call.From != alice.ID || call.To != bob.ID {
		t.Fatalf("unexpected call pair: %s -> %s", call.From, call.To)
	}

	rec, res = f.do(t, http.MethodGet, "/calls/logs", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("call logs: code=%d body=%+v", rec.Code, res)
	}
}

func TestZegoToken(t *testing.T) {
	f := newFixture(t)
	alice := f.seedVerified(t, "Alice", "alice@example.com", "password1")

	token, err := f.issuer.Issue(alice.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, res := f.do(t, http.MethodPost, "/zego-token", token, map[string]string{"room_id": "room-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("zego token: code=%d body=%+v", rec.Code, res)
	}

	minted, err := roomtoken.Verify(res.Token, "zego-secret")
	if err != nil {
		t.Fatalf("verify room token: %v", err)
	}
	if minted != alice.ID {
		t.Fatalf("expected a room token for %s, got %q", alice.ID, minted)
	}
}
