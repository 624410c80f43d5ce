package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/storage/memory"
)

func newRelayFixture(t *testing.T) (*ConversationRelay, *memory.Stores, *recordingPusher) {
	t.Helper()

	stores := memory.NewStores()
	pusher := &recordingPusher{}
	relay := NewConversationRelay(stores.Conversations, stores.Users, pusher, testLogger())

	return relay, stores, pusher
}

func TestStartIsIdempotentPerPair(t *testing.T) {
	ctx := context.Background()
	relay, stores, _ := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	first, err := relay.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Contact.ID != bob.ID {
		t.Fatalf("expected contact %s, got %s", bob.ID, first.Contact.ID)
	}

	// Either direction lands on the same conversation.
	second, err := relay.Start(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("start reverse: %v", err)
	}
	if second.Chat.ID != first.Chat.ID {
		t.Fatalf("expected one conversation per pair, got %s and %s", first.Chat.ID, second.Chat.ID)
	}
}

func TestConcurrentStartsSettleOnOneConversation(t *testing.T) {
	ctx := context.Background()
	relay, stores, _ := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	var wg sync.WaitGroup
	ids := make(chan string, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		to, from := bob.ID, alice.ID
		if i%2 == 1 {
			to, from = alice.ID, bob.ID
		}
		go func() {
			defer wg.Done()

			open, err := relay.Start(ctx, to, from)
			if err != nil {
				t.Errorf("start: %v", err)

				return
			}
			ids <- open.Chat.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected all starts to settle on one conversation, got %d", len(seen))
	}
}

func TestAppendAssignsMonotonicSeq(t *testing.T) {
	ctx := context.Background()
	relay, stores, _ := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	open, err := relay.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := relay.Append(ctx, open.Chat.ID, domain.Message{
				To:   bob.ID,
				From: alice.ID,
				Text: "hello",
			})
			if err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	msgs, err := relay.Messages(ctx, open.Chat.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != n {
		t.Fatalf("expected %d messages, got %d", n, len(msgs))
	}
	for i, msg := range msgs {
		if msg.Seq != int64(i+1) {
			t.Fatalf("expected seq %d at position %d, got %d", i+1, i, msg.Seq)
		}
	}
}

func TestAppendPushesToBothParticipants(t *testing.T) {
	ctx := context.Background()
	relay, stores, pusher := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	open, err := relay.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	stamped, err := relay.Append(ctx, open.Chat.ID, domain.Message{
		To:   bob.ID,
		From: alice.ID,
		Text: "hello",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stamped.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", stamped.Seq)
	}
	if stamped.Type != domain.MessageText {
		t.Fatalf("expected default type Text, got %q", stamped.Type)
	}
	if stamped.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be stamped")
	}

	for _, userID := range []string{alice.ID, bob.ID} {
		if !hasEvent(pusher.events(userID), EventNewMessage) {
			t.Fatalf("user %s did not receive new_message", userID)
		}
	}

	// Membership is backfilled on both sides.
	a, _ := stores.Users.FindByID(ctx, alice.ID)
	b, _ := stores.Users.FindByID(ctx, bob.ID)
	if !a.HasConversation(open.Chat.ID) || !b.HasConversation(open.Chat.ID) {
		t.Fatal("append must backfill conversation membership for both users")
	}
}

func TestAppendUnknownConversation(t *testing.T) {
	relay, _, _ := newRelayFixture(t)

	_, err := relay.Append(context.Background(), "missing", domain.Message{To: "a", From: "b"})
	if err == nil {
		t.Fatal("expected append to an unknown conversation to fail")
	}
}

func TestListOrdersByLastMessage(t *testing.T) {
	ctx := context.Background()
	relay, stores, _ := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")
	carol := seedUser(t, stores, "Carol", "carol@example.com")

	withBob, err := relay.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	withCarol, err := relay.Start(ctx, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	older := time.Now().Add(-time.Hour)
	if _, err := relay.Append(ctx, withBob.Chat.ID, domain.Message{To: bob.ID, From: alice.ID, Text: "old", CreatedAt: older}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := relay.Append(ctx, withCarol.Chat.ID, domain.Message{To: carol.ID, From: alice.ID, Text: "new"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	views, err := relay.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(views))
	}
	if views[0].ID != withCarol.Chat.ID {
		t.Fatal("expected the conversation with the newest message first")
	}
	if views[0].LastMessage == nil || views[0].LastMessage.Text != "new" {
		t.Fatalf("unexpected last message: %+v", views[0].LastMessage)
	}
}

func TestClearKeepsConversationAndMembership(t *testing.T) {
	ctx := context.Background()
	relay, stores, _ := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	open, err := relay.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := relay.Append(ctx, open.Chat.ID, domain.Message{To: bob.ID, From: alice.ID, Text: "hi"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	view, err := relay.Clear(ctx, open.Chat.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(view.Messages) != 0 {
		t.Fatalf("expected no messages after clear, got %d", len(view.Messages))
	}
	if len(view.Participants) != 2 {
		t.Fatalf("clear must keep participants, got %d", len(view.Participants))
	}

	a, _ := stores.Users.FindByID(ctx, alice.ID)
	if !a.HasConversation(open.Chat.ID) {
		t.Fatal("clear must not touch conversation membership")
	}
}

func TestDeleteRemovesMembership(t *testing.T) {
	ctx := context.Background()
	relay, stores, _ := newRelayFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	open, err := relay.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := relay.Append(ctx, open.Chat.ID, domain.Message{To: bob.ID, From: alice.ID, Text: "hi"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := relay.Delete(ctx, open.Chat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	a, _ := stores.Users.FindByID(ctx, alice.ID)
	b, _ := stores.Users.FindByID(ctx, bob.ID)
	if a.HasConversation(open.Chat.ID) || b.HasConversation(open.Chat.ID) {
		t.Fatal("delete must remove the conversation from both membership sets")
	}

	views, err := relay.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no conversations after delete, got %d", len(views))
	}
}
