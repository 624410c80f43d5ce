package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/storage/memory"
)

func newCallFixture(t *testing.T) (*CallSignaling, *memory.Stores, *recordingPusher) {
	t.Helper()

	stores := memory.NewStores()
	pusher := &recordingPusher{}
	calls := NewCallSignaling(stores.Calls, stores.Users, pusher, testLogger())

	return calls, stores, pusher
}

func TestStartRingsCallee(t *testing.T) {
	ctx := context.Background()
	calls, stores, pusher := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	call, err := calls.Start(ctx, domain.CallAudio, alice.ID, bob.ID, "room-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if call.Status != domain.CallOngoing || call.Verdict != domain.VerdictUnset {
		t.Fatalf("expected Ongoing/unset, got %s/%q", call.Status, call.Verdict)
	}

	pushed := pusher.to(bob.ID)
	if len(pushed) != 1 || pushed[0].Event != "audio_call_notification" {
		t.Fatalf("expected one audio_call_notification to the callee, got %+v", pushed)
	}
	notification, ok := pushed[0].Payload.(CallNotification)
	if !ok {
		t.Fatalf("unexpected payload type %T", pushed[0].Payload)
	}
	if notification.From.ID != alice.ID || notification.RoomID != "room-1" {
		t.Fatalf("unexpected notification: %+v", notification)
	}
}

func TestStartReusesOngoingCall(t *testing.T) {
	ctx := context.Background()
	calls, stores, _ := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	first, err := calls.Start(ctx, domain.CallVideo, alice.ID, bob.ID, "room-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := calls.Start(ctx, domain.CallVideo, alice.ID, bob.ID, "room-2")
	if err != nil {
		t.Fatalf("duplicate start: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("duplicate start must reuse the ongoing call record")
	}
	if second.RoomID != "room-1" {
		t.Fatalf("expected the original room to win, got %q", second.RoomID)
	}
}

func TestVerdictIsSingleShot(t *testing.T) {
	ctx := context.Background()
	calls, stores, _ := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	if _, err := calls.Start(ctx, domain.CallAudio, alice.ID, bob.ID, "room-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	accepted, err := calls.Accepted(ctx, domain.CallAudio, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Verdict != domain.VerdictAccepted {
		t.Fatalf("expected Accepted, got %q", accepted.Verdict)
	}
	if accepted.Status != domain.CallOngoing {
		t.Fatal("accept must keep the call Ongoing")
	}
	if accepted.EndedAt != nil {
		t.Fatal("accept must not stamp EndedAt")
	}

	// The verdict is written; a late deny finds no matching call.
	if _, err := calls.Denied(ctx, domain.CallAudio, bob.ID, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on deny after accept, got %v", err)
	}
}

func TestConcurrentTransitionsExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	calls, stores, _ := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	if _, err := calls.Start(ctx, domain.CallAudio, alice.ID, bob.ID, "room-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	transitions := []func() error{
		func() error { _, err := calls.Accepted(ctx, domain.CallAudio, bob.ID, alice.ID); return err },
		func() error { _, err := calls.Denied(ctx, domain.CallAudio, bob.ID, alice.ID); return err },
		func() error { _, err := calls.NotPicked(ctx, domain.CallAudio, bob.ID, alice.ID); return err },
		func() error { _, err := calls.Busy(ctx, domain.CallAudio, bob.ID, alice.ID); return err },
	}
	for _, transition := range transitions {
		wg.Add(1)
		transition := transition
		go func() {
			defer wg.Done()

			err := transition()
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()

				return
			}
			if !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("unexpected transition error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning transition, got %d", wins)
	}
}

func TestNotPickedEndsCall(t *testing.T) {
	ctx := context.Background()
	calls, stores, pusher := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	if _, err := calls.Start(ctx, domain.CallVideo, alice.ID, bob.ID, "room-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	call, err := calls.NotPicked(ctx, domain.CallVideo, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("not picked: %v", err)
	}
	if call.Verdict != domain.VerdictMissed || call.Status != domain.CallEnded {
		t.Fatalf("expected Missed/Ended, got %q/%s", call.Verdict, call.Status)
	}
	if call.EndedAt == nil {
		t.Fatal("expected EndedAt to be stamped")
	}

	if !hasEvent(pusher.events(bob.ID), "video_call_missed") {
		t.Fatal("callee was not told about the missed call")
	}
}

func TestBusyInformsCaller(t *testing.T) {
	ctx := context.Background()
	calls, stores, pusher := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	if _, err := calls.Start(ctx, domain.CallAudio, alice.ID, bob.ID, "room-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	call, err := calls.Busy(ctx, domain.CallAudio, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("busy: %v", err)
	}
	if call.Verdict != domain.VerdictBusy || call.Status != domain.CallEnded {
		t.Fatalf("expected Busy/Ended, got %q/%s", call.Verdict, call.Status)
	}

	if !hasEvent(pusher.events(alice.ID), "on_another_audio_call") {
		t.Fatal("caller was not told the callee is busy")
	}
}

func TestKindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	calls, stores, _ := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	if _, err := calls.Start(ctx, domain.CallAudio, alice.ID, bob.ID, "room-1"); err != nil {
		t.Fatalf("start audio: %v", err)
	}

	// A video transition must not resolve the audio call.
	if _, err := calls.Denied(ctx, domain.CallVideo, bob.ID, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the wrong kind, got %v", err)
	}

	call, err := calls.Accepted(ctx, domain.CallAudio, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("accept audio: %v", err)
	}
	if call.Verdict != domain.VerdictAccepted {
		t.Fatalf("expected Accepted, got %q", call.Verdict)
	}
}

func TestLogsFlattenHistory(t *testing.T) {
	ctx := context.Background()
	calls, stores, _ := newCallFixture(t)
	alice := seedUser(t, stores, "Alice", "alice@example.com")
	bob := seedUser(t, stores, "Bob", "bob@example.com")

	if _, err := calls.Start(ctx, domain.CallAudio, alice.ID, bob.ID, "room-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := calls.Accepted(ctx, domain.CallAudio, bob.ID, alice.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := calls.Start(ctx, domain.CallVideo, bob.ID, alice.ID, "room-2"); err != nil {
		t.Fatalf("start video: %v", err)
	}
	if _, err := calls.NotPicked(ctx, domain.CallVideo, alice.ID, bob.ID); err != nil {
		t.Fatalf("not picked: %v", err)
	}

	logs, err := calls.Logs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(logs))
	}

	byKind := make(map[domain.CallKind]CallLog)
	for _, entry := range logs {
		byKind[entry.Kind] = entry
	}

	audio := byKind[domain.CallAudio]
	if audio.Missed || audio.Incoming || audio.Name != "Bob" {
		t.Fatalf("unexpected audio entry: %+v", audio)
	}

	video := byKind[domain.CallVideo]
	if !video.Missed || !video.Incoming {
		t.Fatalf("unexpected video entry: %+v", video)
	}
}
