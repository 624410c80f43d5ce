package keymutex

import (
	"sync"
	"testing"
)

func TestSerializesSameKey(t *testing.T) {
	km := New()

	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			km.Lock("pair")
			counter++
			km.Unlock("pair")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 serialized increments, got %d", counter)
	}
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	km := New()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	<-done
	km.Unlock("a")
}

func TestEntriesAreReleased(t *testing.T) {
	km := New()

	km.Lock("a")
	km.Unlock("a")
	km.Lock("b")
	km.Unlock("b")

	if n := len(km.entries); n != 0 {
		t.Fatalf("expected no retained entries, got %d", n)
	}
}

func TestUnlockWithoutLockPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unlock of unlocked key")
		}
	}()

	New().Unlock("nope")
}
