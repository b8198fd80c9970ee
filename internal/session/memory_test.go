package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryStoreAppendAndHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, "s1", RoleUser, fmt.Sprintf("q%d", i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := store.Append(ctx, "s1", RoleAssistant, fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	msgs, err := store.History(ctx, "s1", 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 10 {
		t.Fatalf("got %d messages, want 10", len(msgs))
	}
	// Append order preserved, oldest first.
	for i := 0; i < 5; i++ {
		if msgs[2*i].Content != fmt.Sprintf("q%d", i) {
			t.Errorf("message %d = %q, want q%d", 2*i, msgs[2*i].Content, i)
		}
		if msgs[2*i+1].Content != fmt.Sprintf("a%d", i) {
			t.Errorf("message %d = %q, want a%d", 2*i+1, msgs[2*i+1].Content, i)
		}
	}
}

func TestMemoryStoreHistoryLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 15; i++ {
		if err := store.Append(ctx, "s1", RoleUser, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	msgs, err := store.History(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 10 {
		t.Fatalf("got %d messages, want 10", len(msgs))
	}
	if msgs[0].Content != "m5" || msgs[9].Content != "m14" {
		t.Errorf("limited history should hold the most recent 10, got %q..%q",
			msgs[0].Content, msgs[9].Content)
	}

	// limit <= 0 returns everything.
	all, err := store.History(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 15 {
		t.Errorf("History(limit=0) = %d messages, want 15", len(all))
	}
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	msgs, err := store.History(ctx, "ghost", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("unknown session history = %d messages, want 0", len(msgs))
	}

	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(unknown) = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreSessionIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Append(ctx, "a", RoleUser, "only in a"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	msgs, err := store.History(ctx, "b", 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("session b sees %d messages from session a", len(msgs))
	}
}

func TestMemoryStoreClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Append(ctx, "s1", RoleUser, "hello"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	existed, err := store.Clear(ctx, "s1")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !existed {
		t.Error("Clear(existing) = false, want true")
	}

	existed, err = store.Clear(ctx, "never-created")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if existed {
		t.Error("Clear(unknown) = true, want false")
	}

	msgs, err := store.History(ctx, "s1", 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("cleared session still has %d messages", len(msgs))
	}
}

func TestMemoryStoreValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Append(ctx, "", RoleUser, "x"); !errors.Is(err, ErrEmptySessionID) {
		t.Errorf("Append(empty id) = %v, want ErrEmptySessionID", err)
	}
	if err := store.Append(ctx, "s1", "system", "x"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Append(bad role) = %v, want ErrInvalidRole", err)
	}
}

func TestMemoryStoreRoleAlternationNotEnforced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, "s1", RoleUser, "again"); err != nil {
			t.Fatalf("repeated user appends must be tolerated: %v", err)
		}
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", w%2)
			for i := 0; i < perWorker; i++ {
				if err := store.Append(ctx, id, RoleUser, "m"); err != nil {
					t.Errorf("Append: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for _, id := range []string{"s0", "s1"} {
		msgs, err := store.History(ctx, id, 0)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(msgs) != workers/2*perWorker {
			t.Errorf("session %s has %d messages, want %d", id, len(msgs), workers/2*perWorker)
		}
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Append(ctx, "s1", RoleUser, "original"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	sess, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	sess.Messages[0].Content = "mutated"

	again, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Messages[0].Content != "original" {
		t.Error("mutating Get() result leaked into the store")
	}
}
