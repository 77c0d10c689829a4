package memory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestContextWindowReturnsMostRecentInOrder(t *testing.T) {
	ctx := context.Background()
	store := Load(ctx, NewInMemoryStorage(), Options{Window: 3})

	for i := 1; i <= 5; i++ {
		store.Append(ctx, "u1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	got := store.ContextWindow("u1", 0)
	want := []Exchange{{"q3", "a3"}, {"q4", "a4"}, {"q5", "a5"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ContextWindow() = %v, want %v", got, want)
	}

	got = store.ContextWindow("u1", 10)
	if len(got) != 5 || got[0].User != "q1" {
		t.Fatalf("ContextWindow(10) = %v, want all 5 oldest first", got)
	}
}

func TestContextWindowUnknownUserIsEmpty(t *testing.T) {
	store := Load(context.Background(), NewInMemoryStorage(), Options{})
	if got := store.ContextWindow("nobody", 6); len(got) != 0 {
		t.Fatalf("ContextWindow() = %v, want empty", got)
	}
	if store.Window() != DefaultWindow {
		t.Fatalf("Window() = %d, want %d", store.Window(), DefaultWindow)
	}
}

func TestContextWindowIsACopy(t *testing.T) {
	ctx := context.Background()
	store := Load(ctx, NewInMemoryStorage(), Options{})
	store.Append(ctx, "u1", "hi", "hello")

	got := store.ContextWindow("u1", 1)
	got[0].Bot = "mutated"
	if again := store.ContextWindow("u1", 1); again[0].Bot != "hello" {
		t.Fatalf("stored exchange mutated through window: %v", again)
	}
}

func TestAppendPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baby_memory.json")

	store := Load(ctx, NewFileStorage(path), Options{})
	store.Append(ctx, "111", "Hi Baby, tum kaisi ho?", "Main theek hoon ❤️")
	store.Append(ctx, "222", "gaana gao", "la la <3 & more")
	store.Append(ctx, "111", "aur batao", "sab badhiya")
	before := store.Snapshot()
	if err := store.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reloaded := Load(ctx, NewFileStorage(path), Options{})
	if after := reloaded.Snapshot(); !reflect.DeepEqual(after, before) {
		t.Fatalf("reloaded table = %v, want %v", after, before)
	}
	if reloaded.Users() != 2 {
		t.Fatalf("Users() = %d, want 2", reloaded.Users())
	}
}

func TestAppendWriteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	store := Load(ctx, storage, Options{})
	storage.FailWrites(errors.New("disk full"))

	store.Append(ctx, "u1", "hi", "hello")

	if got := store.ContextWindow("u1", 6); len(got) != 1 {
		t.Fatalf("ContextWindow() len = %d, want 1 after failed write", len(got))
	}
	if storage.Writes() != 0 {
		t.Fatalf("Writes() = %d, want 0", storage.Writes())
	}

	storage.FailWrites(nil)
	store.Append(ctx, "u1", "again", "yes")
	data, err := storage.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	table, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(table["u1"]) != 2 {
		t.Fatalf("persisted history len = %d, want 2", len(table["u1"]))
	}
}

func TestLoadCorruptDataStartsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	if err := storage.Write(ctx, []byte("{not json")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	store := Load(ctx, storage, Options{})
	if store.Users() != 0 {
		t.Fatalf("Users() = %d, want 0", store.Users())
	}
}

func TestConcurrentAppendsKeepEveryExchange(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	store := Load(ctx, storage, Options{})

	const users, perUser = 8, 25
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", u)
			for i := 0; i < perUser; i++ {
				store.Append(ctx, id, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
			}
		}(u)
	}
	wg.Wait()

	data, err := storage.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	table, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for u := 0; u < users; u++ {
		history := table[fmt.Sprintf("user-%d", u)]
		if len(history) != perUser {
			t.Fatalf("user-%d history len = %d, want %d", u, len(history), perUser)
		}
		for i, ex := range history {
			if ex.User != fmt.Sprintf("q%d", i) {
				t.Fatalf("user-%d[%d] = %q, want q%d", u, i, ex.User, i)
			}
		}
	}
	if storage.Writes() != users*perUser {
		t.Fatalf("Writes() = %d, want %d", storage.Writes(), users*perUser)
	}
}

func TestAppendRedactsWhenEnabled(t *testing.T) {
	ctx := context.Background()
	store := Load(ctx, NewInMemoryStorage(), Options{RedactPII: true})
	store.Append(ctx, "u1", "mail me at someone@example.com", "ok")

	got := store.ContextWindow("u1", 1)[0].User
	if got == "mail me at someone@example.com" {
		t.Fatalf("User = %q, want email redacted", got)
	}
}
