package memory

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Table{
		"111": {{User: "hi <b>", Bot: "hello & 💖"}},
		"222": {},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(data), "hello & 💖") {
		t.Fatalf("Encode() escaped text: %s", data)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("Decode(Encode()) = %v, want %v", out, in)
	}
}

func TestDecodeEmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "  \n", "null"} {
		out, err := Decode([]byte(raw))
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", raw, err)
		}
		if out == nil || len(out) != 0 {
			t.Fatalf("Decode(%q) = %v, want empty table", raw, out)
		}
	}
}

func TestDecodeOriginalFileLayout(t *testing.T) {
	raw := `{
  "42": [
    {"user": "Hi Baby", "bot": "Hello jaan"}
  ]
}`
	out, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := out["42"]; len(got) != 1 || got[0].Bot != "Hello jaan" {
		t.Fatalf("Decode() = %v", out)
	}
}

func TestFileStorageMissingFile(t *testing.T) {
	s := NewFileStorage(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := s.Read(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestNewStorageSelectsBackend(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(ctx, StorageConfig{Backend: "file", FilePath: filepath.Join(t.TempDir(), "m.json")})
	if err != nil {
		t.Fatalf("NewStorage(file) error = %v", err)
	}
	if _, ok := s.(*FileStorage); !ok {
		t.Fatalf("NewStorage(file) = %T, want *FileStorage", s)
	}
	if _, err := NewStorage(ctx, StorageConfig{Backend: "redis"}); err == nil {
		t.Fatalf("NewStorage(redis) expected error")
	}
}

func TestSQLiteStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "baby.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Read(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() on empty db error = %v, want ErrNotFound", err)
	}
	store := Load(ctx, s, Options{})
	store.Append(ctx, "7", "hello", "hi")
	store.Append(ctx, "7", "again", "yes")

	reloaded := Load(ctx, s, Options{})
	if got := reloaded.ContextWindow("7", 6); len(got) != 2 || got[1].User != "again" {
		t.Fatalf("reloaded window = %v", got)
	}
}
