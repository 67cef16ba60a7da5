package kv

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestMemoryBasicOps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := m.Get(ctx, "a")
	if err != nil || !ok || string(value) != "1" {
		t.Fatalf("Get: %s ok=%v err=%v", value, ok, err)
	}

	// Mutating the returned slice must not leak into the store.
	value[0] = 'X'
	value, _, _ = m.Get(ctx, "a")
	if string(value) != "1" {
		t.Fatalf("stored value mutated to %s", value)
	}

	if err := m.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Fatal("key survived Remove")
	}
}

func TestMemoryKeysPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, key := range []string{"current-ticket:o1:c1", "current-ticket:o1:c2", "queue"} {
		if err := m.Set(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	keys, err := m.Keys(ctx, "current-ticket:")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "current-ticket:o1:c1" || keys[1] != "current-ticket:o1:c2" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.Set(ctx, "queue", []byte(`[{"number":"M-100"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set(ctx, "next-ticket-number", []byte("101")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Remove(ctx, "queue"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	reopened, err := NewFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "queue"); ok {
		t.Fatal("removed key survived reopen")
	}
	value, ok, err := reopened.Get(ctx, "next-ticket-number")
	if err != nil || !ok || string(value) != "101" {
		t.Fatalf("Get after reopen: %s ok=%v err=%v", value, ok, err)
	}
}

func TestFileDamagedStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	if err := writeRaw(path, "not json at all"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	keys, err := f.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys = %v, want empty", keys)
	}
}
