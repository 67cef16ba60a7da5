package kv

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File persists the whole key space as one JSON document on disk, the moral
// equivalent of a browser profile's local storage. Every Set/Remove rewrites
// the file through a temp-file rename.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string][]byte
}

func NewFile(path string) (*File, error) {
	f := &File{path: path, values: make(map[string][]byte)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, err
	}
	stored := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		// A damaged file starts over empty rather than blocking startup.
		return f, nil
	}
	for key, value := range stored {
		f.values[key] = []byte(value)
	}
	return f, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return nil, false, nil
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]byte, len(value))
	copy(copied, value)
	f.values[key] = copied
	return f.flush()
}

func (f *File) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return f.flush()
}

func (f *File) Keys(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.values))
	for key := range f.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *File) flush() error {
	stored := make(map[string]json.RawMessage, len(f.values))
	for key, value := range f.values {
		stored[key] = json.RawMessage(value)
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
