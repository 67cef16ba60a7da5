// Package kv is the persistence boundary: a flat key-value space of JSON
// blobs, durable within one installation. Backends may be swapped without
// the layers above noticing; none of them provide transactions or locking,
// so read-modify-write cycles by concurrent writers can lose updates.
package kv

import "context"

type Store interface {
	// Get returns the raw value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
