// Package hasher defines the hash functions used to build and verify
// certificate Merkle trees, together with a registry of the available
// implementations. Implementations register themselves from their init
// functions and are selected by ID, so a stored record can name the
// hasher its root was computed with.
package hasher

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultHasherID is the hasher used when none is configured.
const DefaultHasherID = "SHA-256d"

// TreeHasher provides the hash functions for the certificate tree.
// Implementations must be pure and deterministic, and safe for
// concurrent use.
type TreeHasher interface {
	// ID returns the name of the hash construction.
	ID() string
	// Size returns the size of the hash output in bytes.
	Size() int
	// HashLeaf computes the digest of a canonically encoded field.
	HashLeaf(encoded []byte) []byte
	// HashInterior computes the hash of an interior node
	// from its children, left child first.
	HashInterior(left, right []byte) []byte
}

var (
	mu      sync.RWMutex
	hashers = make(map[string]func() TreeHasher)
)

// RegisterHasher registers a hasher for use.
func RegisterHasher(h string, f func() TreeHasher) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := hashers[h]; ok {
		panic(fmt.Sprintf("RegisterHasher(%v) is already registered", h))
	}
	hashers[h] = f
}

// Hasher returns the TreeHasher registered under h.
func Hasher(h string) (TreeHasher, error) {
	mu.RLock()
	defer mu.RUnlock()
	if f, ok := hashers[h]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("Hasher(%v) is unknown hasher", h)
}

// Registered returns the IDs of all registered hashers, sorted.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(hashers))
	for id := range hashers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
