// Package secure holds small helpers for handling key material in
// memory: zeroing, constant-time comparison and a guarded byte buffer.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"runtime"
	"sync"
)

// Buffer holds sensitive bytes behind a lock so they can be wiped once
// they are no longer needed.
type Buffer struct {
	mu   sync.RWMutex
	data []byte
}

// NewBuffer copies data into a fresh guarded buffer.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{data: make([]byte, len(data))}
	copy(b.data, data)
	return b
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Set replaces the contents, wiping the previous value first.
func (b *Buffer) Set(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	Zero(b.data)
	if len(data) != len(b.data) {
		b.data = make([]byte, len(data))
	}
	copy(b.data, data)
}

// Len returns the buffer length.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Destroy wipes the contents and releases the backing storage.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	Zero(b.data)
	b.data = nil
}

// Zero overwrites b with zero bytes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// RandomOverwrite fills b with random bytes and then zeroes it.
func RandomOverwrite(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("secure: failed to overwrite with random data: %w", err)
	}
	Zero(b)
	return nil
}

// ConstantTimeCompare reports whether x and y are equal without leaking
// the position of a mismatch.
func ConstantTimeCompare(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

// Random returns size cryptographically random bytes.
func Random(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		Zero(b)
		return nil, fmt.Errorf("secure: failed to generate random bytes: %w", err)
	}
	return b, nil
}
