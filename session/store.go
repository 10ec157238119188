package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("session: field not found")
	ErrClosed         = errors.New("session: store is closed")
	ErrChecksum       = errors.New("session: array checksum mismatch")
	ErrLengthMismatch = errors.New("session: stored array length differs from mapped array")
	ErrBadKey         = errors.New("session: invalid key")
)

func errNotFound(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

func errLengthMismatch(key string, stored, mapped int) error {
	return fmt.Errorf("%w: %s (stored: %d, mapped: %d)",
		ErrLengthMismatch, key, stored, mapped)
}

// Store is what holds the encoded fields of every file.  Could be in ram,
// in a directory, or in a LevelDB, or maybe something else.  A store can
// be shared between files and goroutines.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing what was there
	Put(key string, value []byte) error

	// Write applies all the puts in b at once
	Write(b Batch) error

	// Delete removes key.  Deleting a missing key is not an error.
	Delete(key string) error

	// Keys lists the stored keys starting with prefix, sorted
	Keys(prefix string) ([]string, error)

	// Close releases the store.  Further calls return ErrClosed.
	Close() error
}

// Batch is a set of puts written together by Store.Write
type Batch map[string][]byte

// Key joins a file name and a field name into a store key
func Key(file, field string) string {
	return file + "/" + field
}

// checkKey rejects keys a flat file store couldn't turn into a path
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return nil
}
