package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get when nothing is stored under the key.
var ErrNotExist = errors.New("storage: key does not exist")

// ErrInvalidKey is returned for empty keys or keys containing path elements.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage is a persistent key/value store for small client-side documents,
// playing the role browser local storage plays for a web client.
type Storage interface {
	// Save stores content under key, replacing any previous value.
	Save(ctx context.Context, key string, content io.Reader) error

	// Get returns a reader for the value stored under key, or ErrNotExist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
