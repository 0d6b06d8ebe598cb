package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrNotFound is returned by Get when no record exists for the key
	ErrNotFound = goerr.New("record not found")
)

// Repository stores whole documents under a name. Put replaces any previous
// value for the key.
type Repository interface {
	// Get returns the stored bytes for key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing the previous value
	Put(ctx context.Context, key string, data []byte) error
}

func validateKey(key string) error {
	if key == "" {
		return goerr.New("key is empty")
	}
	return nil
}
