// Package settings holds the plugin preference and the key-value stores behind it.
package settings

import "errors"

var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("setting not found")
)

// Store is a process-wide key-value settings store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Close() error
}
