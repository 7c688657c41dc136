// Package database persists press releases in a relational store keyed
// by canonical URL. The interface decouples callers from Postgres so
// tests can swap in mocks.
package database

import (
	"context"
	"errors"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// ErrNotFound is returned when no record matches the requested URL.
var ErrNotFound = errors.New("press release not found")

// Store is the record store contract. The table is replaced wholesale on
// each refresh run; there is no incremental merge path.
type Store interface {
	// Reset drops and recreates the table.
	Reset(ctx context.Context) error

	// Insert adds one record. A duplicate URL or connection failure is
	// reported as an error; callers log it and continue with the rest.
	Insert(ctx context.Context, record press.PressRelease) error

	// List returns every stored record, newest first.
	List(ctx context.Context) ([]press.PressRelease, error)

	// GetByURL returns the record with the exact URL, or ErrNotFound.
	GetByURL(ctx context.Context, url string) (press.PressRelease, error)

	// Close releases the underlying connections.
	Close()
}

// NoOpStore discards writes and returns no data. Useful for dry runs.
type NoOpStore struct{}

// Reset does nothing.
func (NoOpStore) Reset(context.Context) error { return nil }

// Insert discards the record.
func (NoOpStore) Insert(context.Context, press.PressRelease) error { return nil }

// List returns no records.
func (NoOpStore) List(context.Context) ([]press.PressRelease, error) { return nil, nil }

// GetByURL always reports a missing record.
func (NoOpStore) GetByURL(context.Context, string) (press.PressRelease, error) {
	return press.PressRelease{}, ErrNotFound
}

// Close does nothing.
func (NoOpStore) Close() {}
