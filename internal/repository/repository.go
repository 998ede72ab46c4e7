// Package repository defines the storage contracts for the site's collections.
// Implementations live in subpackages (file, postgres) and contain no business rules:
// validation, defaults, filtering and ordering belong to the service layer.
package repository

import (
	"context"
	"errors"

	"agencysite/internal/model"
)

// ErrNotFound is returned when no record with the requested id exists.
var ErrNotFound = errors.New("record not found")

// Store is the storage contract of a mutable collection.
type Store[T model.Record] interface {
	// List returns every record in storage (insertion) order.
	List(ctx context.Context) ([]T, error)

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Insert adds a new record. The caller assigns ID and CreatedAt.
	Insert(ctx context.Context, item T) error

	// Replace overwrites the record that has the same id, keeping its position.
	// Returns ErrNotFound if there is none.
	Replace(ctx context.Context, item T) error

	// Delete removes the record with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// NewsRepository stores news items.
type NewsRepository = Store[model.NewsItem]

// MemberRepository stores roster members.
type MemberRepository = Store[model.Member]

// ApplicationLog is the append-only store of submitted applications.
type ApplicationLog interface {
	// Append writes a new application after every existing one.
	Append(ctx context.Context, app model.Application) error

	// List returns every stored application in append order.
	List(ctx context.Context) ([]model.Application, error)
}
