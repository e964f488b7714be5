package repository

import (
	"context"
)

// ErrorHandler receives store failures that are not cancellation. Returning
// true marks the failure as handled: the operation suppresses the error and
// returns its safe default (zero value, empty slice, or zero count).
// Cancellation never reaches the handler.
type ErrorHandler func(ctx context.Context, err error) bool

// Hooks carries optional lifecycle callbacks fired after a write succeeds
// against the store. Nil callbacks are skipped.
type Hooks[T any] struct {
	OnAdded   func(context.Context, T)
	OnUpdated func(context.Context, T)
	OnRemoved func(context.Context, T)
}

func (h Hooks[T]) added(ctx context.Context, record T) {
	if h.OnAdded != nil {
		h.OnAdded(ctx, record)
	}
}

func (h Hooks[T]) updated(ctx context.Context, record T) {
	if h.OnUpdated != nil {
		h.OnUpdated(ctx, record)
	}
}

func (h Hooks[T]) removed(ctx context.Context, record T) {
	if h.OnRemoved != nil {
		h.OnRemoved(ctx, record)
	}
}

// Repository exposes CRUD and query operations over a single entity type.
// T is expected to be a pointer to a bun-mapped struct (e.g. *User).
//
// Not-found is never an error: GetByID returns the zero value of T with a
// nil error when no row matches.
type Repository[T any] interface {
	GetByID(ctx context.Context, id any) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Find(ctx context.Context, predicate SelectCriteria) ([]T, error)

	Add(ctx context.Context, record T) (T, error)
	AddRange(ctx context.Context, records []T) (int64, error)
	Update(ctx context.Context, record T) (T, error)
	Remove(ctx context.Context, record T) error
	RemoveRange(ctx context.Context, records []T) error

	SoftDelete(ctx context.Context, record T) error
	Undelete(ctx context.Context, record T) error

	Count(ctx context.Context) (int, error)
	GetPaged(ctx context.Context, pageIndex, pageSize int, criteria ...SelectCriteria) (*PaginatedList[T], error)
	GetPagedByCursor(ctx context.Context, lastCursor any, pageSize int, criteria ...SelectCriteria) (*CursorPaginatedList[T], error)

	SetErrorHandler(handler ErrorHandler)
	Handlers() ModelHandlers[T]
}
