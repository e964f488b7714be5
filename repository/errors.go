package repository

import "errors"

var (
	// ErrNilPredicate is returned by Find when the caller passes a nil predicate.
	ErrNilPredicate = errors.New("repository: nil predicate")

	// ErrNilCursor is returned by GetPagedByCursor when the cursor is nil.
	ErrNilCursor = errors.New("repository: nil cursor")

	// ErrInvalidPagination is returned when pageIndex or pageSize is out of range.
	ErrInvalidPagination = errors.New("repository: invalid pagination arguments")

	// ErrNotSoftDeletable is returned when SoftDelete or Undelete is called on
	// an entity type that does not implement SoftDeletable.
	ErrNotSoftDeletable = errors.New("repository: entity type does not support soft delete")

	// ErrMissingHandlers is returned when a repository is constructed with
	// incomplete model handlers.
	ErrMissingHandlers = errors.New("repository: incomplete model handlers")
)
