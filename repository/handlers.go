package repository

import "time"

// DefaultIDColumn is used when ModelHandlers does not name an identity column.
const DefaultIDColumn = "id"

// ModelHandlers supplies the entity-specific accessors a repository needs.
// GetID replaces dynamic field lookup: the identity accessor is bound when
// the repository is constructed, and the identity column drives GetByID and
// cursor pagination instead of a hardcoded field name.
type ModelHandlers[T any] struct {
	// NewRecord returns an empty instance ready to be scanned into.
	NewRecord func() T

	// GetID extracts the identity value from a record.
	GetID func(T) any

	// IDColumn is the store column holding the identity. Defaults to "id".
	// Cursor pagination compares and orders on this column, so it must be
	// orderable in the underlying store.
	IDColumn string
}

// Validate reports whether the handlers carry everything a repository needs.
func (h ModelHandlers[T]) Validate() error {
	if h.NewRecord == nil || h.GetID == nil {
		return ErrMissingHandlers
	}
	return nil
}

func (h ModelHandlers[T]) column() string {
	if h.IDColumn == "" {
		return DefaultIDColumn
	}
	return h.IDColumn
}

// SoftDeletable marks entity types that carry a deletion flag. SoftDelete and
// Undelete require this capability and fail on types that lack it.
type SoftDeletable interface {
	IsDeleted() bool
	SetDeleted(bool)
}

// Timestamped marks entity types that track creation and modification times.
// The repository stamps them on Add and Update when the capability is present.
type Timestamped interface {
	SetCreatedAt(time.Time)
	SetUpdatedAt(time.Time)
}
