// Package repository implements a generic data-access layer on top of bun.
//
// # Overview
//
// A Repository[T] translates CRUD and query intents into store operations for
// a single entity type. T is a pointer to a bun-mapped struct; identity is
// owned by the store and extracted through ModelHandlers rather than by
// reflecting over field names.
//
//	handlers := repository.ModelHandlers[*User]{
//		NewRecord: func() *User { return &User{} },
//		GetID:     func(u *User) any { return u.ID },
//	}
//	users, err := repository.New(db, handlers)
//
// # Error policy
//
// Not-found is a nil result, not an error. Validation failures (bad paging
// arguments, nil predicate, nil cursor) surface synchronously before any
// store call. Other store failures are wrapped and routed to the optional
// ErrorHandler; a handler that returns true suppresses the error and the
// operation returns its safe default. Cancellation always propagates and is
// never passed to the handler.
//
// Callers that rely on return values must treat empty/nil/zero as ambiguous
// between "truly absent" and "handled failure". That ambiguity is the
// documented trade-off of the handler model, not a defect.
//
// # Pagination
//
// GetPaged is offset pagination: accurate totals at the cost of a count pass
// over the filtered source. GetPagedByCursor is keyset pagination over the
// identity column: no totals, constant extra query cost, suited to
// append-only traversal such as infinite scroll.
package repository
