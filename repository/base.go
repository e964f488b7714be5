package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// DBFunc resolves the connection a statement should run against. A unit of
// work supplies a resolver that returns the active transaction when one is
// open, so repository instances can survive transaction boundaries.
type DBFunc func() bun.IDB

// StaticDB wraps a fixed connection in a DBFunc.
func StaticDB(db bun.IDB) DBFunc {
	return func() bun.IDB { return db }
}

// Option configures a repository at construction time.
type Option[T any] func(*bunRepository[T])

// WithHooks installs lifecycle callbacks fired after successful writes.
func WithHooks[T any](hooks Hooks[T]) Option[T] {
	return func(r *bunRepository[T]) { r.hooks = hooks }
}

// WithErrorHandler installs the store-failure handler.
func WithErrorHandler[T any](handler ErrorHandler) Option[T] {
	return func(r *bunRepository[T]) { r.onError = handler }
}

// WithLogger replaces the default no-op logger.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(r *bunRepository[T]) { r.logger = logger }
}

// bunRepository implements Repository[T] against a bun connection.
type bunRepository[T any] struct {
	db       DBFunc
	handlers ModelHandlers[T]
	hooks    Hooks[T]
	onError  ErrorHandler
	logger   zerolog.Logger
}

// New creates a repository bound to a fixed connection.
func New[T any](db bun.IDB, handlers ModelHandlers[T], opts ...Option[T]) (Repository[T], error) {
	return NewWithDBFunc(StaticDB(db), handlers, opts...)
}

// NewWithDBFunc creates a repository whose connection is resolved per call.
func NewWithDBFunc[T any](db DBFunc, handlers ModelHandlers[T], opts ...Option[T]) (Repository[T], error) {
	if err := handlers.Validate(); err != nil {
		return nil, err
	}
	r := &bunRepository[T]{
		db:       db,
		handlers: handlers,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *bunRepository[T]) SetErrorHandler(handler ErrorHandler) {
	r.onError = handler
}

func (r *bunRepository[T]) Handlers() ModelHandlers[T] {
	return r.handlers
}

// GetByID returns the zero value with a nil error when no row matches.
func (r *bunRepository[T]) GetByID(ctx context.Context, id any) (T, error) {
	var zero T
	record := r.handlers.NewRecord()
	err := r.db().NewSelect().
		Model(record).
		Where("? = ?", bun.Ident(r.handlers.column()), id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, nil
		}
		return zero, r.fail(ctx, "get by id", err)
	}
	return record, nil
}

// GetAll returns every row. Store failures are delivered to the handler and
// collapsed to an empty slice; only cancellation propagates.
func (r *bunRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	var records []T
	if err := r.db().NewSelect().Model(&records).Scan(ctx); err != nil {
		if isCancellation(err) {
			return nil, err
		}
		r.deliver(ctx, "get all", err)
		return []T{}, nil
	}
	return records, nil
}

func (r *bunRepository[T]) Find(ctx context.Context, predicate SelectCriteria) ([]T, error) {
	if predicate == nil {
		return nil, ErrNilPredicate
	}
	var records []T
	if err := predicate(r.db().NewSelect().Model(&records)).Scan(ctx); err != nil {
		if ferr := r.fail(ctx, "find", err); ferr != nil {
			return nil, ferr
		}
		return []T{}, nil
	}
	return records, nil
}

func (r *bunRepository[T]) Add(ctx context.Context, record T) (T, error) {
	var zero T
	stamp(record, true)
	if _, err := r.db().NewInsert().Model(record).Exec(ctx); err != nil {
		return zero, r.fail(ctx, "add", err)
	}
	r.hooks.added(ctx, record)
	return record, nil
}

func (r *bunRepository[T]) AddRange(ctx context.Context, records []T) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for _, record := range records {
		stamp(record, true)
	}
	res, err := r.db().NewInsert().Model(&records).Exec(ctx)
	if err != nil {
		return 0, r.fail(ctx, "add range", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = int64(len(records))
	}
	for _, record := range records {
		r.hooks.added(ctx, record)
	}
	return affected, nil
}

func (r *bunRepository[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	stamp(record, false)
	if _, err := r.db().NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		return zero, r.fail(ctx, "update", err)
	}
	r.hooks.updated(ctx, record)
	return record, nil
}

// Remove performs a hard delete.
func (r *bunRepository[T]) Remove(ctx context.Context, record T) error {
	if _, err := r.db().NewDelete().Model(record).WherePK().Exec(ctx); err != nil {
		return r.fail(ctx, "remove", err)
	}
	r.hooks.removed(ctx, record)
	return nil
}

func (r *bunRepository[T]) RemoveRange(ctx context.Context, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := r.db().NewDelete().Model(&records).WherePK().Exec(ctx); err != nil {
		return r.fail(ctx, "remove range", err)
	}
	for _, record := range records {
		r.hooks.removed(ctx, record)
	}
	return nil
}

// SoftDelete flags the record as deleted and persists via the update path.
// The capability is checked by type assertion, never by type name.
func (r *bunRepository[T]) SoftDelete(ctx context.Context, record T) error {
	sd, ok := any(record).(SoftDeletable)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotSoftDeletable, record)
	}
	sd.SetDeleted(true)
	_, err := r.Update(ctx, record)
	return err
}

// Undelete clears the deletion flag, with the same capability requirement.
func (r *bunRepository[T]) Undelete(ctx context.Context, record T) error {
	sd, ok := any(record).(SoftDeletable)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotSoftDeletable, record)
	}
	sd.SetDeleted(false)
	_, err := r.Update(ctx, record)
	return err
}

// Count returns 0 instead of an error on store failure so that paging math
// downstream keeps working; the failure is still delivered to the handler.
func (r *bunRepository[T]) Count(ctx context.Context) (int, error) {
	count, err := r.db().NewSelect().Model(r.handlers.NewRecord()).Count(ctx)
	if err != nil {
		if isCancellation(err) {
			return 0, err
		}
		r.deliver(ctx, "count", err)
		return 0, nil
	}
	return count, nil
}

// GetPaged applies criteria, counts the filtered source, then slices the page.
// The count runs against the unpaged query, so totals stay accurate at the
// cost of a second pass.
func (r *bunRepository[T]) GetPaged(ctx context.Context, pageIndex, pageSize int, criteria ...SelectCriteria) (*PaginatedList[T], error) {
	if err := validatePageArgs(pageIndex, pageSize); err != nil {
		return nil, err
	}
	var records []T
	q := r.db().NewSelect().Model(&records)
	for _, c := range criteria {
		q = c(q)
	}
	total, err := q.
		Limit(pageSize).
		Offset((pageIndex - 1) * pageSize).
		ScanAndCount(ctx)
	if err != nil {
		if ferr := r.fail(ctx, "get paged", err); ferr != nil {
			return nil, ferr
		}
		return NewPaginatedList[T](nil, 0, pageIndex, pageSize), nil
	}
	return NewPaginatedList(records, total, pageIndex, pageSize), nil
}

// GetPagedByCursor pages by a strict greater-than predicate on the identity
// column, ordered by that column. There is no total-count pass. A cursor past
// the last row yields an empty page.
func (r *bunRepository[T]) GetPagedByCursor(ctx context.Context, lastCursor any, pageSize int, criteria ...SelectCriteria) (*CursorPaginatedList[T], error) {
	if err := validateCursorArgs(lastCursor, pageSize); err != nil {
		return nil, err
	}
	var records []T
	q := r.db().NewSelect().Model(&records)
	for _, c := range criteria {
		q = c(q)
	}
	col := r.handlers.column()
	err := q.
		Where("? > ?", bun.Ident(col), lastCursor).
		OrderExpr("? ASC", bun.Ident(col)).
		Limit(pageSize).
		Scan(ctx)
	if err != nil {
		if ferr := r.fail(ctx, "get paged by cursor", err); ferr != nil {
			return nil, ferr
		}
		return NewCursorPaginatedList[T](nil, lastCursor, pageSize), nil
	}
	return NewCursorPaginatedList(records, lastCursor, pageSize), nil
}

// fail routes a store failure through the handler. Cancellation is re-raised
// untouched. A nil return means the handler reported the failure as handled
// and the caller should fall back to its safe default.
func (r *bunRepository[T]) fail(ctx context.Context, op string, err error) error {
	if isCancellation(err) {
		return err
	}
	wrapped := fmt.Errorf("repository: %s: %w", op, err)
	if r.onError != nil && r.onError(ctx, wrapped) {
		return nil
	}
	return wrapped
}

// deliver hands a failure to the handler for operations whose contract
// swallows errors. Unhandled failures are logged so they are not lost.
func (r *bunRepository[T]) deliver(ctx context.Context, op string, err error) {
	wrapped := fmt.Errorf("repository: %s: %w", op, err)
	if r.onError != nil && r.onError(ctx, wrapped) {
		return
	}
	r.logger.Warn().Err(wrapped).Str("op", op).Msg("store failure suppressed")
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// stamp sets timestamps when the entity tracks them.
func stamp(record any, created bool) {
	ts, ok := record.(Timestamped)
	if !ok {
		return
	}
	now := time.Now()
	if created {
		ts.SetCreatedAt(now)
	}
	ts.SetUpdatedAt(now)
}
