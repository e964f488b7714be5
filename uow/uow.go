// Package uow coordinates a transaction boundary shared by a set of
// repositories. A UnitOfWork owns at most one live transaction and a
// memoized repository per entity type; repositories obtained from it run
// their statements against the active transaction when one is open.
//
// A UnitOfWork models a single logical flow (typically one request). The
// single-transaction invariant is enforced by a nil check, not a lock, so
// sharing one instance between concurrent goroutines is not safe.
package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-kit/repository"
)

var (
	// ErrTransactionActive is returned by BeginTransaction when a transaction
	// handle already exists.
	ErrTransactionActive = errors.New("uow: transaction already active")

	// ErrNoTransaction is returned by CommitTransaction and
	// RollbackTransaction when no transaction is open.
	ErrNoTransaction = errors.New("uow: no active transaction")

	// ErrClosed is returned once the unit of work has been closed.
	ErrClosed = errors.New("uow: unit of work is closed")
)

// Option configures a UnitOfWork at construction time.
type Option func(*UnitOfWork)

// WithErrorHandler installs the handler passed to repositories constructed by
// this unit of work and used for repository construction failures.
func WithErrorHandler(handler repository.ErrorHandler) Option {
	return func(u *UnitOfWork) { u.onError = handler }
}

// WithLogger replaces the default no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(u *UnitOfWork) { u.logger = logger }
}

// UnitOfWork owns one transaction slot and a registry of repository
// instances keyed by entity type.
type UnitOfWork struct {
	db        *bun.DB
	tx        *bun.Tx
	repos     map[reflect.Type]any
	factories map[reflect.Type]any
	onError   repository.ErrorHandler
	logger    zerolog.Logger
	closed    bool
	closeOnce sync.Once
}

// New creates a UnitOfWork over the given database handle. The unit of work
// takes ownership of the handle and releases it on Close.
func New(db *bun.DB, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		db:        db,
		repos:     make(map[reflect.Type]any),
		factories: make(map[reflect.Type]any),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// DB resolves the connection statements should run against: the active
// transaction when one is open, otherwise the root handle.
func (u *UnitOfWork) DB() bun.IDB {
	if u.tx != nil {
		return *u.tx
	}
	return u.db
}

// BeginTransaction opens the transaction slot. It fails with
// ErrTransactionActive when a handle already exists.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	if u.closed {
		return ErrClosed
	}
	if u.tx != nil {
		return ErrTransactionActive
	}
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("uow: begin transaction: %w", err)
	}
	u.tx = &tx
	u.logger.Debug().Msg("transaction started")
	return nil
}

// SaveChanges is the flush point before a commit. Statements execute eagerly
// against the store, so there is no pending-change buffer to drain; the call
// verifies the unit of work is still usable and the caller is not cancelled.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	if u.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// CommitTransaction flushes pending changes and commits. On any failure the
// transaction is rolled back before the error propagates. The slot is
// released in all cases, win or lose.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	tx := u.tx
	defer func() { u.tx = nil }()

	if err := u.SaveChanges(ctx); err != nil {
		u.rollback(tx)
		return err
	}
	if err := tx.Commit(); err != nil {
		u.rollback(tx)
		return fmt.Errorf("uow: commit: %w", err)
	}
	u.logger.Debug().Msg("transaction committed")
	return nil
}

// RollbackTransaction rolls back and releases the slot. It fails with
// ErrNoTransaction when no transaction is open.
func (u *UnitOfWork) RollbackTransaction(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("uow: rollback: %w", err)
	}
	u.logger.Debug().Msg("transaction rolled back")
	return nil
}

// Execute runs fn inside a transaction, committing on success and rolling
// back when fn fails.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := u.BeginTransaction(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if rbErr := u.RollbackTransaction(ctx); rbErr != nil {
			u.logger.Warn().Err(rbErr).Msg("rollback after failed execute")
		}
		return err
	}
	return u.CommitTransaction(ctx)
}

// Close rolls back any live transaction and releases the store context.
// Safe to call more than once; only the first call does work.
func (u *UnitOfWork) Close() error {
	var err error
	u.closeOnce.Do(func() {
		u.closed = true
		if u.tx != nil {
			u.rollback(u.tx)
			u.tx = nil
		}
		err = u.db.Close()
	})
	return err
}

func (u *UnitOfWork) rollback(tx *bun.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.logger.Warn().Err(err).Msg("transaction rollback failed")
	}
}

// RepositoryFactory builds a repository against the unit of work's current
// connection. The resolver must be called per statement so repositories
// follow transaction boundaries.
type RepositoryFactory[T any] func(db repository.DBFunc) (repository.Repository[T], error)

// RegisterRepository substitutes a custom repository factory for T. Interface
// compatibility is guaranteed by the factory signature at compile time. The
// registration replaces any previously memoized instance.
func RegisterRepository[T any](u *UnitOfWork, factory RepositoryFactory[T]) {
	key := entityType[T]()
	u.factories[key] = factory
	delete(u.repos, key)
}

// GetRepository returns the memoized repository for T, constructing it
// lazily on first access. One instance exists per entity type for the
// lifetime of the unit of work. Construction failures are delivered to the
// unit of work's error handler before they propagate.
//
// Since Go methods cannot carry type parameters this is a package-level
// function: GetRepository[*User](u, userHandlers).
func GetRepository[T any](u *UnitOfWork, handlers repository.ModelHandlers[T]) (repository.Repository[T], error) {
	key := entityType[T]()
	if existing, ok := u.repos[key]; ok {
		return existing.(repository.Repository[T]), nil
	}

	var repo repository.Repository[T]
	var err error
	if factory, ok := u.factories[key]; ok {
		repo, err = factory.(RepositoryFactory[T])(u.DB)
	} else {
		repo, err = repository.NewWithDBFunc(u.DB, handlers,
			repository.WithErrorHandler[T](u.onError),
			repository.WithLogger[T](u.logger),
		)
	}
	if err != nil {
		err = fmt.Errorf("uow: construct repository for %s: %w", key, err)
		if u.onError != nil {
			u.onError(context.Background(), err)
		}
		return nil, err
	}

	u.repos[key] = repo
	return repo, nil
}

func entityType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
