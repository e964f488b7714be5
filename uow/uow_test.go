package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-kit/pkg/testsupport"
	"github.com/goliatone/go-repository-kit/repository"
	"github.com/goliatone/go-repository-kit/uow"
)

func newUnitOfWork(t *testing.T, opts ...uow.Option) *uow.UnitOfWork {
	t.Helper()
	u := uow.New(testsupport.NewDB(t), opts...)
	t.Cleanup(func() { _ = u.Close() })
	return u
}

func TestTransactionStateMachine(t *testing.T) {
	u := newUnitOfWork(t)
	ctx := context.Background()

	require.ErrorIs(t, u.CommitTransaction(ctx), uow.ErrNoTransaction)
	require.ErrorIs(t, u.RollbackTransaction(ctx), uow.ErrNoTransaction)

	require.NoError(t, u.BeginTransaction(ctx))
	require.ErrorIs(t, u.BeginTransaction(ctx), uow.ErrTransactionActive)

	require.NoError(t, u.CommitTransaction(ctx))

	// The slot is released after a commit: a new transaction may start.
	require.NoError(t, u.BeginTransaction(ctx))
	require.NoError(t, u.RollbackTransaction(ctx))
	require.NoError(t, u.BeginTransaction(ctx))
	require.NoError(t, u.RollbackTransaction(ctx))
}

func TestCommitPersists(t *testing.T) {
	u := newUnitOfWork(t)
	ctx := context.Background()

	repo, err := uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)

	require.NoError(t, u.BeginTransaction(ctx))
	_, err = repo.Add(ctx, &testsupport.User{ID: 1, Name: "A"})
	require.NoError(t, err)
	require.NoError(t, u.SaveChanges(ctx))
	require.NoError(t, u.CommitTransaction(ctx))

	got, err := repo.GetByID(ctx, int64(1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Name)
}

func TestRollbackDiscards(t *testing.T) {
	u := newUnitOfWork(t)
	ctx := context.Background()

	repo, err := uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)

	require.NoError(t, u.BeginTransaction(ctx))
	_, err = repo.Add(ctx, &testsupport.User{ID: 1, Name: "A"})
	require.NoError(t, err)
	require.NoError(t, u.RollbackTransaction(ctx))

	got, err := repo.GetByID(ctx, int64(1))
	require.NoError(t, err)
	assert.Nil(t, got, "rolled back writes must not be visible")
}

func TestCommitFailureReleasesSlot(t *testing.T) {
	u := newUnitOfWork(t)

	require.NoError(t, u.BeginTransaction(context.Background()))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err := u.CommitTransaction(cancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// Failure or not, the slot must be free afterwards.
	require.NoError(t, u.BeginTransaction(context.Background()))
}

func TestGetRepository_Memoized(t *testing.T) {
	u := newUnitOfWork(t)

	first, err := uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)
	second, err := uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)
	assert.Same(t, first, second, "one repository instance per entity type")

	notes, err := uow.GetRepository(u, testsupport.NoteHandlers())
	require.NoError(t, err)
	assert.NotNil(t, notes)
}

func TestGetRepository_InvalidHandlers(t *testing.T) {
	var delivered []error
	u := newUnitOfWork(t, uow.WithErrorHandler(func(_ context.Context, err error) bool {
		delivered = append(delivered, err)
		return false
	}))

	_, err := uow.GetRepository(u, repository.ModelHandlers[*testsupport.User]{})
	require.ErrorIs(t, err, repository.ErrMissingHandlers)
	assert.Len(t, delivered, 1, "construction failures are routed to the handler")
}

func TestRegisterRepository_CustomFactory(t *testing.T) {
	u := newUnitOfWork(t)

	var factoryCalls int
	uow.RegisterRepository(u, func(db repository.DBFunc) (repository.Repository[*testsupport.User], error) {
		factoryCalls++
		return repository.NewWithDBFunc(db, testsupport.UserHandlers())
	})

	repo, err := uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, 1, factoryCalls)

	// Memoization applies to custom factories too.
	_, err = uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)
	assert.Equal(t, 1, factoryCalls)
}

func TestExecute(t *testing.T) {
	u := newUnitOfWork(t)
	ctx := context.Background()

	repo, err := uow.GetRepository(u, testsupport.UserHandlers())
	require.NoError(t, err)

	require.NoError(t, u.Execute(ctx, func(ctx context.Context) error {
		_, err := repo.Add(ctx, &testsupport.User{ID: 1, Name: "A"})
		return err
	}))

	boom := errors.New("boom")
	err = u.Execute(ctx, func(ctx context.Context) error {
		if _, err := repo.Add(ctx, &testsupport.User{ID: 2, Name: "B"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the committed write survives")
}

func TestClose(t *testing.T) {
	u := uow.New(testsupport.NewDB(t))
	ctx := context.Background()

	require.NoError(t, u.BeginTransaction(ctx))
	require.NoError(t, u.Close())
	require.NoError(t, u.Close(), "close is idempotent")

	require.ErrorIs(t, u.BeginTransaction(ctx), uow.ErrClosed)
	require.ErrorIs(t, u.SaveChanges(ctx), uow.ErrClosed)
}
