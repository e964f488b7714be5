package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-kit/pkg/testsupport"
	"github.com/goliatone/go-repository-kit/repository"
)

func TestGetPaged(t *testing.T) {
	db, repo := newUserRepo(t)
	testsupport.SeedUsers(t, db, 25)
	ctx := context.Background()

	page, err := repo.GetPaged(ctx, 1, 10, repository.OrderBy("id"))
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrevious())

	last, err := repo.GetPaged(ctx, 3, 10, repository.OrderBy("id"))
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())
	assert.Equal(t, int64(21), last.Items[0].ID)
}

func TestGetPaged_WithFilter(t *testing.T) {
	db, repo := newUserRepo(t)
	testsupport.SeedUsers(t, db, 10)
	ctx := context.Background()

	// The count runs over the filtered source, not the whole table.
	page, err := repo.GetPaged(ctx, 1, 3,
		repository.Where("id <= ?", 5),
		repository.OrderBy("id"))
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
}

func TestGetPaged_ValidatesBeforeStore(t *testing.T) {
	repo, err := repository.NewWithDBFunc(func() bun.IDB {
		t.Fatal("store must not be touched for invalid paging arguments")
		return nil
	}, testsupport.UserHandlers())
	require.NoError(t, err)

	for _, tc := range []struct {
		name      string
		pageIndex int
		pageSize  int
	}{
		{"zero page index", 0, 10},
		{"negative page index", -1, 10},
		{"zero page size", 1, 0},
		{"negative page size", 1, -5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.GetPaged(context.Background(), tc.pageIndex, tc.pageSize)
			require.ErrorIs(t, err, repository.ErrInvalidPagination)
		})
	}
}

func TestGetPagedByCursor(t *testing.T) {
	db, repo := newUserRepo(t)
	testsupport.SeedUsers(t, db, 10)
	ctx := context.Background()

	page, err := repo.GetPagedByCursor(ctx, int64(5), 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(6), page.Items[0].ID)
	assert.Equal(t, int64(7), page.Items[1].ID)
	assert.Equal(t, int64(5), page.Cursor)
	assert.Equal(t, 2, page.PageSize)

	for _, item := range page.Items {
		assert.Greater(t, item.ID, int64(5))
	}

	// A cursor past the last row is an empty page, not an error.
	empty, err := repo.GetPagedByCursor(ctx, int64(10), 2)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestGetPagedByCursor_Validation(t *testing.T) {
	repo, err := repository.NewWithDBFunc(func() bun.IDB {
		t.Fatal("store must not be touched for invalid cursor arguments")
		return nil
	}, testsupport.UserHandlers())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.GetPagedByCursor(ctx, nil, 2)
	require.ErrorIs(t, err, repository.ErrNilCursor)

	_, err = repo.GetPagedByCursor(ctx, int64(1), 0)
	require.ErrorIs(t, err, repository.ErrInvalidPagination)

	_, err = repo.GetPagedByCursor(ctx, int64(1), -3)
	require.ErrorIs(t, err, repository.ErrInvalidPagination)
}

func TestPaginatedList_Math(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		pageIndex  int
		pageSize   int
		totalPages int
		hasPrev    bool
		hasNext    bool
	}{
		{"first of three", 25, 1, 10, 3, false, true},
		{"middle", 25, 2, 10, 3, true, true},
		{"last exact", 30, 3, 10, 3, true, false},
		{"single page", 7, 1, 10, 1, false, false},
		{"empty", 0, 1, 10, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := repository.NewPaginatedList[int](nil, tt.total, tt.pageIndex, tt.pageSize)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasPrev, p.HasPrevious())
			assert.Equal(t, tt.hasNext, p.HasNext())
		})
	}
}

func TestCursorPaginatedList_DerivesPagesFromCurrentPage(t *testing.T) {
	p := repository.NewCursorPaginatedList([]int{6, 7}, 5, 2)
	assert.Equal(t, 1, p.TotalPages)

	empty := repository.NewCursorPaginatedList[int](nil, 10, 2)
	assert.Equal(t, 0, empty.TotalPages)
}
