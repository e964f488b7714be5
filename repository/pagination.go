package repository

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PaginatedList is one page of an offset-paginated result set. It is built
// once per query and not mutated afterwards.
type PaginatedList[T any] struct {
	Items      []T `json:"items"`
	PageIndex  int `json:"page_index"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPaginatedList derives TotalPages from the full filtered count.
func NewPaginatedList[T any](items []T, totalCount, pageIndex, pageSize int) *PaginatedList[T] {
	return &PaginatedList[T]{
		Items:      items,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: (totalCount + pageSize - 1) / pageSize,
	}
}

// HasPrevious reports whether a page precedes this one.
func (p *PaginatedList[T]) HasPrevious() bool {
	return p.PageIndex > 1
}

// HasNext reports whether a page follows this one.
func (p *PaginatedList[T]) HasNext() bool {
	return p.PageIndex < p.TotalPages
}

// CursorPaginatedList is one page of a cursor-paginated result set. There is
// no total-count pass: TotalPages is derived from the current page's length
// relative to PageSize, which is an intentional asymmetry with offset
// pagination.
type CursorPaginatedList[T any] struct {
	Items      []T `json:"items"`
	Cursor     any `json:"cursor"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewCursorPaginatedList records the cursor the page was produced from.
func NewCursorPaginatedList[T any](items []T, cursor any, pageSize int) *CursorPaginatedList[T] {
	return &CursorPaginatedList[T]{
		Items:      items,
		Cursor:     cursor,
		PageSize:   pageSize,
		TotalPages: (len(items) + pageSize - 1) / pageSize,
	}
}

// validatePageArgs fails fast, before any store call, on out-of-range paging
// arguments.
func validatePageArgs(pageIndex, pageSize int) error {
	// Min alone skips zero values (ozzo treats them as blank), so Required
	// must ride along to reject 0.
	err := validation.Errors{
		"page_index": validation.Validate(pageIndex, validation.Required, validation.Min(1)),
		"page_size":  validation.Validate(pageSize, validation.Required, validation.Min(1)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPagination, err)
	}
	return nil
}

func validateCursorArgs(cursor any, pageSize int) error {
	if cursor == nil {
		return ErrNilCursor
	}
	if err := validation.Validate(pageSize, validation.Required, validation.Min(1)); err != nil {
		return fmt.Errorf("%w: page_size: %v", ErrInvalidPagination, err)
	}
	return nil
}
