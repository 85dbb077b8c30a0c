package models

import (
	"strconv"

	"bitbucket.org/vetadata/iga_backend/reporting"
)

// PagedResponse wraps one page of rows with the paging metadata the
// dashboard tables expect.
type PagedResponse[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

const DefaultPageSize = 10

// ParsePaging interprets query-string page parameters, falling back to page
// 1 and the default size.
func ParsePaging(pageStr, pageSizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// PageOf slices items and fills in the metadata.
func PageOf[T any](items []T, page, pageSize int) PagedResponse[T] {
	return PagedResponse[T]{
		Items:      reporting.Paginate(items, page, pageSize),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: reporting.PageCount(len(items), pageSize),
	}
}
