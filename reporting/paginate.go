package reporting

// Paginate returns the 1-indexed page of size pageSize. A page past the end
// yields an empty slice. pageSize <= 0 returns everything.
func Paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageCount returns the number of pages needed for n items.
func PageCount(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}
