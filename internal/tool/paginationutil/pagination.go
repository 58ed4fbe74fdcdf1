package paginationutil

// PaginationResult holds pagination metadata.
type PaginationResult struct {
	TotalCount int
	Truncated  bool
}

// ApplyPagination returns the paginated slice and metadata.
// Offset and limit are clamped to the slice bounds. Truncated reports
// whether items remain past the returned page.
func ApplyPagination[T any](items []T, offset, limit int) ([]T, PaginationResult) {
	totalCount := len(items)
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	start := offset
	end := offset + limit
	truncated := end < totalCount

	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return items[start:end], PaginationResult{
		TotalCount: totalCount,
		Truncated:  truncated,
	}
}
