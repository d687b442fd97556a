package trips

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Page is one page of a list result.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the 1-based page of items. Out-of-range sizes are
// clamped to [1, MaxPageSize] and pages below 1 are treated as the first.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	start := total
	if page-1 <= total/size {
		start = min((page-1)*size, total)
	}
	end := start + size
	if end > total {
		end = total
	}

	data := make([]T, 0, end-start)
	data = append(data, items[start:end]...)

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
}
