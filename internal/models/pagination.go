package models

type PaginatedResponse[T any] struct {
	Data     []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Paginate slices items for a 1-based page. Out of range pages are empty.
func Paginate[T any](items []T, page, pageSize int) PaginatedResponse[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	start := min((page-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))

	data := make([]T, end-start)
	copy(data, items[start:end])

	return PaginatedResponse[T]{
		Data:     data,
		Total:    len(items),
		Page:     page,
		PageSize: pageSize,
	}
}
