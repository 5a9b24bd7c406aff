package dto

// Page is the standard paginated list envelope.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage computes the page metadata from the raw query results.
func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// Message is the generic one-line success envelope.
type Message struct {
	Message string `json:"message"`
}
