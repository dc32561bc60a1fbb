package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// ListFilter selects one page of a listing. Search is a case-insensitive
// substring match on the entity's text columns.
type ListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// Normalize clamps paging to sane values.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Page[T any] struct {
	Items      []T
	TotalCount int
	Page       int
	PageSize   int
}

func (p Page[T]) TotalPages() int {
	if p.PageSize == 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}
