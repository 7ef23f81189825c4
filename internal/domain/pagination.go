package domain

// Pagination page number (1-based) and page size
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination normalizes page and limit, falling back to defaults
func NewPagination(page, limit, defaultLimit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// PageMeta pagination metadata of a listing
type PageMeta struct {
	TotalRecords int
	TotalPages   int
	CurrentPage  int
	PerPage      int
}

// NewPageMeta builds metadata for a total row count
func NewPageMeta(total int, p Pagination) PageMeta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{
		TotalRecords: total,
		TotalPages:   pages,
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
	}
}
