package shared

// Filter carries list pagination, ordering and equality-filter options. The
// zero value is usable; out-of-range pages and sizes are clamped by Limit
// and Offset.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Filters  map[string]any
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// DefaultFilter returns the first page, newest first.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: defaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Limit returns the page size clamped to [1, 200].
func (f Filter) Limit() int {
	if f.PageSize <= 0 || f.PageSize > maxPageSize {
		return defaultPageSize
	}
	return f.PageSize
}

// Offset returns the row offset for the requested page.
func (f Filter) Offset() int {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * f.Limit()
}
