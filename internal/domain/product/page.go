package product

import "slices"

// DefaultPageSize is the page size a fresh view starts with.
const DefaultPageSize = 12

// PageSizes lists the page sizes a user can choose from.
var PageSizes = []int{12, 24, 36}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// PageRequest addresses one page of the catalog. Page is 1-based.
type PageRequest struct {
	Page int
	Size int
}

// ApplyDefaults coerces out-of-range values: pages below 1 become 1 and sizes
// outside PageSizes become DefaultPageSize.
func (r *PageRequest) ApplyDefaults() {
	if r.Page < 1 {
		r.Page = 1
	}
	if !ValidPageSize(r.Size) {
		r.Size = DefaultPageSize
	}
}

// Offset returns the number of items to skip to reach the page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Size
}

// TotalPages returns ceil(total/size). An empty collection still has one
// page so the page indicator never reads "1 / 0".
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
