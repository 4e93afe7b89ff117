package product

import (
	"slices"
	"strings"
)

// SortMode selects the order of the displayed products.
type SortMode string

// Sort modes offered to the user.
const (
	SortDefault   SortMode = "default"
	SortPriceAsc  SortMode = "price-asc"
	SortPriceDesc SortMode = "price-desc"
)

// SortModes lists the sort modes in the order they are offered.
var SortModes = []SortMode{SortDefault, SortPriceAsc, SortPriceDesc}

// ParseSortMode coerces s to a SortMode. Unknown values map to SortDefault.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(s); m {
	case SortPriceAsc, SortPriceDesc:
		return m
	default:
		return SortDefault
	}
}

// Filter returns the products whose title contains query, ignoring case.
// An empty query returns every product. The input is never modified.
func Filter(products []Product, query string) []Product {
	if query == "" {
		return slices.Clone(products)
	}
	q := strings.ToLower(query)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a copy of products ordered by mode. Price sorts are stable,
// so equal prices keep their input order. SortDefault keeps the input order.
func Sort(products []Product, mode SortMode) []Product {
	out := slices.Clone(products)
	switch mode {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Product) int {
			return b.Price.Cmp(a.Price)
		})
	}
	return out
}

// Derive computes the displayed subset of a fetched page: filter by query,
// then order by mode. It always starts from the full page.
func Derive(page []Product, query string, mode SortMode) []Product {
	return Sort(Filter(page, query), mode)
}
