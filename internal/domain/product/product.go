package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a read-only catalog item as returned by the upstream catalog.
type Product struct {
	// ID is opaque and unique within a page.
	ID        string
	Title     string
	Thumbnail string
	Price     decimal.Decimal
}

// Page is the result of one catalog fetch. It is replaced wholesale on every
// fetch and never merged with a previous page.
type Page struct {
	Products []Product
	// Total is the item count of the whole remote collection.
	Total int
	Skip  int
	Limit int
}

// Fetcher loads one page of the remote catalog.
type Fetcher interface {
	Fetch(ctx context.Context, req PageRequest) (*Page, error)
}
