package view

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/catalog-view/internal/domain/product"
)

// Status summarizes the outcome of the last fetch.
type Status string

// Possible view statuses.
const (
	// StatusIdle means nothing was fetched yet.
	StatusIdle Status = "idle"
	// StatusReady means the last fetch returned products.
	StatusReady Status = "ok"
	// StatusEmpty means the last fetch returned a valid, empty page.
	StatusEmpty Status = "empty"
	// StatusNetworkError means the catalog could not be reached or the
	// fetch was cancelled; retrying may help.
	StatusNetworkError Status = "network_error"
	// StatusDecodeError means the catalog answered with something that is
	// not a catalog page, or the fetch failed for another reason.
	StatusDecodeError Status = "decode_error"
)

// Settings are the user-controlled inputs of a view.
type Settings struct {
	Page     int
	PageSize int
	Search   string
	Sort     product.SortMode
}

// DefaultSettings is where every fresh view starts: page 1, default size,
// no search and default sort.
func DefaultSettings() Settings {
	return Settings{
		Page:     1,
		PageSize: product.DefaultPageSize,
		Sort:     product.SortDefault,
	}
}

// normalize coerces settings the way user input is coerced.
func (s Settings) normalize() Settings {
	req := product.PageRequest{Page: s.Page, Size: s.PageSize}
	req.ApplyDefaults()
	s.Page, s.PageSize = req.Page, req.Size
	s.Sort = product.ParseSortMode(string(s.Sort))
	return s
}

// State is a snapshot of a view.
type State struct {
	Settings

	TotalPages int
	Total      int
	// Products is the full last fetched page in upstream order.
	Products []product.Product
	// Displayed is Products filtered by Search and ordered by Sort.
	Displayed []product.Product

	Status Status
	// Err is the error of the last fetch, if any.
	Err error
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists.
func (s State) HasNext() bool {
	return s.Page < s.TotalPages
}

// NoResults reports whether there is nothing to display while the view is
// otherwise healthy.
func (s State) NoResults() bool {
	return (s.Status == StatusReady || s.Status == StatusEmpty) && len(s.Displayed) == 0
}

// Retryable reports whether refetching may fix the current error.
func (s State) Retryable() bool {
	return s.Status == StatusNetworkError
}

func (s *State) derive() {
	s.Displayed = product.Derive(s.Products, s.Search, s.Sort)
}

func (s *State) apply(p *product.Page) {
	s.Products = p.Products
	s.Total = p.Total
	s.TotalPages = product.TotalPages(p.Total, s.PageSize)
	s.Err = nil
	s.Status = StatusReady
	if len(p.Products) == 0 {
		s.Status = StatusEmpty
		s.Err = product.ErrEmptyResult
	}
	s.derive()
}

func (s *State) fail(err error) {
	s.Products = nil
	s.Displayed = nil
	s.Err = err
	s.Status = classify(err)
}

func classify(err error) Status {
	var netErr *product.NetworkError
	switch {
	case err == nil:
		return StatusReady
	case errors.Is(err, product.ErrEmptyResult):
		return StatusEmpty
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return StatusNetworkError
	default:
		return StatusDecodeError
	}
}

func (s State) clone() State {
	out := s
	out.Products = append([]product.Product(nil), s.Products...)
	out.Displayed = append([]product.Product(nil), s.Displayed...)
	return out
}
