// Package view implements the catalog view: one explicit state object
// updated only through named transitions.
package view

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/catalog-view/internal/domain/product"
)

// ErrSuperseded is returned by a fetching transition whose response arrived
// after a newer fetch was issued. Its response is discarded.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// ErrInvalidPageSize is returned by SetPageSize for sizes outside
// product.PageSizes.
var ErrInvalidPageSize = errors.New("invalid page size")

// View holds the state of one catalog view. It is safe for concurrent use.
//
// Every fetch gets a sequence number; only the response of the latest issued
// fetch is applied, and issuing a fetch cancels the previous one.
type View struct {
	fetcher product.Fetcher

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
}

// New creates a view with the given settings. Settings are coerced: pages
// below 1, unknown sizes and unknown sort modes fall back to defaults.
// Nothing is fetched until Load is called.
func New(fetcher product.Fetcher, s Settings) *View {
	return &View{
		fetcher: fetcher,
		state: State{
			Settings:   s.normalize(),
			TotalPages: 1,
			Status:     StatusIdle,
		},
	}
}

// State returns a snapshot of the view.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state.clone()
}

// Load fetches the current page and, if no newer fetch was issued meanwhile,
// replaces the page and recomputes the displayed list with the current
// search text and sort mode. A page past the last one is moved to the last
// page and fetched again.
//
// Fetch failures are recorded in the state and also returned.
func (v *View) Load(ctx context.Context) error {
	refetch, err := v.load(ctx)
	if err != nil || !refetch {
		return err
	}
	_, err = v.load(ctx)
	return err
}

// load runs one fetch. It reports whether the page was clamped to the last
// page and needs fetching again.
func (v *View) load(ctx context.Context) (bool, error) {
	v.mu.Lock()
	req := product.PageRequest{Page: v.state.Page, Size: v.state.PageSize}
	seq, ctx := v.begin(ctx)
	v.mu.Unlock()

	page, err := v.fetcher.Fetch(ctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		return false, ErrSuperseded
	}
	v.cancel()
	v.cancel = nil

	if err != nil {
		v.state.fail(err)
		return false, errors.Wrap(err, "fetch page")
	}
	v.state.apply(page)
	if v.state.Page > v.state.TotalPages {
		v.state.Page = v.state.TotalPages
		return true, nil
	}
	return false, nil
}

// begin registers a new fetch and cancels the one in flight. Must be called
// with v.mu held.
func (v *View) begin(ctx context.Context) (uint64, context.Context) {
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	ctx, v.cancel = context.WithCancel(ctx)
	return v.seq, ctx
}

// NextPage moves to the next page and fetches it. It is a no-op on the last
// page.
func (v *View) NextPage(ctx context.Context) error {
	v.mu.Lock()
	if !v.state.HasNext() {
		v.mu.Unlock()
		return nil
	}
	v.state.Page++
	v.mu.Unlock()

	return v.Load(ctx)
}

// PrevPage moves to the previous page and fetches it. It is a no-op on the
// first page.
func (v *View) PrevPage(ctx context.Context) error {
	v.mu.Lock()
	if !v.state.HasPrev() {
		v.mu.Unlock()
		return nil
	}
	v.state.Page--
	v.mu.Unlock()

	return v.Load(ctx)
}

// SetPageSize adopts size, resets to page 1 and fetches.
func (v *View) SetPageSize(ctx context.Context, size int) error {
	if !product.ValidPageSize(size) {
		return errors.Wrapf(ErrInvalidPageSize, "size %d", size)
	}

	v.mu.Lock()
	v.state.PageSize = size
	v.state.Page = 1
	v.mu.Unlock()

	return v.Load(ctx)
}

// Search sets the search text and recomputes the displayed list from the
// full current page, keeping the sort mode.
func (v *View) Search(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state.Search = text
	v.state.derive()
}

// SetSort sets the sort mode and recomputes the displayed list. Selecting
// product.SortDefault also clears the search text, restoring the full page
// in its original order.
func (v *View) SetSort(mode product.SortMode) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state.Sort = product.ParseSortMode(string(mode))
	if v.state.Sort == product.SortDefault {
		v.state.Search = ""
	}
	v.state.derive()
}
