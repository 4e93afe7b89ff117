package handler

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/view"
)

// Query parameters understood by the catalog routes.
const (
	paramPage   = "page"
	paramSize   = "size"
	paramSearch = "q"
	paramSort   = "sort"
	paramAction = "action"
)

// Actions name the control a request was submitted from, so the matching
// view transition can be applied.
const (
	actionSearch = "search"
	actionSort   = "sort"
	actionSize   = "size"
)

// parseQuery reads view settings from a query string. Values that are not
// integers or not in the allowed sets fall back to defaults.
func parseQuery(q url.Values) (view.Settings, string) {
	s := view.DefaultSettings()
	if n, err := strconv.Atoi(q.Get(paramPage)); err == nil {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get(paramSize)); err == nil {
		s.PageSize = n
	}
	s.Search = q.Get(paramSearch)
	s.Sort = product.ParseSortMode(q.Get(paramSort))
	return s, q.Get(paramAction)
}

// encodeQuery is the inverse of parseQuery. Default values are omitted.
func encodeQuery(s view.Settings) string {
	q := url.Values{}
	if s.Page > 1 {
		q.Set(paramPage, strconv.Itoa(s.Page))
	}
	if s.PageSize != product.DefaultPageSize {
		q.Set(paramSize, strconv.Itoa(s.PageSize))
	}
	if s.Search != "" {
		q.Set(paramSearch, s.Search)
	}
	if s.Sort != product.SortDefault {
		q.Set(paramSort, string(s.Sort))
	}
	return q.Encode()
}

// loadView builds a view from the request query, applies the transition of
// the submitted control and fetches the page.
func (h *Handler) loadView(ctx context.Context, q url.Values) view.State {
	settings, action := parseQuery(q)
	v := view.New(h.fetcher, settings)

	var err error
	switch action {
	case actionSize:
		err = v.SetPageSize(ctx, v.State().PageSize)
	case actionSort:
		v.SetSort(settings.Sort)
		err = v.Load(ctx)
	case actionSearch:
		v.Search(settings.Search)
		err = v.Load(ctx)
	default:
		err = v.Load(ctx)
	}

	st := v.State()
	if err != nil && !errors.Is(err, context.Canceled) {
		zctx.From(ctx).Warn("Load catalog page",
			zap.Int("page", st.Page),
			zap.Int("size", st.PageSize),
			zap.String("status", string(st.Status)),
			zap.Error(err),
		)
	}
	return st
}
