package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/ui"
	"github.com/xenking/catalog-view/internal/view"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Labels      ui.Labels
	State       view.State
	Indicator   string
	PrevURL     string
	NextURL     string
	RetryURL    string
	SortOptions []option
	SizeOptions []option
}

// CatalogPage renders the catalog view as HTML.
func (h *Handler) CatalogPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.loadView(ctx, r.URL.Query())

	data := pageData{
		Labels:    h.labels,
		State:     st,
		Indicator: ui.PageIndicator(st.Page, st.TotalPages),
		RetryURL:  pageLink(st.Settings, st.Page),
	}
	if st.HasPrev() {
		data.PrevURL = pageLink(st.Settings, st.Page-1)
	}
	if st.HasNext() {
		data.NextURL = pageLink(st.Settings, st.Page+1)
	}
	for _, m := range product.SortModes {
		data.SortOptions = append(data.SortOptions, option{
			Value:    string(m),
			Label:    h.labels.SortLabel(m),
			Selected: m == st.Sort,
		})
	}
	for _, n := range product.PageSizes {
		data.SizeOptions = append(data.SizeOptions, option{
			Value:    strconv.Itoa(n),
			Label:    h.labels.PageSizeLabel(n),
			Selected: n == st.PageSize,
		})
	}

	// Render into a buffer so a template failure can still produce a 500.
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		zctx.From(ctx).Error("Render catalog page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode(st))
	_, _ = buf.WriteTo(w)
}

// statusCode maps the view status to an HTTP status. Upstream failures are
// reported as 502; an empty catalog is still a successful page.
func statusCode(st view.State) int {
	switch st.Status {
	case view.StatusNetworkError, view.StatusDecodeError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

func pageLink(s view.Settings, page int) string {
	s.Page = page
	if q := encodeQuery(s); q != "" {
		return "/?" + q
	}
	return "/"
}
