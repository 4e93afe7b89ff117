package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/view"
)

// CatalogJSON serves the catalog view as JSON. It accepts the same query
// parameters as CatalogPage.
func (h *Handler) CatalogJSON(w http.ResponseWriter, r *http.Request) {
	st := h.loadView(r.Context(), r.URL.Query())

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeState(e, st)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(st))
	_, _ = w.Write(e.Bytes())
}

func encodeState(e *jx.Encoder, st view.State) {
	e.ObjStart()
	e.FieldStart("page")
	e.Int(st.Page)
	e.FieldStart("pageSize")
	e.Int(st.PageSize)
	e.FieldStart("totalPages")
	e.Int(st.TotalPages)
	e.FieldStart("total")
	e.Int(st.Total)
	e.FieldStart("search")
	e.Str(st.Search)
	e.FieldStart("sort")
	e.Str(string(st.Sort))
	e.FieldStart("status")
	e.Str(string(st.Status))
	if msg := errorMessage(st.Status); msg != "" {
		e.FieldStart("error")
		e.Str(msg)
	}
	e.FieldStart("hasPrev")
	e.Bool(st.HasPrev())
	e.FieldStart("hasNext")
	e.Bool(st.HasNext())
	e.FieldStart("products")
	e.ArrStart()
	for _, p := range st.Displayed {
		encodeProduct(e, p)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("thumbnail")
	e.Str(p.Thumbnail)
	e.FieldStart("price")
	e.Num(jx.Num(p.Price.String()))
	e.ObjEnd()
}

// errorMessage returns a client-facing message for failed statuses. Upstream
// error details stay in the logs.
func errorMessage(s view.Status) string {
	switch s {
	case view.StatusNetworkError:
		return "catalog is unavailable, retry later"
	case view.StatusDecodeError:
		return "catalog returned an invalid response"
	default:
		return ""
	}
}
