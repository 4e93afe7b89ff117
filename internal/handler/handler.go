package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/ui"
)

//go:embed templates/*.html
var templates embed.FS

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// Labels are the user-facing strings. Zero value means ui.DefaultLabels.
	Labels *ui.Labels
}

// Handler serves the catalog view as an HTML page and as JSON. Every request
// builds a fresh view from its URL, so the URL is the whole view state.
type Handler struct {
	fetcher product.Fetcher
	labels  ui.Labels
	page    *template.Template
}

// NewHandler constructs a Handler that reads the catalog through fetcher.
func NewHandler(cfg HandlerConfig, fetcher product.Fetcher) *Handler {
	labels := ui.DefaultLabels()
	if cfg.Labels != nil {
		labels = *cfg.Labels
	}

	page := template.Must(template.New("catalog.html").
		Funcs(template.FuncMap{"price": ui.Price}).
		ParseFS(templates, "templates/catalog.html"))

	return &Handler{
		fetcher: fetcher,
		labels:  labels,
		page:    page,
	}
}

// Register adds the catalog routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.CatalogPage)
	mux.HandleFunc("GET /api/catalog", h.CatalogJSON)
}
