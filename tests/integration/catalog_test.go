//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

// The fixture upstream serves the same three products for every page and
// reports a total of 30.

func TestCatalogJSON_Default(t *testing.T) {
	resp := doGet(t, "/api/catalog")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeJSON[catalogResponse](t, resp)

	if body.Status != "ok" {
		t.Fatalf("status: got %q, want ok", body.Status)
	}
	if body.Page != 1 || body.PageSize != 12 || body.TotalPages != 3 || body.Total != 30 {
		t.Errorf("pagination: got page=%d size=%d totalPages=%d total=%d",
			body.Page, body.PageSize, body.TotalPages, body.Total)
	}
	if body.HasPrev || !body.HasNext {
		t.Errorf("bounds: got hasPrev=%v hasNext=%v", body.HasPrev, body.HasNext)
	}
	if len(body.Products) != 3 {
		t.Fatalf("products: got %d, want 3", len(body.Products))
	}
	if body.Products[0].Title != "Essence Mascara Lash Princess" {
		t.Errorf("first product: got %q", body.Products[0].Title)
	}
}

func TestCatalogJSON_SortAndSearch(t *testing.T) {
	resp := doGet(t, "/api/catalog?sort=price-desc&q=e")
	defer resp.Body.Close()

	body := decodeJSON[catalogResponse](t, resp)
	if body.Sort != "price-desc" || body.Search != "e" {
		t.Fatalf("settings: got sort=%q search=%q", body.Sort, body.Search)
	}

	var prices []string
	for _, p := range body.Products {
		prices = append(prices, p.Price.String())
	}
	want := []string{"19.99", "14.99", "9.99"}
	if strings.Join(prices, ",") != strings.Join(want, ",") {
		t.Errorf("prices: got %v, want %v", prices, want)
	}
}

func TestCatalogJSON_NoMatches(t *testing.T) {
	resp := doGet(t, "/api/catalog?q=zzz")
	defer resp.Body.Close()

	body := decodeJSON[catalogResponse](t, resp)
	if resp.StatusCode != http.StatusOK || len(body.Products) != 0 {
		t.Fatalf("got status %d with %d products", resp.StatusCode, len(body.Products))
	}
}

func TestCatalogPage_HTML(t *testing.T) {
	resp := doGet(t, "/?page=2&size=24")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type: got %q", ct)
	}
	html := readBody(t, resp)
	for _, want := range []string{
		"Danh sách sản phẩm",
		"Red Lipstick",
		`<span id="page-indicator">2 / 2</span>`,
		`rel="prev"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestCatalogPage_Gzip(t *testing.T) {
	resp := doGet(t, "/")
	defer resp.Body.Close()

	// The transport asked for gzip and decoded it transparently.
	if !resp.Uncompressed {
		t.Error("response was not gzip encoded")
	}
	if html := readBody(t, resp); !strings.Contains(html, "Essence Mascara Lash Princess") {
		t.Error("decoded page is missing products")
	}
}
