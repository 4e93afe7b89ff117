// Package ui holds the user-facing strings and formatting shared by the
// HTML and terminal fronts.
package ui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/catalog-view/internal/domain/product"
)

// Labels are the literal strings shown to users.
type Labels struct {
	Title             string
	SearchPlaceholder string
	SearchButton      string
	SortDefault       string
	SortPriceAsc      string
	SortPriceDesc     string
	SortButton        string
	// PageSize is a format with one %d verb, e.g. "%d Sản phẩm".
	PageSize     string
	PageSizeBtn  string
	Prev         string
	Next         string
	NoResults    string
	NetworkError string
	Retry        string
	DecodeError  string
}

// DefaultLabels returns the Vietnamese labels.
func DefaultLabels() Labels {
	return Labels{
		Title:             "Danh sách sản phẩm",
		SearchPlaceholder: "Tìm kiếm sản phẩm",
		SearchButton:      "Tìm",
		SortDefault:       "Sắp xếp theo giá",
		SortPriceAsc:      "Từ thấp đến cao",
		SortPriceDesc:     "Từ cao đến thấp",
		SortButton:        "Sắp xếp",
		PageSize:          "%d Sản phẩm",
		PageSizeBtn:       "Áp dụng",
		Prev:              "Pre",
		Next:              "Next",
		NoResults:         "Không tìm thấy sản phẩm nào",
		NetworkError:      "Không thể tải danh sách sản phẩm",
		Retry:             "Thử lại",
		DecodeError:       "Đã xảy ra lỗi, vui lòng thử lại sau",
	}
}

// SortLabel returns the label of a sort mode.
func (l Labels) SortLabel(m product.SortMode) string {
	switch m {
	case product.SortPriceAsc:
		return l.SortPriceAsc
	case product.SortPriceDesc:
		return l.SortPriceDesc
	default:
		return l.SortDefault
	}
}

// PageSizeLabel returns the label of a page size option.
func (l Labels) PageSizeLabel(n int) string {
	return fmt.Sprintf(l.PageSize, n)
}

// Price formats a price the way cards show it, e.g. "$9.99" or "$20".
func Price(p decimal.Decimal) string {
	return "$" + p.String()
}

// PageIndicator formats the "{page} / {totalPages}" indicator.
func PageIndicator(page, totalPages int) string {
	return fmt.Sprintf("%d / %d", page, totalPages)
}

// WithDefaults fills every empty label from DefaultLabels, so a partial
// override only replaces what it sets. A PageSize without a single %d verb
// is replaced by the default.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&l.Title, d.Title},
		{&l.SearchPlaceholder, d.SearchPlaceholder},
		{&l.SearchButton, d.SearchButton},
		{&l.SortDefault, d.SortDefault},
		{&l.SortPriceAsc, d.SortPriceAsc},
		{&l.SortPriceDesc, d.SortPriceDesc},
		{&l.SortButton, d.SortButton},
		{&l.PageSize, d.PageSize},
		{&l.PageSizeBtn, d.PageSizeBtn},
		{&l.Prev, d.Prev},
		{&l.Next, d.Next},
		{&l.NoResults, d.NoResults},
		{&l.NetworkError, d.NetworkError},
		{&l.Retry, d.Retry},
		{&l.DecodeError, d.DecodeError},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
	// PageSize is a format and must take exactly the size.
	if strings.Count(l.PageSize, "%") != 1 || !strings.Contains(l.PageSize, "%d") {
		l.PageSize = d.PageSize
	}
	return l
}
