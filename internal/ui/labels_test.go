package ui

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/catalog-view/internal/domain/product"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "$20", Price(decimal.NewFromInt(20)))
	assert.Equal(t, "$9.99", Price(decimal.RequireFromString("9.99")))
}

func TestPageIndicator(t *testing.T) {
	assert.Equal(t, "1 / 1", PageIndicator(1, 1))
	assert.Equal(t, "3 / 17", PageIndicator(3, 17))
}

func TestLabels(t *testing.T) {
	l := DefaultLabels()

	assert.Equal(t, "24 Sản phẩm", l.PageSizeLabel(24))
	assert.Equal(t, l.SortPriceAsc, l.SortLabel(product.SortPriceAsc))
	assert.Equal(t, l.SortPriceDesc, l.SortLabel(product.SortPriceDesc))
	assert.Equal(t, l.SortDefault, l.SortLabel(product.SortDefault))
}

func TestLabels_WithDefaults(t *testing.T) {
	l := Labels{Title: "Catalog", Next: "Tiếp"}.WithDefaults()

	assert.Equal(t, "Catalog", l.Title)
	assert.Equal(t, "Tiếp", l.Next)
	assert.Equal(t, DefaultLabels().Prev, l.Prev)
	assert.Equal(t, DefaultLabels().PageSize, l.PageSize)
	assert.Equal(t, DefaultLabels(), Labels{}.WithDefaults())
}

func TestLabels_WithDefaultsPageSizeFormat(t *testing.T) {
	for _, format := range []string{"Items", "%s items", "%d of %d", "100% %d"} {
		l := Labels{PageSize: format}.WithDefaults()
		assert.Equal(t, "12 Sản phẩm", l.PageSizeLabel(12), format)
	}

	l := Labels{PageSize: "%d items"}.WithDefaults()
	assert.Equal(t, "12 items", l.PageSizeLabel(12))
}
