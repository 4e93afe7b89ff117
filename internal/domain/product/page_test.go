package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Offset(t *testing.T) {
	for _, size := range PageSizes {
		for page := 1; page <= 5; page++ {
			req := PageRequest{Page: page, Size: size}
			assert.Equal(t, (page-1)*size, req.Offset(), "page %d size %d", page, size)
		}
	}
}

func TestPageRequest_ApplyDefaults(t *testing.T) {
	req := PageRequest{Page: 0, Size: 7}
	req.ApplyDefaults()
	assert.Equal(t, PageRequest{Page: 1, Size: DefaultPageSize}, req)

	req = PageRequest{Page: 3, Size: 36}
	req.ApplyDefaults()
	assert.Equal(t, PageRequest{Page: 3, Size: 36}, req)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(2, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 9, TotalPages(194, 24))
	assert.Equal(t, 6, TotalPages(194, 36))
	assert.Equal(t, 1, TotalPages(0, 12))
}

func TestValidPageSize(t *testing.T) {
	assert.True(t, ValidPageSize(12))
	assert.True(t, ValidPageSize(24))
	assert.True(t, ValidPageSize(36))
	assert.False(t, ValidPageSize(10))
	assert.False(t, ValidPageSize(0))
}
