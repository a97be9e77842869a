package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		pageStr     string
		perPageStr  string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "", "", 1, DefaultPerPage},
		{"explicit", "3", "50", 3, 50},
		{"garbage", "abc", "xyz", 1, DefaultPerPage},
		{"zero page", "0", "10", 1, 10},
		{"negative", "-2", "-5", 1, DefaultPerPage},
		{"per_page capped", "1", "500", 1, DefaultPerPage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, perPage := ParsePageParams(tc.pageStr, tc.perPageStr)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantPerPage, perPage)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, int64(25), p.Total)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, 10, p.Offset())

	first := NewPagination(1, 10, 25)
	assert.False(t, first.HasPrev)
	assert.Equal(t, 0, first.Offset())

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.Pages)
	assert.False(t, empty.HasNext)
}
