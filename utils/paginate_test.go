package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name         string
		page         string
		pageSize     string
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", page: "", pageSize: "", wantPage: 1, wantPageSize: 10},
		{name: "explicit values", page: "3", pageSize: "25", wantPage: 3, wantPageSize: 25},
		{name: "garbage input", page: "abc", pageSize: "xyz", wantPage: 1, wantPageSize: 10},
		{name: "negative values", page: "-1", pageSize: "-5", wantPage: 1, wantPageSize: 10},
		{name: "page size capped", page: "1", pageSize: "500", wantPage: 1, wantPageSize: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := ParsePage(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, int64(25), p.TotalRows)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPagination(1, 10, 0)
	assert.Zero(t, empty.TotalPages)
}
