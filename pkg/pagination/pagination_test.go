// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khanhdoan/mailfold/pkg/pagination"
)

/*
TestNewMeta verifies page-count arithmetic, including the ceil boundary.
*/
func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int
		wantPages int
	}{
		{"exact_fit", 1, 10, 100, 10},
		{"partial_last_page", 1, 10, 101, 11},
		{"single_item", 1, 10, 1, 1},
		{"empty", 1, 10, 0, 0},
		{"zero_limit_guard", 1, 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := pagination.NewMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
			assert.Equal(t, tt.total, meta.Total)
		})
	}
}

/*
TestParams_Offset verifies the 1-indexed page to SQL offset conversion.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, pagination.Params{Page: 10, Limit: 10}.Offset())
}

/*
TestFromRequest verifies query parsing and clamping behavior.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/templates", 1, 20},
		{"explicit", "/templates?page=3&limit=50", 3, 50},
		{"negative_page", "/templates?page=-2", 1, 20},
		{"excessive_limit", "/templates?limit=9999", 1, 20},
		{"garbage_values", "/templates?page=abc&limit=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", tt.url, nil)
			params := pagination.FromRequest(request)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}
