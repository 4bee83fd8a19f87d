package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestIntQueryParam(t *testing.T) {
	tests := []struct {
		url     string
		wantVal int
		wantOK  bool
	}{
		{"/blobs/abc", -1, true},
		{"/blobs/abc?max_bytes=100", 100, true},
		{"/blobs/abc?max_bytes=0", 0, true},
		{"/blobs/abc?max_bytes=-5", -5, true},
		{"/blobs/abc?max_bytes=ten", 0, false},
		{"/blobs/abc?max_bytes=1.5", 0, false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		val, ok := intQueryParam(r, "max_bytes", -1)
		if ok != tt.wantOK || val != tt.wantVal {
			t.Errorf("intQueryParam(%q) = (%d, %v), want (%d, %v)", tt.url, val, ok, tt.wantVal, tt.wantOK)
		}
	}
}

func TestPaginationParams(t *testing.T) {
	tests := []struct {
		url        string
		wantLimit  int
		wantOffset int
	}{
		{"/blobs", 50, 0},
		{"/blobs?limit=10&offset=20", 10, 20},
		{"/blobs?limit=0", 50, 0},
		{"/blobs?limit=9999", 50, 0},
		{"/blobs?offset=-1", 50, 0},
		{"/blobs?limit=bogus", 50, 0},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		limit, offset := paginationParams(r)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("paginationParams(%q) = (%d, %d), want (%d, %d)", tt.url, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}
