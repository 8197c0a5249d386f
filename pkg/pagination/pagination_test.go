package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func listRequest(t *testing.T, query string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "/api/v1/expenses"+query, nil)
}

func TestFromRequest_Defaults(t *testing.T) {
	p := FromRequest(listRequest(t, ""))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_CustomValues(t *testing.T) {
	p := FromRequest(listRequest(t, "?page=3&per_page=50"))

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_InvalidValuesFallBack(t *testing.T) {
	for _, query := range []string{"?page=-1", "?page=0", "?page=abc", "?per_page=0", "?per_page=-5"} {
		p := FromRequest(listRequest(t, query))
		assert.Equal(t, 1, p.Page, "query %s", query)
		assert.Equal(t, 20, p.PerPage, "query %s", query)
	}
}

func TestFromRequest_PerPageCap(t *testing.T) {
	p := FromRequest(listRequest(t, "?per_page=200"))
	assert.Equal(t, 20, p.PerPage)

	p = FromRequest(listRequest(t, "?per_page=100"))
	assert.Equal(t, 100, p.PerPage)
}

func TestFromRequest_OffsetCalculation(t *testing.T) {
	tests := []struct {
		query  string
		offset int
	}{
		{"?page=1&per_page=10", 0},
		{"?page=2&per_page=10", 10},
		{"?page=3&per_page=25", 50},
		{"?page=5&per_page=20", 80},
	}
	for _, tt := range tests {
		p := FromRequest(listRequest(t, tt.query))
		assert.Equal(t, tt.offset, p.Offset, "query %s", tt.query)
	}
}

func TestNewResult_SinglePage(t *testing.T) {
	data := []string{"rent", "groceries", "transit"}
	result := NewResult(data, 3, Params{Page: 1, PerPage: 10})

	assert.Equal(t, data, result.Data)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}

func TestNewResult_MiddlePage(t *testing.T) {
	result := NewResult([]string{"a", "b"}, 10, Params{Page: 2, PerPage: 2, Offset: 2})

	assert.Equal(t, 5, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestNewResult_LastPartialPage(t *testing.T) {
	result := NewResult([]string{"a"}, 11, Params{Page: 3, PerPage: 5, Offset: 10})

	assert.Equal(t, 3, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestNewResult_Empty(t *testing.T) {
	result := NewResult([]string{}, 0, Params{Page: 1, PerPage: 20})

	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}
