package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Page
	}{
		{"defaults", "", Page{Limit: PageSize}},
		{"explicit", "?limit=20&offset=40", Page{Limit: 20, Offset: 40}},
		{"capped", "?limit=100000", Page{Limit: MaxPageSize}},
		{"invalid", "?limit=abc&offset=-3", Page{Limit: PageSize}},
		{"zero limit", "?limit=0", Page{Limit: PageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/audit"+tt.query, nil)
			if got := Parse(r); got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTrimPage(t *testing.T) {
	p := Page{Limit: 3}
	if p.LimitPlusOne() != 4 {
		t.Errorf("LimitPlusOne = %d", p.LimitPlusOne())
	}

	rows := []int{1, 2, 3, 4}
	if !TrimPage(&rows, p) || len(rows) != 3 {
		t.Errorf("rows = %v, want 3 with hasNext", rows)
	}

	rows = []int{1, 2}
	if TrimPage(&rows, p) || len(rows) != 2 {
		t.Errorf("rows = %v, want untouched", rows)
	}

	if (Page{Limit: 10, Offset: 20}).NextOffset() != 30 {
		t.Error("NextOffset")
	}
}
