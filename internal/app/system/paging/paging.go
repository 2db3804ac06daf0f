// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 100

// MaxPageSize bounds the "limit" query parameter.
const MaxPageSize = 500

// Page is a parsed limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// Parse reads "limit" and "offset" from the query string. Missing or
// invalid values fall back to PageSize and 0; limit is capped at MaxPageSize.
func Parse(r *http.Request) Page {
	p := Page{Limit: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if n, err := strconv.Atoi(query.Get(r, "offset")); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}

// LimitPlusOne returns Limit+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func (p Page) LimitPlusOne() int64 { return int64(p.Limit + 1) }

// NextOffset is the offset of the following page.
func (p Page) NextOffset() int { return p.Offset + p.Limit }

// TrimPage trims rows fetched with LimitPlusOne down to Limit and reports
// whether another page exists.
func TrimPage[T any](rows *[]T, p Page) (hasNext bool) {
	if len(*rows) > p.Limit {
		*rows = (*rows)[:p.Limit]
		return true
	}
	return false
}
