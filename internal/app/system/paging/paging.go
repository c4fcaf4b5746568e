// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/dalemusser/waffle/pantry/query"
)

// Default page sizes per resource.
const (
	DefaultLimit = 10 // users, donation requests, funds
	BlogLimit    = 6
)

// DefaultMaxLimit caps the page size a client may ask for.
const DefaultMaxLimit = 100

var maxLimit atomic.Int64

func init() { maxLimit.Store(DefaultMaxLimit) }

// SetMaxLimit overrides the page size cap. Values < 1 are ignored.
// Call during startup, before handlers are registered.
func SetMaxLimit(n int) {
	if n >= 1 {
		maxLimit.Store(int64(n))
	}
}

// MaxLimit returns the current page size cap.
func MaxLimit() int { return int(maxLimit.Load()) }

// Params is a 1-based page number and page size.
type Params struct {
	Page  int
	Limit int
}

// New normalizes raw values: page < 1 becomes 1, limit < 1 becomes
// defaultLimit, and limit is clamped to MaxLimit. page is clamped so Skip
// cannot overflow; such a page is simply empty.
func New(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if m := MaxLimit(); limit > m {
		limit = m
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit}
}

// Parse reads the "page" and "limit" query parameters.
// Missing or non-numeric values fall back to the defaults.
func Parse(r *http.Request, defaultLimit int) Params {
	return New(atoi(query.Get(r, "page")), atoi(query.Get(r, "limit")), defaultLimit)
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Skip returns the number of documents before this page.
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// PageCount returns ceil(total/limit).
func PageCount(total int64, limit int) int64 {
	if limit < 1 || total <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}
