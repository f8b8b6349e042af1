// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used when the client does not ask for one.
const DefaultLimit = 10

// MaxLimit caps client-requested page sizes.
const MaxLimit = 100

// MaxPage caps client-requested page numbers.
const MaxPage = math.MaxInt32

// Page is a 1-based offset page request.
type Page struct {
	Number int
	Limit  int
}

// Parse reads ?page= and ?limit= from the request. Missing or invalid values
// fall back to page 1 and DefaultLimit; limits above MaxLimit and pages above
// MaxPage are clamped.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, Limit: DefaultLimit}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Number > MaxPage {
		p.Number = MaxPage
	}
	return p
}

// Skip returns the number of documents before this page. It saturates at
// math.MaxInt64 instead of overflowing.
func (p Page) Skip() int64 {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	n, limit := int64(p.Number-1), int64(p.Limit)
	if n > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return n * limit
}

// Apply sets skip and limit on find options.
func (p Page) Apply(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// Meta is the pagination block returned alongside list results.
type Meta struct {
	Current    int   `json:"current"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// MetaFor describes this page given the total number of matching documents.
func (p Page) MetaFor(total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Meta{Current: p.Number, PageSize: p.Limit, Total: total, TotalPages: pages}
}

// Sort is a validated sort request.
type Sort struct {
	Field string
	Order int // 1 ascending, -1 descending
}

// ParseSort reads ?sortBy= and ?sortOrder=. sortBy is mapped through allowed
// (request name -> stored field); unknown names use def. Order defaults to
// descending, matching the "newest first" admin lists.
func ParseSort(r *http.Request, allowed map[string]string, def string) Sort {
	s := Sort{Field: def, Order: -1}
	if f, ok := allowed[query.Get(r, "sortBy")]; ok {
		s.Field = f
	}
	if query.Get(r, "sortOrder") == "asc" {
		s.Order = 1
	}
	return s
}

// Doc returns the sort document, with _id as a stable tiebreaker.
func (s Sort) Doc() bson.D {
	return bson.D{{Key: s.Field, Value: s.Order}, {Key: "_id", Value: s.Order}}
}
