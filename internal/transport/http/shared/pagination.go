package shared

import (
	"net/http"
	"strconv"
)

// Pagination carries the validated limit/offset pair for list endpoints.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads the limit and offset query parameters, falling back
// to defaultLimit and clamping to maxLimit. Malformed or negative values are
// ignored rather than rejected.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	p := Pagination{Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		p.Offset = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
