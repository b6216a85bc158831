package query

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the neighbours of the current page that actually exist.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// NewPagination computes the page descriptors for q given the number of
// records matching q's filters. total must be the filtered count, not the
// size of the whole collection.
func NewPagination(q Query, total int64) Pagination {
	var p Pagination
	start := q.Skip()
	end := int64(q.Page) * int64(q.Limit)

	if end < total {
		p.Next = &PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if start > 0 {
		p.Prev = &PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}
