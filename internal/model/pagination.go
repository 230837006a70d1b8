package model

// Pagination is the metadata returned alongside a page of results.  It is
// derived from a total row count and the requested page, never stored.
type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int64 `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPagination computes page metadata.  TotalPages is ceil(total/perPage)
// and zero for an empty collection.  The requested page is echoed back even
// when it lies beyond the last page.
func NewPagination(total int64, page, perPage int) Pagination {
	var pages int64
	if perPage > 0 && total > 0 {
		pages = (total + int64(perPage) - 1) / int64(perPage)
	}
	return Pagination{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		PerPage:     perPage,
		HasNext:     int64(page) < pages,
		HasPrev:     page > 1,
	}
}
