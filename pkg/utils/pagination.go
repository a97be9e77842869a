package utils

import "strconv"

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is the envelope returned alongside every paginated list.
type Pagination struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// ParsePageParams parses page/per_page query values, falling back to sane
// defaults on garbage or out-of-range input.
func ParsePageParams(pageStr, perPageStr string) (page, perPage int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err = strconv.Atoi(perPageStr)
	if err != nil || perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func NewPagination(page, perPage int, total int64) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// Offset returns the row offset for the given page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
