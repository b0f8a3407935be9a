// Package service implements the application rules on top of the repository
// interfaces: input validation, ownership checks, pagination, and the
// composite operations handlers expose.
package service

import "github.com/rahat/chatterpoint/internal/repository"

const (
	defaultPage  = 1
	defaultLimit = 5
)

// PageRequest carries the raw page/limit values parsed from a request. Zero
// or negative values fall back to the defaults (page 1, 5 items).
type PageRequest struct {
	Page  int
	Limit int
}

// normalize clamps the request to valid values and returns the page, the
// limit, and the row offset of the first item.
func (p PageRequest) normalize() (page, limit, offset int) {
	page = p.Page
	if page < 1 {
		page = defaultPage
	}
	limit = p.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

func (p PageRequest) listOptions(sort string) repository.ListOptions {
	_, limit, offset := p.normalize()
	return repository.ListOptions{Limit: limit, Offset: offset, Sort: sort}
}

// PageInfo describes the full result set a page was sliced from. TotalCount
// is always computed over the same filter as the page itself.
type PageInfo struct {
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// pageInfo computes the page metadata for a total of `total` matching
// records. TotalPages is the ceiling of total/limit; an empty set has zero
// pages.
func pageInfo(req PageRequest, total int) PageInfo {
	page, limit, _ := req.normalize()
	return PageInfo{
		TotalCount:  total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}
}
