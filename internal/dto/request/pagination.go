package request

import (
	"net/url"

	"cineclub/pkg/utils"
)

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// PaginationFromQuery reads page and per_page, defaulting to 1 and 10.
func PaginationFromQuery(q url.Values) PaginatedRequest {
	return PaginatedRequest{
		Page:    utils.QueryInt(q, "page", 1),
		PerPage: utils.QueryInt(q, "per_page", 10),
	}
}

func (p PaginatedRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return 10
	}
	if p.PerPage > 100 {
		return 100
	}
	return p.PerPage
}
