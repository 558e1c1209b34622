package api

import (
	"net/http"
	"strconv"
)

// pageParams holds parsed pagination values from query params.
type pageParams struct {
	Page   int
	Limit  int
	Offset int
}

// pageMeta is returned next to every list.
type pageMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// parsePage reads ?page= and ?limit=, clamping limit to maxLimit.
func parsePage(r *http.Request, defaultLimit, maxLimit int) pageParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return pageParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func (p pageParams) meta(total int) pageMeta {
	pages := (total + p.Limit - 1) / p.Limit
	if pages < 1 {
		pages = 1
	}
	return pageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasMore:    p.Page < pages,
	}
}
