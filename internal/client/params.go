// ABOUTME: Query parameter sets for list endpoints
// ABOUTME: Zero values are omitted so the backend applies its own defaults

package client

import (
	"net/url"
	"strconv"
)

// PageParams selects one page of a listing. Backend defaults are page 1,
// size 20; size is bounded to 1..100 server-side.
type PageParams struct {
	Page int
	Size int
}

func (p PageParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	return v
}

// ListParams filters the public material listing
type ListParams struct {
	PageParams
	Category string
	MapName  string
	Search   string
}

func (p ListParams) values() url.Values {
	v := p.PageParams.values()
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.MapName != "" {
		v.Set("map_name", p.MapName)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}
