package model

// MaxPage is the highest page number a listing accepts.
const MaxPage = 100000

// PageRequest selects a 1-based page of a listing.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalise clamps the request to sane bounds.
func (r PageRequest) Normalise(defaultLimit, maxLimit int) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	return r
}

// Offset returns the number of rows skipped before this page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageMeta mirrors the pagination metadata of the storefront API.
type PageMeta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// NewPage builds a page and its metadata from the page items and the total count.
func NewPage[T any](items []T, totalItems int, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 1
	if req.Limit > 0 && totalItems > 0 {
		totalPages = (totalItems + req.Limit - 1) / req.Limit
	}
	return &Page[T]{
		Items: items,
		Meta: PageMeta{
			TotalItems:   totalItems,
			ItemCount:    len(items),
			ItemsPerPage: req.Limit,
			TotalPages:   totalPages,
			CurrentPage:  req.Page,
		},
	}
}

// Paginate slices an in-memory list into the requested page.
func Paginate[T any](all []T, req PageRequest) *Page[T] {
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.Limit
	if end > len(all) {
		end = len(all)
	}
	return NewPage(append([]T(nil), all[start:end]...), len(all), req)
}
