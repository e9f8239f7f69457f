package helpers

import (
	"math"

	"github.com/yigit/jobboard/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based
)

// Page is a normalized 1-based page request
type Page struct {
	Number int
	Size   int
}

// NormalizePage applies defaults and bounds to raw page/size values
func NormalizePage(page, size int) Page {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	return Page{Number: page, Size: size}
}

// PageFromQuery normalizes a bound page query
func PageFromQuery(q dto.PageQuery) Page {
	return NormalizePage(q.Page, q.Size)
}

// Offset returns the SQL offset of the page
func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.Size)
}

// Limit returns the SQL limit of the page
func (p Page) Limit() uint64 {
	return uint64(p.Size)
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
func NewPaginationInfo(totalItems int64, p Page) dto.PaginationInfo {
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(p.Size)))
	}

	return dto.PaginationInfo{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		PageSize:    p.Size,
		TotalItems:  totalItems,
	}
}

// NewPaginatedResponse wraps a page of items with its metadata
func NewPaginatedResponse(items interface{}, totalItems int64, p Page) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: NewPaginationInfo(totalItems, p),
	}
}
