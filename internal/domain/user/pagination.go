package user

import "math"

// Paging limits applied by list operations.
const (
	DefaultPageLimit int64 = 10
	MaxPageLimit     int64 = 100
)

// Pagination describes one page of an insertion-ordered listing.
type Pagination struct {
	Total      int64 `json:"total"`       // Total number of matching records
	Page       int64 `json:"page"`        // Current page number (1-based)
	Limit      int64 `json:"limit"`       // Number of records per page
	TotalPages int64 `json:"total_pages"` // Total number of pages
}

// NewPagination creates a new Pagination instance with calculated total pages.
func NewPagination(total, page, limit int64) *Pagination {
	totalPages := limit
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// NormalizePage clamps page and limit to the supported range.
func NormalizePage(page, limit int64) (int64, int64) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// Offset returns the index of the first record on the given page. It
// saturates at math.MaxInt64 when the page lies beyond any addressable
// record, and is 0 for a non-positive limit.
func Offset(page, limit int64) int64 {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return (page - 1) * limit
}
