package models

// Sort keys accepted by the list endpoint.
const (
	SortNewest    = "newest"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// ValidSort reports whether s is one of the accepted sort keys.
func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// PageSizes lists the accepted page sizes.
var PageSizes = []int{12, 24, 36, 48}

// ValidPageSize reports whether n is one of the accepted page sizes.
func ValidPageSize(n int) bool {
	for _, size := range PageSizes {
		if n == size {
			return true
		}
	}
	return false
}

// ListParams carries the raw, untrusted query parameters of a list request.
// A nil field means the parameter was not present on the request; values
// are the literal strings from the wire, validated and coerced by the
// catalog service.
type ListParams struct {
	Category  *string
	Sort      *string
	Page      *string
	PageSize  *string
	Available *string
	Featured  *string
}

// ListQuery is a validated, coerced list request. Nil filter fields mean
// "no filter".
type ListQuery struct {
	Category  *string
	Available *bool
	Featured  *bool
	Sort      string
	Page      int
	PageSize  int
}

// Pagination describes the page window of a list response. Total counts the
// filtered records before pagination.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// ProductList is the list endpoint response body.
type ProductList struct {
	Items      []ProductListItem `json:"items"`
	Pagination Pagination        `json:"pagination"`
}
