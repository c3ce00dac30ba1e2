// Package search models catalog filter state and mirrors it into URL query strings so that
// catalog URLs can be shared and bookmarked.
package search

import (
	"strings"

	"github.com/noah-isme/coursehub-web/internal/models"
)

// SortField is a backend sortable column.
type SortField string

const (
	SortByTitle         SortField = "title"
	SortByPrice         SortField = "price"
	SortByAverageRating SortField = "averageRating"
	SortByCreatedAt     SortField = "createdAt"
)

// SortDirection orders results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Paging defaults applied to backend requests.
const (
	DefaultPage = 0
	DefaultSize = 20
	MaxSize     = 100
)

// Criteria is the catalog filter state. Nil fields are absent.
type Criteria struct {
	Keyword           *string             `json:"keyword,omitempty"`
	CategoryID        *string             `json:"categoryId,omitempty"`
	Level             *models.CourseLevel `json:"level,omitempty"`
	MinPrice          *float64            `json:"minPrice,omitempty"`
	MaxPrice          *float64            `json:"maxPrice,omitempty"`
	MinRating         *float64            `json:"minRating,omitempty"`
	Language          *string             `json:"language,omitempty"`
	HasCertificate    *bool               `json:"hasCertificate,omitempty"`
	HasLifetimeAccess *bool               `json:"hasLifetimeAccess,omitempty"`
	SortBy            *SortField          `json:"sortBy,omitempty"`
	SortDirection     *SortDirection      `json:"sortDirection,omitempty"`
	Page              *int                `json:"page,omitempty"`
	Size              *int                `json:"size,omitempty"`
}

// ParseSortField resolves a sort column case-insensitively.
func ParseSortField(raw string) (SortField, bool) {
	for _, f := range []SortField{SortByTitle, SortByPrice, SortByAverageRating, SortByCreatedAt} {
		if strings.EqualFold(raw, string(f)) {
			return f, true
		}
	}
	return "", false
}

// ParseSortDirection resolves asc/desc case-insensitively.
func ParseSortDirection(raw string) (SortDirection, bool) {
	switch strings.ToLower(raw) {
	case string(SortAsc):
		return SortAsc, true
	case string(SortDesc):
		return SortDesc, true
	}
	return "", false
}

// ParseLevel resolves a course level case-insensitively.
func ParseLevel(raw string) (models.CourseLevel, bool) {
	level := models.CourseLevel(strings.ToUpper(raw))
	return level, level.Valid()
}

// IsEmpty reports whether no filter is set.
func (c Criteria) IsEmpty() bool {
	return ToQueryString(c) == ""
}

// WithDefaults returns a copy with sorting and paging filled in for a backend request.
// Page is floored at zero and size clamped to MaxSize.
func (c Criteria) WithDefaults() Criteria {
	out := c
	if out.SortBy == nil {
		sortBy := SortByCreatedAt
		out.SortBy = &sortBy
	}
	if out.SortDirection == nil {
		dir := SortDesc
		out.SortDirection = &dir
	}

	page := DefaultPage
	if c.Page != nil && *c.Page > 0 {
		page = *c.Page
	}
	out.Page = &page

	size := DefaultSize
	if c.Size != nil && *c.Size > 0 {
		size = *c.Size
	}
	if size > MaxSize {
		size = MaxSize
	}
	out.Size = &size

	return out
}
