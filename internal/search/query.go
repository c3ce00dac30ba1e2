package search

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query keys. They match the JSON field names of Criteria.
const (
	KeyKeyword           = "keyword"
	KeyCategoryID        = "categoryId"
	KeyLevel             = "level"
	KeyMinPrice          = "minPrice"
	KeyMaxPrice          = "maxPrice"
	KeyMinRating         = "minRating"
	KeyLanguage          = "language"
	KeyHasCertificate    = "hasCertificate"
	KeyHasLifetimeAccess = "hasLifetimeAccess"
	KeySortBy            = "sortBy"
	KeySortDirection     = "sortDirection"
	KeyPage              = "page"
	KeySize              = "size"

	// Older catalog links used these names.
	aliasKeyword    = "search"
	aliasCategoryID = "category"
)

// ToQueryString encodes the present fields of c without a leading "?". Keys are sorted.
// Empty strings and false flags are omitted; numeric zeros are kept.
func ToQueryString(c Criteria) string {
	return Values(c).Encode()
}

// Values is ToQueryString before encoding.
func Values(c Criteria) url.Values {
	v := url.Values{}
	setString(v, KeyKeyword, c.Keyword)
	setString(v, KeyCategoryID, c.CategoryID)
	if c.Level != nil && *c.Level != "" {
		v.Set(KeyLevel, string(*c.Level))
	}
	setFloat(v, KeyMinPrice, c.MinPrice)
	setFloat(v, KeyMaxPrice, c.MaxPrice)
	setFloat(v, KeyMinRating, c.MinRating)
	setString(v, KeyLanguage, c.Language)
	setFlag(v, KeyHasCertificate, c.HasCertificate)
	setFlag(v, KeyHasLifetimeAccess, c.HasLifetimeAccess)
	if c.SortBy != nil && *c.SortBy != "" {
		v.Set(KeySortBy, string(*c.SortBy))
	}
	if c.SortDirection != nil && *c.SortDirection != "" {
		v.Set(KeySortDirection, string(*c.SortDirection))
	}
	setInt(v, KeyPage, c.Page)
	setInt(v, KeySize, c.Size)
	return v
}

// FromQueryString decodes a query string (with or without a leading "?"). Unknown keys,
// unrecognised enum values and unparsable numbers are ignored. The only error is a
// syntactically broken query.
func FromQueryString(query string) (Criteria, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return Criteria{}, err
	}
	return FromValues(values), nil
}

// FromValues decodes already-parsed query values.
func FromValues(v url.Values) Criteria {
	var c Criteria

	c.Keyword = firstString(v, KeyKeyword, aliasKeyword)
	c.CategoryID = firstString(v, KeyCategoryID, aliasCategoryID)
	c.Language = firstString(v, KeyLanguage)

	if raw, ok := lookup(v, KeyLevel); ok {
		if level, valid := ParseLevel(raw); valid {
			c.Level = &level
		}
	}
	if raw, ok := lookup(v, KeySortBy); ok {
		if field, valid := ParseSortField(raw); valid {
			c.SortBy = &field
		}
	}
	if raw, ok := lookup(v, KeySortDirection); ok {
		if dir, valid := ParseSortDirection(raw); valid {
			c.SortDirection = &dir
		}
	}

	c.MinPrice = parseFloat(v, KeyMinPrice)
	c.MaxPrice = parseFloat(v, KeyMaxPrice)
	c.MinRating = parseFloat(v, KeyMinRating)
	c.Page = parseInt(v, KeyPage)
	c.Size = parseInt(v, KeySize)
	c.HasCertificate = parseFlag(v, KeyHasCertificate)
	c.HasLifetimeAccess = parseFlag(v, KeyHasLifetimeAccess)

	return c
}

func setString(v url.Values, key string, value *string) {
	if value != nil && *value != "" {
		v.Set(key, *value)
	}
}

func setFloat(v url.Values, key string, value *float64) {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return
	}
	v.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
}

func setInt(v url.Values, key string, value *int) {
	if value != nil {
		v.Set(key, strconv.Itoa(*value))
	}
}

func setFlag(v url.Values, key string, value *bool) {
	if value != nil && *value {
		v.Set(key, "true")
	}
}

func lookup(v url.Values, key string) (string, bool) {
	values, ok := v[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func firstString(v url.Values, keys ...string) *string {
	for _, key := range keys {
		if raw, ok := lookup(v, key); ok && raw != "" {
			value := raw
			return &value
		}
	}
	return nil
}

func parseFloat(v url.Values, key string) *float64 {
	raw, ok := lookup(v, key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseInt(v url.Values, key string) *int {
	raw, ok := lookup(v, key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}

// parseFlag treats any present value other than false/0 as set.
func parseFlag(v url.Values, key string) *bool {
	raw, ok := lookup(v, key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "false", "0":
		return nil
	}
	t := true
	return &t
}
