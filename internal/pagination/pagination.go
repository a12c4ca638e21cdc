// Package pagination turns page/limit query parameters into an offset window.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when the caller does not supply one.
const DefaultLimit = 10

// Params is the offset window for one page.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
	Take  int `json:"take"`
}

// Default returns the first page with the given limit.
func Default(defaultLimit int) Params {
	return Params{Page: 1, Limit: defaultLimit, Skip: 0, Take: defaultLimit}
}

// FromQuery parses raw page and limit values.
// Missing and unparsable input are treated the same: both values fall back
// together to Default, as does a page whose offset overflows an int.
// The limit is not bounded here.
func FromQuery(page, limit string, defaultLimit int) Params {
	if page == "" || limit == "" {
		return Default(defaultLimit)
	}

	p, err := parseNumber(page)
	if err != nil {
		return Default(defaultLimit)
	}
	l, err := parseNumber(limit)
	if err != nil {
		return Default(defaultLimit)
	}
	if p > 1 && l > 0 && p-1 > math.MaxInt/l {
		return Default(defaultLimit)
	}

	return Params{
		Page:  p,
		Limit: l,
		Skip:  (p - 1) * l,
		Take:  l,
	}
}

// Bounded returns a window safe to send to the store. A non-positive page or
// limit resets to Default, and a limit above maxLimit is lowered to it.
// A maxLimit of zero or less disables the upper bound. A page whose offset
// does not fit in an int also resets to Default.
func (p Params) Bounded(maxLimit, defaultLimit int) Params {
	if p.Page < 1 || p.Limit < 1 {
		return Default(defaultLimit)
	}
	limit := p.Limit
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if p.Page-1 > math.MaxInt/limit {
		return Default(defaultLimit)
	}
	return Params{
		Page:  p.Page,
		Limit: limit,
		Skip:  (p.Page - 1) * limit,
		Take:  limit,
	}
}

// Pages returns the number of pages needed for total items.
func Pages(total int64, limit int) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}

// parseNumber accepts integers and integral floats such as "2.0" or "1e2",
// ignoring surrounding whitespace. Fractions and values outside the int
// range are rejected.
func parseNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}
