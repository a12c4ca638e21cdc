package pagination

import (
	"math"
	"testing"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
		want  Params
	}{
		{"both missing", "", "", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"page missing", "", "5", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"limit missing", "3", "", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"valid", "2", "5", Params{Page: 2, Limit: 5, Skip: 5, Take: 5}},
		{"first page", "1", "25", Params{Page: 1, Limit: 25, Skip: 0, Take: 25}},
		{"invalid page", "x", "5", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"invalid limit", "2", "many", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"integral float", "3.0", "4", Params{Page: 3, Limit: 4, Skip: 8, Take: 4}},
		{"fractional page", "1.5", "4", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"large limit not bounded", "1", "5000", Params{Page: 1, Limit: 5000, Skip: 0, Take: 5000}},
		{"surrounding spaces", " 2", "5 ", Params{Page: 2, Limit: 5, Skip: 5, Take: 5}},
		{"exponent", "1e1", "2", Params{Page: 10, Limit: 2, Skip: 18, Take: 2}},
		{"offset overflows", "9223372036854775807", "100", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"float offset overflows", "9.2e18", "100", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"float out of range", "1e300", "5", Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromQuery(tt.page, tt.limit, 10)
			if got != tt.want {
				t.Errorf("FromQuery(%q, %q, 10) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestParams_Bounded(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		max  int
		want Params
	}{
		{"within bound", Params{Page: 2, Limit: 5, Skip: 5, Take: 5}, 100, Params{Page: 2, Limit: 5, Skip: 5, Take: 5}},
		{"above bound", Params{Page: 3, Limit: 500, Skip: 1000, Take: 500}, 100, Params{Page: 3, Limit: 100, Skip: 200, Take: 100}},
		{"unbounded", Params{Page: 1, Limit: 500, Skip: 0, Take: 500}, 0, Params{Page: 1, Limit: 500, Skip: 0, Take: 500}},
		{"negative page", Params{Page: -1, Limit: 5, Skip: -10, Take: 5}, 100, Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"zero limit", Params{Page: 1, Limit: 0, Skip: 0, Take: 0}, 100, Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"huge page", Params{Page: math.MaxInt, Limit: 100, Skip: -200, Take: 100}, 100, Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"huge page after lowering limit", Params{Page: math.MaxInt / 50, Limit: 500, Take: 500}, 100, Params{Page: 1, Limit: 10, Skip: 0, Take: 10}},
		{"last page that fits", Params{Page: math.MaxInt/100 + 1, Limit: 100, Take: 100}, 100, Params{Page: math.MaxInt/100 + 1, Limit: 100, Skip: math.MaxInt / 100 * 100, Take: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Bounded(tt.max, 10)
			if got != tt.want {
				t.Errorf("Bounded(%d) = %+v, want %+v", tt.max, got, tt.want)
			}
		})
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{7, 0, 0},
	}

	for _, tt := range tests {
		if got := Pages(tt.total, tt.limit); got != tt.want {
			t.Errorf("Pages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
