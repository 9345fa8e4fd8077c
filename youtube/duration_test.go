package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISO8601Duration(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"PT6M", 360, true},
		{"PT1H2M3S", 3723, true},
		{"PT30S", 30, true},
		{"PT2H", 7200, true},
		{"P1DT4H", 100800, true},
		{"P2D", 172800, true},
		{"PT0S", 0, true},
		// live streams report a bare "P0D"
		{"P0D", 0, true},
		{"", 0, false},
		{"6 minutes", 0, false},
		{"PT1H2M3S extra", 0, false},
		{"P1M", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseISO8601Duration(tc.in)
		assert.Equal(t, tc.ok, ok, "in=%q", tc.in)
		assert.Equal(t, tc.want, got, "in=%q", tc.in)
	}
}
