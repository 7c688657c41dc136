package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

func TestParseDateFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"2026-03-12", "2026-03-12"},
		{"March 12, 2026", "2026-03-12"},
		{"Mar 12, 2026", "2026-03-12"},
		{"12 March 2026", "2026-03-12"},
		{"  2026-03-12  ", "2026-03-12"},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.raw)
		require.NoError(t, err, "input %q", tc.raw)
		assert.Equal(t, tc.want, got.String(), "input %q", tc.raw)
	}
}

func TestParseDateAmbiguousIsMonthFirst(t *testing.T) {
	t.Parallel()

	got, err := ParseDate("03/04/2026")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", got.String())
}

func TestParseDateFailures(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "not a date"} {
		_, err := ParseDate(raw)
		require.Error(t, err, "input %q", raw)
		assert.ErrorIs(t, err, press.ErrParse, "input %q", raw)
	}
}
