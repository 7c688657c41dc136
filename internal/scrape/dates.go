package scrape

import (
	"fmt"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// ParseDate normalizes a free-form human date string ("12 March 2026",
// "2026-03-12", "Mar 12, 2026") into a calendar date. Ambiguous numeric
// dates resolve month-first (03/12/2026 is March 12). Callers treat a
// failure as "skip this card", never as a fatal error.
func ParseDate(raw string) (press.Date, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return press.Date{}, fmt.Errorf("%w: empty date string", press.ErrParse)
	}
	t, err := dateparse.ParseAny(trimmed, dateparse.PreferMonthFirst(true))
	if err != nil {
		return press.Date{}, fmt.Errorf("%w: date %q: %v", press.ErrParse, trimmed, err)
	}
	return press.DateOf(t), nil
}
