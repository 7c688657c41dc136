package press

import "errors"

// Error taxonomy. Fetch and parse failures are always non-fatal: callers
// downgrade them to missing data for the affected unit of work. Store and
// index failures are reported but must not abort a run or crash the API.
var (
	// ErrFetch marks a network, render, or navigation failure.
	ErrFetch = errors.New("fetch failed")
	// ErrParse marks a date or selector extraction failure.
	ErrParse = errors.New("parse failed")
	// ErrStore marks a constraint violation or database connection failure.
	ErrStore = errors.New("store failed")
	// ErrIndex marks a search engine failure; dependent reads degrade to
	// empty results.
	ErrIndex = errors.New("index failed")
)
