// Package main hosts the presstracker entrypoint.
//
// Architecture overview:
//   - Collection: the refresh command renders each configured newsroom
//     with a headless Chrome session (chromedp), extracts press release
//     cards per site profile, filters them against the cutoff date, and
//     fetches detail pages for full text. Sites that expose a JSON feed
//     get their records reconciled against it.
//   - Persistence: collected records replace a PostgreSQL table keyed by
//     URL and an Elasticsearch index in a drop-and-recreate pass. A run
//     that collects nothing leaves both untouched.
//   - Query API: the serve command hosts the chi-based HTTP API with the
//     listing, filter, and search endpoints. Search layers term
//     expansion and snippet re-ranking over Elasticsearch highlighting.
//   - Plumbing: Viper populates config from file and environment; zap
//     provides structured logging; Prometheus metrics are exported via
//     /metrics; raw pages can be archived to disk or GCS, and a Pub/Sub
//     event announces each completed refresh.
package main

import (
	"github.com/prerna1001/pharma-press-tracker/cmd"
)

func main() {
	cmd.Execute()
}
