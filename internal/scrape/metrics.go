package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CardsSeen tracks listing cards encountered across all profiles.
	CardsSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presstracker_cards_seen_total",
		Help: "The total number of listing cards encountered.",
	})
	// CardsDropped tracks cards discarded because their date is before the cutoff.
	CardsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presstracker_cards_dropped_total",
		Help: "The total number of cards dropped by the cutoff-date filter.",
	})
	// CardsSkipped tracks cards skipped because a field failed to extract or parse.
	CardsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presstracker_cards_skipped_total",
		Help: "The total number of cards skipped due to extraction or parse failures.",
	})
	// FetchErrors tracks page render and network failures.
	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presstracker_fetch_errors_total",
		Help: "The total number of failed page fetches or renders.",
	})
	// RecordsScraped tracks records that survived scraping.
	RecordsScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presstracker_records_scraped_total",
		Help: "The total number of press releases produced by scraping.",
	})
)
