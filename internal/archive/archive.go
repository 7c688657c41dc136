// Package archive persists raw fetched pages so that extraction bugs
// can be diagnosed against the exact HTML a run saw.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"
)

// Provider stores one raw page body under a key derived from its URL.
type Provider interface {
	SavePage(ctx context.Context, rawURL string, body []byte) error
	Close() error
}

// NoOpProvider discards everything. Used when archiving is disabled
// and in tests.
type NoOpProvider struct{}

func (NoOpProvider) SavePage(context.Context, string, []byte) error { return nil }
func (NoOpProvider) Close() error                                   { return nil }

// objectName maps a page URL to <host>/<yyyy-mm-dd>/<hash>.html so one
// day's pages for a site group together and reruns overwrite in place.
func objectName(rawURL string, now time.Time) string {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	sum := sha256.Sum256([]byte(rawURL))
	return host + "/" + now.UTC().Format("2006-01-02") + "/" + hex.EncodeToString(sum[:8]) + ".html"
}
