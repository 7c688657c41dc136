// Package press defines core types shared across subsystems.
package press

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date without a time component. It marshals as
// "2006-01-02", which is also the format the search index stores.
type Date struct {
	time.Time
}

// NewDate builds a Date from year/month/day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

// ParseISODate parses a "2006-01-02" string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String renders the date in ISO form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a quoted ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted ISO date or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PressRelease is the sole persisted entity. URL is the natural key; an
// empty URL marks an incomplete record that cannot be deduplicated.
type PressRelease struct {
	Company       string `json:"company"`
	PublishedDate Date   `json:"published_date"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	FullText      string `json:"full_text,omitempty"`
}

// Complete reports whether the record carries enough data to store and
// index: a title, a URL to key on, and an in-range date.
func (p PressRelease) Complete() bool {
	return p.Title != "" && p.URL != "" && !p.PublishedDate.IsZero()
}

// DocumentID returns the search-index id for the record: the URL when
// present, otherwise a deterministic composite of company and title so a
// titled record without a link is still indexable.
func (p PressRelease) DocumentID() string {
	if p.URL != "" {
		return p.URL
	}
	sum := sha256.Sum256([]byte(p.Company + "|" + NormalizeTitle(p.Title)))
	return p.Company + ":" + hex.EncodeToString(sum[:8])
}

// NormalizeTitle lowercases and collapses whitespace, the form used for
// feed reconciliation lookups.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
