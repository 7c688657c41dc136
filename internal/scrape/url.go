package scrape

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL turns an href captured from a card into a canonical absolute
// URL: resolved against the profile base, lowercased scheme/host, default
// ports and fragments stripped. The canonical form is the record's
// natural key, so every code path must produce the same string for the
// same target.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	if !ref.IsAbs() {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse base url: %w", err)
		}
		ref = baseURL.ResolveReference(ref)
	}

	ref.Scheme = strings.ToLower(ref.Scheme)
	ref.Host = strings.ToLower(ref.Host)
	if ref.Scheme == "http" {
		ref.Host = strings.TrimSuffix(ref.Host, ":80")
	}
	if ref.Scheme == "https" {
		ref.Host = strings.TrimSuffix(ref.Host, ":443")
	}
	ref.Fragment = ""

	return ref.String(), nil
}
