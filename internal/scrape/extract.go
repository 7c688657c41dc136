package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fallbackContentSelectors is the ordered chain tried when a profile does
// not pin the main content region.
var fallbackContentSelectors = []string{
	"main article",
	"article",
	"main",
	"[role='main']",
	"div.main-content",
	"div.article-content",
	"div#main-content",
	"div#content",
}

// noiseSelectors match subtrees that never belong to article body text.
var noiseSelectors = []string{
	"script", "style", "noscript", "svg", "iframe", "template",
	"nav", "header", "footer", "form", "button",
	"[role='navigation']", "[aria-hidden='true']",
	"[class*='cookie']", "[id*='cookie']",
	"[class*='social']", "[class*='share']",
	"[class*='newsletter']", "[class*='breadcrumb']",
}

// boilerplateLines are dropped from extracted text by case-insensitive
// exact match.
var boilerplateLines = map[string]struct{}{
	"skip to content":      {},
	"skip to main content": {},
	"menu":                 {},
	"main menu":            {},
	"close":                {},
	"search":               {},
	"share":                {},
	"print":                {},
	"back to top":          {},
	"cookie settings":      {},
	"accept all cookies":   {},
}

// ExtractText locates the main content region of a rendered detail page
// and returns its text with noise subtrees and boilerplate lines removed.
// This is a best-effort heuristic: a noisy or empty result is acceptable,
// failing the record is not. The document is modified in place.
func ExtractText(doc *goquery.Document, profile SiteProfile) string {
	region := contentRegion(doc, profile)
	if region.Length() == 0 {
		return ""
	}
	for _, sel := range noiseSelectors {
		region.Find(sel).Remove()
	}
	return joinLines(textLines(region))
}

func contentRegion(doc *goquery.Document, profile SiteProfile) *goquery.Selection {
	if profile.MainContentSelector != "" {
		if s := doc.Find(profile.MainContentSelector).First(); s.Length() > 0 {
			return s
		}
	}
	for _, sel := range fallbackContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// textLines walks the selection's text nodes in document order, one
// trimmed line per text node.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if line := strings.TrimSpace(n.Data); line != "" {
				lines = append(lines, line)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return lines
}

func joinLines(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, noisy := boilerplateLines[strings.ToLower(line)]; noisy {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
