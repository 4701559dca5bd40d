package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultDocumentName = "response"

// DocumentFilename derives an attachment filename from a generated HTML
// document's <title>, falling back to a fixed name when the document has
// none or cannot be parsed.
func DocumentFilename(html string) string {
	return slugify(documentTitle(html)) + ".html"
}

func documentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return defaultDocumentName
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return defaultDocumentName
	}
	return title
}

// slugify reduces a title to a safe filename stem.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if b.Len() >= 48 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return defaultDocumentName
	}
	return slug
}
