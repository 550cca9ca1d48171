package analyzer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML extracts the title, meta description, visible body text and
// anchors from an HTML document
func ParseHTML(html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return PageFromDocument(doc), nil
}

// PageFromDocument extracts page fields from an already parsed document
func PageFromDocument(doc *goquery.Document) *Page {
	page := &Page{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, _ := s.Attr("content")
		page.Description = strings.TrimSpace(content)
		return false
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		page.Anchors = append(page.Anchors, Anchor{
			Href: strings.TrimSpace(href),
			Text: s.Text(),
		})
	})

	// Script and style contents are not page copy. Work on a clone so the
	// caller's document is left untouched.
	body := doc.Find("body").First().Clone()
	body.Find("script, style, noscript, template").Remove()
	page.BodyText = strings.TrimSpace(body.Text())

	return page
}
