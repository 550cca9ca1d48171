package analyzer

import (
	"net/url"
	"strings"
)

// ClassifyLinks turns raw anchors into classified links. Anchors with an
// empty trimmed href or empty trimmed text are dropped. An href is internal when it
// is root-relative, dot-relative or a fragment, or when it resolves against
// pageURL to the same hostname. Anything that cannot be resolved is external.
func ClassifyLinks(anchors []Anchor, pageURL *url.URL) []Link {
	links := make([]Link, 0, len(anchors))
	for _, a := range anchors {
		href := strings.TrimSpace(a.Href)
		text := strings.TrimSpace(a.Text)
		if href == "" || text == "" {
			continue
		}
		links = append(links, Link{
			URL:  href,
			Text: text,
			Type: classifyHref(href, pageURL),
		})
	}
	return links
}

// ClassifyLinksForHost classifies anchors against a bare hostname
func ClassifyLinksForHost(anchors []Anchor, hostname string) []Link {
	return ClassifyLinks(anchors, &url.URL{Scheme: "https", Host: hostname, Path: "/"})
}

func classifyHref(href string, pageURL *url.URL) LinkType {
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "./") || strings.HasPrefix(href, "#") {
		return LinkInternal
	}
	if pageURL == nil {
		return LinkExternal
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return LinkExternal
	}
	resolved := pageURL.ResolveReference(ref)
	if resolved.Hostname() != "" && strings.EqualFold(resolved.Hostname(), pageURL.Hostname()) {
		return LinkInternal
	}
	return LinkExternal
}

// CountLinks returns the number of internal and external links
func CountLinks(links []Link) (internal, external int) {
	for _, l := range links {
		if l.Type == LinkInternal {
			internal++
		} else {
			external++
		}
	}
	return internal, external
}

// PageCount estimates the site size as the number of distinct internal
// link URLs found on the page
func PageCount(links []Link) int {
	seen := make(map[string]struct{})
	for _, l := range links {
		if l.Type == LinkInternal {
			seen[l.URL] = struct{}{}
		}
	}
	return len(seen)
}
