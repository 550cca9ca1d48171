package analyzer

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var trailingSchemeJunk = regexp.MustCompile(`:/*$`)

// NormalizeURL validates user input and turns it into an absolute http(s)
// URL. A missing scheme defaults to https and the hostname must contain a
// dot.
func NormalizeURL(raw string) (*url.URL, error) {
	clean := strings.TrimSpace(raw)
	clean = trailingSchemeJunk.ReplaceAllString(clean, "")
	if clean == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	lower := strings.ToLower(clean)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		clean = "https://" + clean
	}

	u, err := url.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return nil, fmt.Errorf("%w: invalid domain %q", ErrInvalidURL, host)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}
