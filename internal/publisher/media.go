package publisher

import (
	"net/url"
	"strings"
)

// AbsoluteMediaURL rewrites a relative media reference against the
// configured public base URL. Platform APIs fetch media server-side and
// cannot resolve paths like /uploads/sale.jpg.
func AbsoluteMediaURL(baseURL, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}

	rel, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return base.ResolveReference(rel).String()
}
