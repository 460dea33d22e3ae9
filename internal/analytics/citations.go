package analytics

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	// refPattern matches non-self-closing <ref ...>...</ref> spans. It is not
	// a wikitext parser: nested or unbalanced tags extract incorrectly.
	refPattern = regexp.MustCompile(`(?is)<ref(?:\s[^>]*[^/>]|\s)?>(.*?)</ref>`)
	urlPattern = regexp.MustCompile(`https?://[^\s<>"|\]}]+`)
)

// uninformativeLabels are host labels skipped when reducing a host to its
// domain key.
var uninformativeLabels = map[string]struct{}{
	"www": {}, "m": {}, "co": {}, "com": {}, "org": {},
	"net": {}, "ac": {}, "gov": {}, "edu": {},
}

// CitationStats summarizes the references of an article.
type CitationStats struct {
	TotalRefs       int            `json:"total_refs"`
	DomainBreakdown map[string]int `json:"domain_breakdown"`
	Error           string         `json:"error,omitempty"`
}

// Citations extracts <ref> spans from wikitext and counts the URLs they cite
// by domain key.
func Citations(markup string) CitationStats {
	stats := CitationStats{DomainBreakdown: map[string]int{}}

	for _, match := range refPattern.FindAllStringSubmatch(markup, -1) {
		stats.TotalRefs++
		for _, raw := range urlPattern.FindAllString(match[1], -1) {
			u, err := url.Parse(raw)
			if err != nil {
				continue
			}
			key := DomainKey(u.Hostname())
			if key == "" {
				continue
			}
			stats.DomainBreakdown[key]++
		}
	}

	return stats
}

// DomainKey reduces a host to a short key: the second-level label, moving
// left past uninformative labels such as "www" or "co". IP hosts are
// returned unchanged.
func DomainKey(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(host, ".")
	for i := len(labels) - 2; i >= 0; i-- {
		if labels[i] == "" {
			continue
		}
		if _, skip := uninformativeLabels[labels[i]]; !skip {
			return labels[i]
		}
	}
	return labels[len(labels)-1]
}
