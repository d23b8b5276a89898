// Package poster rewrites OMDb/Amazon poster URLs to request larger images.
package poster

import "regexp"

// Unavailable is the sentinel OMDb uses when a title has no poster.
const Unavailable = "N/A"

// rule rewrites the first match of pattern.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order. The later SX300 rules only fire when the URL
// carries more than one SX300 token.
var rules = []rule{
	{regexp.MustCompile(`SX300`), "SX1000"},
	{regexp.MustCompile(`SY300`), "SY1500"},
	{regexp.MustCompile(`SX300`), "SX600"},
	{regexp.MustCompile(`SX300`), "SX800"},
	{regexp.MustCompile(`(_V1_).*\.jpg`), "${1}_SX1000_CR0,0,1000,1500_AL_.jpg"},
}

// IsAvailable reports whether url points at an actual image.
func IsAvailable(url string) bool {
	return url != "" && url != Unavailable
}

// Normalize returns a best-effort higher resolution variant of url.
// Empty and "N/A" values are returned unchanged, as is anything no rule matches.
func Normalize(url string) string {
	if !IsAvailable(url) {
		return url
	}
	for _, r := range rules {
		url = r.apply(url)
	}
	return url
}

func (r rule) apply(s string) string {
	loc := r.pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	var dst []byte
	dst = r.pattern.ExpandString(dst, r.replacement, s, loc)
	return s[:loc[0]] + string(dst) + s[loc[1]:]
}
