package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNotSubdomain = regexp.MustCompile(`[^a-z0-9-]+`)
	reMultiHyphen  = regexp.MustCompile(`-+`)
	reMultiSlash   = regexp.MustCompile(`/+`)
	reValidTZ      = regexp.MustCompile(`^[A-Za-z0-9_\-+/]+$`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func NormalizeName(name string) string {
	return collapseWhitespace(name)
}

func NormalizeAddress(address string) string {
	return Pipeline{dropControl, collapseWhitespace}.Apply(address)
}

// NormalizeNotes keeps line breaks but removes other control characters.
func NormalizeNotes(notes string) string {
	return Pipeline{dropControl, strings.TrimSpace}.Apply(notes)
}

func NormalizeSubdomain(subdomain string) string {
	return Pipeline{
		trimAndLower,
		func(s string) string { return reNotSubdomain.ReplaceAllString(s, "-") },
		func(s string) string { return reMultiHyphen.ReplaceAllString(s, "-") },
		func(s string) string { return strings.Trim(s, "-") },
	}.Apply(subdomain)
}

// NormalizeTimezone cleans an IANA name. Values with characters no zone name
// contains come back empty.
func NormalizeTimezone(tz string) string {
	tz = strings.TrimSpace(tz)
	tz = reMultiSlash.ReplaceAllString(tz, "/")
	tz = strings.Trim(tz, "/")
	if tz == "" || !reValidTZ.MatchString(tz) {
		return ""
	}
	return tz
}
