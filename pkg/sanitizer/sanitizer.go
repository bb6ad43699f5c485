package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
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
	reMACSeparators = regexp.MustCompile(`[-.]`)
	reHexOnly       = regexp.MustCompile(`^[0-9a-f]{12}$`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

// SanitizeUserID trims surrounding whitespace. User ids are opaque and case
// sensitive.
func SanitizeUserID(input string) string {
	return trim(input)
}

// SanitizeLockID trims and lowercases a UUID.
func SanitizeLockID(input string) string {
	return Pipeline{trim, lower}.Apply(input)
}

// SanitizeMAC normalizes 00-11-22-33-44-55, 0011.2233.4455 and 001122334455
// to 00:11:22:33:44:55.
func SanitizeMAC(input string) string {
	p := Pipeline{
		trim,
		lower,
		func(s string) string {
			bare := reMACSeparators.ReplaceAllString(strings.ReplaceAll(s, ":", ""), "")
			if !reHexOnly.MatchString(bare) {
				return s
			}
			var b strings.Builder
			for i := 0; i < len(bare); i += 2 {
				if i > 0 {
					b.WriteByte(':')
				}
				b.WriteString(bare[i : i+2])
			}
			return b.String()
		},
	}
	return p.Apply(input)
}

// SanitizeURL trims the input and lowercases scheme and host. Path and query
// are kept verbatim since lock endpoints may be case sensitive.
func SanitizeURL(input string) string {
	s := trim(input)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	u.Scheme = lower(u.Scheme)
	u.Host = lower(u.Host)
	return u.String()
}
