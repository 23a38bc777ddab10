package nav

import (
	"regexp"
	"strings"
)

// DefaultAllowList is the set of paths reachable without a session token.
var DefaultAllowList = []string{"/login", "/register", "/index", "/"}

// AllowList tests paths against a fixed set of patterns.
//
// A pattern matches a path exactly unless it contains wildcards:
// "*" matches within a single segment and "**" matches across segments.
// The whole path must match.
type AllowList struct {
	patterns []*regexp.Regexp
	raw      []string
}

// NewAllowList compiles patterns. Blank patterns are skipped.
func NewAllowList(patterns ...string) *AllowList {
	al := &AllowList{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := compilePathPattern(p)
		if err != nil {
			// Unreachable with QuoteMeta'd input; skip rather than match everything.
			continue
		}
		al.patterns = append(al.patterns, re)
		al.raw = append(al.raw, p)
	}
	return al
}

// Match reports whether path matches any pattern.
func (a *AllowList) Match(path string) bool {
	if a == nil {
		return false
	}
	for _, re := range a.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns in configuration order.
func (a *AllowList) Patterns() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.raw...)
}

func compilePathPattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			b.WriteString("[^/]*")
			i++
		default:
			j := i
			for j < len(pattern) && pattern[j] != '*' {
				j++
			}
			b.WriteString(regexp.QuoteMeta(pattern[i:j]))
			i = j
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
