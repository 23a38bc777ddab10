package nav

import (
	"regexp"
	"strings"
	"sync"
)

// Registry holds route records and resolves paths against them.
// Nested routes are flattened to their full paths on registration.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	records []record
}

type record struct {
	segments []segment
	route    Route
}

type segment struct {
	literal  string
	param    bool
	catchAll bool
	re       *regexp.Regexp
}

// NewRegistry returns a registry seeded with routes.
func NewRegistry(routes ...Route) *Registry {
	r := &Registry{}
	for _, rt := range routes {
		r.AddRoute(rt)
	}
	return r
}

// AddRoute registers route and its children, returning the number of records added.
// External routes are skipped.
func (r *Registry) AddRoute(route Route) int {
	var recs []record
	flatten("", route, &recs)
	if len(recs) == 0 {
		return 0
	}
	r.mu.Lock()
	r.records = append(r.records, recs...)
	r.mu.Unlock()
	return len(recs)
}

// Resolve returns the first registered route matching path.
// The returned route's Path is its full path.
func (r *Registry) Resolve(path string) (Route, bool) {
	if r == nil {
		return Route{}, false
	}
	parts := splitPath(path)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if matchSegments(rec.segments, parts) {
			return rec.route, true
		}
	}
	return Route{}, false
}

// Has reports whether path resolves to a registered route.
func (r *Registry) Has(path string) bool {
	_, ok := r.Resolve(path)
	return ok
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Reset removes every record.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}

func flatten(parent string, route Route, out *[]record) {
	if IsExternal(route.Path) {
		return
	}
	full := JoinPath(parent, route.Path)
	if full == "" {
		full = "/"
	}
	rec := route
	rec.Path = full
	rec.Children = nil
	*out = append(*out, record{segments: parsePattern(full), route: rec})
	for _, child := range route.Children {
		flatten(full, child, out)
	}
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func parsePattern(pattern string) []segment {
	parts := splitPath(pattern)
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		segs = append(segs, parseSegment(part))
	}
	return segs
}

// parseSegment understands literals, "*", ":name", ":name(regex)" and the
// repeatable forms ":name*" / ":name(regex)*" which consume the rest of the path.
func parseSegment(part string) segment {
	if part == "*" {
		return segment{catchAll: true}
	}
	if !strings.HasPrefix(part, ":") {
		return segment{literal: part}
	}
	seg := segment{param: true}
	body := part[1:]
	if strings.HasSuffix(body, "*") || strings.HasSuffix(body, "+") {
		seg.catchAll = true
		body = body[:len(body)-1]
	}
	if open := strings.Index(body, "("); open >= 0 && strings.HasSuffix(body, ")") {
		expr := strings.ReplaceAll(body[open+1:len(body)-1], `\\`, `\`)
		if re, err := regexp.Compile("^(?:" + expr + ")$"); err == nil && !seg.catchAll {
			seg.re = re
		}
	}
	return seg
}

func matchSegments(segs []segment, parts []string) bool {
	for i, seg := range segs {
		if seg.catchAll {
			return true
		}
		if i >= len(parts) {
			return false
		}
		switch {
		case seg.param:
			if seg.re != nil && !seg.re.MatchString(parts[i]) {
				return false
			}
		case seg.literal != parts[i]:
			return false
		}
	}
	return len(segs) == len(parts)
}
