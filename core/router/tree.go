package router

// Segment trie used for route lookup. Every node stands for one path segment
// and keeps its children split by kind, so a lookup tries the literal child
// first, then the named parameter, then the wildcard. Once a child is chosen
// the walk never returns to try its siblings.

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dmitrymomot/dispatch/core/handler"
)

type nodeTyp uint8

const (
	ntStatic   nodeTyp = iota // /users
	ntParam                   // /:id
	ntWildcard                // /*path
)

// wildcardKey is the parameter name of an unnamed trailing wildcard.
const wildcardKey = "*"

type node[C handler.Context] struct {
	// literal children keyed by segment text
	static map[string]*node[C]

	// named parameter child, matches any non-empty segment
	param *node[C]

	// trailing wildcard child, matches a non-empty remainder
	wildcard *node[C]

	// handler endpoints on this node
	endpoints endpoints[C]

	typ nodeTyp
}

// endpoints is a mapping of http method constants to handlers
// for a given route.
type endpoints[C handler.Context] map[methodTyp]*endpoint[C]

type endpoint[C handler.Context] struct {
	// compiled middleware chain and handler
	chain *handler.Chain[C]

	// full routing pattern
	pattern string

	// parameter keys in path order
	paramKeys []string

	// leading path segments hidden from handlers of mounted routes
	stripSegments int

	// error handler of the mounted router that owns the route, if any
	errorHandler handler.ErrorHandler[C]

	method methodTyp
}

type segment struct {
	typ   nodeTyp
	value string
}

// parsePattern splits a pattern into segments and collects its parameter keys.
func parsePattern(pattern string) ([]segment, []string, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, nil, fmt.Errorf("%w: '%s' must start with '/'", ErrInvalidPattern, pattern)
	}

	rest := pattern[1:]
	if rest == "" {
		return nil, nil, nil
	}

	parts := strings.Split(rest, "/")
	segs := make([]segment, 0, len(parts))
	var keys []string

	for i, part := range parts {
		var seg segment
		switch {
		case strings.HasPrefix(part, ":"):
			seg = segment{typ: ntParam, value: part[1:]}
			if seg.value == "" || strings.ContainsAny(seg.value, ":*") {
				return nil, nil, fmt.Errorf("%w: bad parameter name in '%s'", ErrInvalidPattern, pattern)
			}
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, nil, fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern)
			}
			seg = segment{typ: ntWildcard, value: part[1:]}
			if seg.value == "" {
				seg.value = wildcardKey
			}
		default:
			segs = append(segs, segment{typ: ntStatic, value: part})
			continue
		}

		if slices.Contains(keys, seg.value) {
			return nil, nil, fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, seg.value, pattern)
		}
		keys = append(keys, seg.value)
		segs = append(segs, seg)
	}

	return segs, keys, nil
}

// insert walks or creates the nodes for segs and stores ep for method.
// A second endpoint for the same method on the same node is ambiguous, and so
// is a wildcard next to a parameter: lookup never leaves the parameter branch
// for a non-empty segment, so the wildcard could not match.
func (n *node[C]) insert(segs []segment, ep *endpoint[C]) error {
	cur := n
	for _, s := range segs {
		if (s.typ == ntParam && cur.wildcard != nil) || (s.typ == ntWildcard && cur.param != nil) {
			return fmt.Errorf("%w: '%s' puts a parameter and a wildcard at the same position",
				ErrAmbiguousPattern, ep.pattern)
		}

		switch s.typ {
		case ntStatic:
			if cur.static == nil {
				cur.static = make(map[string]*node[C])
			}
			child, ok := cur.static[s.value]
			if !ok {
				child = &node[C]{typ: ntStatic}
				cur.static[s.value] = child
			}
			cur = child
		case ntParam:
			if cur.param == nil {
				cur.param = &node[C]{typ: ntParam}
			}
			cur = cur.param
		case ntWildcard:
			if cur.wildcard == nil {
				cur.wildcard = &node[C]{typ: ntWildcard}
			}
			cur = cur.wildcard
		}
	}

	if cur.endpoints == nil {
		cur.endpoints = make(endpoints[C])
	}
	if existing, ok := cur.endpoints[ep.method]; ok {
		return fmt.Errorf("%w: %s '%s' conflicts with '%s'",
			ErrAmbiguousPattern, ep.method, ep.pattern, existing.pattern)
	}
	cur.endpoints[ep.method] = ep
	return nil
}

// find resolves path for method. It returns the endpoint and the captured
// values on success; on a path match without a usable method it returns the
// allowed methods instead; on no match all results are nil.
func (n *node[C]) find(method methodTyp, path string) (*endpoint[C], []string, []string) {
	cur := n
	var values []string

	if search := strings.TrimPrefix(path, "/"); search != "" {
		for {
			seg, rest, more := strings.Cut(search, "/")

			if child := cur.static[seg]; child != nil {
				cur = child
			} else if cur.param != nil && seg != "" {
				values = append(values, seg)
				cur = cur.param
			} else if cur.wildcard != nil && search != "" {
				values = append(values, search)
				cur = cur.wildcard
				break
			} else {
				return nil, nil, nil
			}

			if !more {
				break
			}
			search = rest
		}
	}

	if len(cur.endpoints) == 0 {
		return nil, nil, nil
	}

	if ep := cur.endpoints[method]; ep != nil {
		return ep, values, nil
	}
	if method == mHEAD {
		if ep := cur.endpoints[mGET]; ep != nil {
			return ep, values, nil
		}
	}
	if ep := cur.endpoints[mALL]; ep != nil {
		return ep, values, nil
	}

	return nil, nil, cur.endpoints.allowed()
}

// allowed lists the methods registered on the node in canonical order.
// HEAD is implied by GET.
func (eps endpoints[C]) allowed() []string {
	out := make([]string, 0, len(eps)+1)
	for _, mt := range methodOrder {
		_, ok := eps[mt]
		if !ok && mt == mHEAD {
			_, ok = eps[mGET]
		}
		if ok {
			out = append(out, mt.String())
		}
	}
	return out
}

// routes collects every endpoint below n.
func (n *node[C]) routes() []Route {
	var out []Route
	var walk func(*node[C])
	walk = func(cur *node[C]) {
		for _, ep := range cur.endpoints {
			out = append(out, Route{Method: ep.method.String(), Pattern: ep.pattern})
		}
		for _, child := range cur.static {
			walk(child)
		}
		if cur.param != nil {
			walk(cur.param)
		}
		if cur.wildcard != nil {
			walk(cur.wildcard)
		}
	}
	walk(n)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}
