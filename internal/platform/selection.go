package platform

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// Selection is a set of platform names chosen for one search.
type Selection map[string]struct{}

// NewSelection returns a selection holding names as given.
func NewSelection(names ...string) Selection {
	s := make(Selection, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// All selects every platform in r.
func All(r *Registry) Selection {
	return NewSelection(r.Names()...)
}

func (s Selection) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the selected names in registry order. Names unknown to r are dropped.
func (s Selection) Names(r *Registry) []string {
	out := make([]string, 0, len(s))
	for _, p := range r.platforms {
		if s.Has(p.Name) {
			out = append(out, p.Name)
		}
	}
	return out
}

// Select resolves user-supplied names against r ignoring case. Names that match no
// platform are returned in unknown, in input order.
func Select(r *Registry, names []string) (sel Selection, unknown []string) {
	sel = make(Selection, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if p, ok := r.Resolve(n); ok {
			sel[p.Name] = struct{}{}
		} else {
			unknown = append(unknown, n)
		}
	}
	return sel, unknown
}

// Match selects every platform whose name matches expr, case-insensitively.
func Match(r *Registry, expr string) (Selection, error) {
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid platform pattern %q", expr)
	}

	sel := make(Selection)
	for _, p := range r.platforms {
		ok, err := re.MatchString(p.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "match %q", p.Name)
		}
		if ok {
			sel[p.Name] = struct{}{}
		}
	}
	return sel, nil
}

// Union returns a new selection with the members of both.
func (s Selection) Union(other Selection) Selection {
	out := make(Selection, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}
