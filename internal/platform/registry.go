package platform

import (
	"strings"

	"github.com/pkg/errors"
)

// Placeholder is the substitution point for the username in a URL template.
const Placeholder = "{}"

// Platform is a single registry entry.
type Platform struct {
	Name     string
	Template string
}

// URL substitutes username into the template verbatim. No escaping is applied.
func (p Platform) URL(username string) string {
	return strings.Replace(p.Template, Placeholder, username, 1)
}

// Registry is an ordered, read-only set of platforms keyed by name.
// It is safe for concurrent use once built.
type Registry struct {
	platforms []Platform
	byName    map[string]int
	byLower   map[string]int
}

// NewRegistry validates entries and builds a registry preserving their order.
func NewRegistry(platforms []Platform) (*Registry, error) {
	r := &Registry{
		platforms: make([]Platform, 0, len(platforms)),
		byName:    make(map[string]int, len(platforms)),
		byLower:   make(map[string]int, len(platforms)),
	}

	for _, p := range platforms {
		if strings.TrimSpace(p.Name) == "" {
			return nil, errors.New("platform name is empty")
		}
		if n := strings.Count(p.Template, Placeholder); n != 1 {
			return nil, errors.Errorf("platform %q: template must contain %s exactly once (found %d)", p.Name, Placeholder, n)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, errors.Errorf("platform %q is defined twice", p.Name)
		}
		lower := strings.ToLower(p.Name)
		if _, dup := r.byLower[lower]; dup {
			return nil, errors.Errorf("platform %q collides with another name ignoring case", p.Name)
		}

		r.byName[p.Name] = len(r.platforms)
		r.byLower[lower] = len(r.platforms)
		r.platforms = append(r.platforms, p)
	}

	return r, nil
}

// All returns the platforms in registry order. The slice is a copy.
func (r *Registry) All() []Platform {
	out := make([]Platform, len(r.platforms))
	copy(out, r.platforms)
	return out
}

// Names returns platform names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.platforms))
	for i, p := range r.platforms {
		out[i] = p.Name
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.platforms)
}

// Get returns the platform with exactly this name.
func (r *Registry) Get(name string) (Platform, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Platform{}, false
	}
	return r.platforms[i], true
}

// Resolve finds a platform ignoring case and surrounding whitespace.
func (r *Registry) Resolve(name string) (Platform, bool) {
	i, ok := r.byLower[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Platform{}, false
	}
	return r.platforms[i], true
}
