package core

import (
	"strings"

	"github.com/samber/lo"
)

// Registry is the ordered set of display names present in a room.
// Order is join order and is what newcomers see as the roster.
type Registry struct {
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Join trims name and inserts it. It returns the stored name, or ErrEmptyName /
// ErrNameTaken without touching the registry.
func (r *Registry) Join(name string) (string, error) {
	name = trimName(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if r.Contains(name) {
		return "", ErrNameTaken
	}
	r.names = append(r.names, name)
	return name, nil
}

// Leave removes name. Unknown names are ignored.
func (r *Registry) Leave(name string) {
	r.names = lo.Without(r.names, name)
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	return lo.Contains(r.names, name)
}

// Snapshot returns a copy of the names in join order.
func (r *Registry) Snapshot() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.names)
}

func trimName(name string) string {
	return strings.TrimSpace(name)
}
