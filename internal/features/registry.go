package features

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds plugins in a fixed order. Resolution and context merging
// follow registry order, never the order a caller listed features in.
type Registry struct {
	plugins []Plugin
	index   map[string]int
}

// NewRegistry creates a registry from plugins in the given order. Names
// must be unique, and every conflict or requirement must name a
// registered plugin.
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(plugins))}
	for _, p := range plugins {
		name := p.Name()
		if name == "" {
			return nil, fmt.Errorf("feature with empty name")
		}
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("feature '%s' registered twice", name)
		}
		r.index[name] = len(r.plugins)
		r.plugins = append(r.plugins, p)
	}

	for _, p := range r.plugins {
		compat := p.Compatibility()
		for _, refs := range [][]string{compat.Conflicts, compat.Requires} {
			for _, ref := range refs {
				if _, ok := r.index[ref]; !ok {
					return nil, fmt.Errorf("feature '%s' references unknown feature '%s'", p.Name(), ref)
				}
			}
		}
	}
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(fmt.Sprintf("features: invalid built-in registry: %v", err))
	}
	return r
})

// Default returns the process-wide registry of built-in features.
func Default() *Registry {
	return defaultRegistry()
}

// Lookup returns the plugin registered under name.
func (r *Registry) Lookup(name string) (Plugin, bool) {
	idx, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.plugins[idx], true
}

// Names returns the registered names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		names[i] = p.Name()
	}
	return names
}

// All returns the plugins in registry order.
func (r *Registry) All() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}

// Resolve maps names to plugins in registry order, dropping duplicates.
// Every unknown name is reported in a single UnknownFeatureError.
func (r *Registry) Resolve(names []string) ([]Plugin, error) {
	selected := make(map[int]bool, len(names))
	var unknown []string
	seenUnknown := make(map[string]bool)

	for _, name := range names {
		idx, ok := r.index[name]
		if !ok {
			if !seenUnknown[name] {
				seenUnknown[name] = true
				unknown = append(unknown, name)
			}
			continue
		}
		selected[idx] = true
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownFeatureError{Names: unknown, Known: r.Names()}
	}

	resolved := make([]Plugin, 0, len(selected))
	for i, p := range r.plugins {
		if selected[i] {
			resolved = append(resolved, p)
		}
	}
	return resolved, nil
}

// Target is the archetype a selection is validated against.
type Target struct {
	Archetype string

	// Allowed is the archetype's allow-list of feature names.
	Allowed []string
}

func (t Target) allows(name string) bool {
	for _, a := range t.Allowed {
		if a == name {
			return true
		}
	}
	return false
}

// Validate checks a resolved selection in two passes. The first checks
// each plugin on its own: it must support the archetype, be on the
// archetype's allow-list and accept the request options. The second checks
// every pair for declared conflicts and every declared requirement.
//
// Output path collisions are not checked here; they are found when the
// manifest is merged.
func (r *Registry) Validate(target Target, plugins []Plugin, opts Options) error {
	for _, p := range plugins {
		if !p.Compatibility().Supports(target.Archetype) || !target.allows(p.Name()) {
			return &CompatibilityError{Reason: ReasonUnsupported, Feature: p.Name(), Archetype: target.Archetype}
		}
		if v, ok := p.(OptionValidator); ok {
			if err := v.ValidateOptions(opts); err != nil {
				return &CompatibilityError{Reason: ReasonInvalidOption, Feature: p.Name(), Archetype: target.Archetype, Err: err}
			}
		}
	}

	selected := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		selected[p.Name()] = true
	}

	for i, a := range plugins {
		for _, b := range plugins[i+1:] {
			if Conflicts(a, b) {
				return &CompatibilityError{Reason: ReasonConflict, Feature: a.Name(), Other: b.Name(), Archetype: target.Archetype}
			}
		}
	}

	for _, p := range plugins {
		for _, req := range p.Compatibility().Requires {
			if !selected[req] {
				return &CompatibilityError{Reason: ReasonMissingRequirement, Feature: p.Name(), Other: req, Archetype: target.Archetype}
			}
		}
	}
	return nil
}

// Conflicts reports whether either plugin declares a conflict with the
// other.
func Conflicts(a, b Plugin) bool {
	return declares(a.Compatibility().Conflicts, b.Name()) || declares(b.Compatibility().Conflicts, a.Name())
}

func declares(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
