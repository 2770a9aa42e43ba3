// Package archetype defines the project shapes forge can generate.
package archetype

import (
	"fmt"
	"strings"
	"sync"

	ferrors "github.com/simonhull/forge/internal/errors"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/manifest"
)

// Archetype names.
const (
	CLITool    = "cli-tool"
	Library    = "library"
	APIServer  = "api-server"
	WasmApp    = "wasm-app"
	GameEngine = "game-engine"
	Embedded   = "embedded"
	Workspace  = "workspace"
)

// Archetype is a project shape: its base files, the dependencies those
// files need, the features enabled by default and the features it allows.
type Archetype struct {
	Name         string
	Description  string
	Files        []manifest.Entry
	Dependencies []manifest.Dependency

	// Defaults are selected unless the request opts out.
	Defaults []string

	// Features is the allow-list of selectable feature names.
	Features []string
}

// Target returns the validation target for a feature selection.
func (a Archetype) Target() features.Target {
	return features.Target{Archetype: a.Name, Allowed: append([]string(nil), a.Features...)}
}

// Allows reports whether feature is on the allow-list.
func (a Archetype) Allows(feature string) bool {
	for _, f := range a.Features {
		if f == feature {
			return true
		}
	}
	return false
}

func (a Archetype) clone() Archetype {
	a.Files = append([]manifest.Entry(nil), a.Files...)
	a.Dependencies = append([]manifest.Dependency(nil), a.Dependencies...)
	a.Defaults = append([]string(nil), a.Defaults...)
	a.Features = append([]string(nil), a.Features...)
	return a
}

// Registry maps archetype names to definitions. It is read-only once built.
type Registry struct {
	archetypes []Archetype
	index      map[string]int
}

// NewRegistry creates a registry. Names must be unique and every default
// feature must also be on the archetype's allow-list.
func NewRegistry(archetypes ...Archetype) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(archetypes))}
	for _, a := range archetypes {
		if a.Name == "" {
			return nil, fmt.Errorf("archetype with empty name")
		}
		if _, dup := r.index[a.Name]; dup {
			return nil, fmt.Errorf("archetype '%s' registered twice", a.Name)
		}
		for _, d := range a.Defaults {
			if !a.Allows(d) {
				return nil, fmt.Errorf("archetype '%s': default feature '%s' is not on its allow-list", a.Name, d)
			}
		}
		r.index[a.Name] = len(r.archetypes)
		r.archetypes = append(r.archetypes, a.clone())
	}
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(fmt.Sprintf("archetype: invalid built-in registry: %v", err))
	}
	return r
})

// Default returns the process-wide registry of built-in archetypes.
func Default() *Registry {
	return defaultRegistry()
}

// Lookup returns a copy of the named archetype. Matching is exact; an
// unknown name is an error, never a fallback.
func (r *Registry) Lookup(name string) (Archetype, error) {
	idx, ok := r.index[name]
	if !ok {
		return Archetype{}, &UnknownArchetypeError{Name: name, Known: r.Names()}
	}
	return r.archetypes[idx].clone(), nil
}

// Names returns archetype names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.archetypes))
	for i, a := range r.archetypes {
		names[i] = a.Name
	}
	return names
}

// All returns copies of every archetype in registry order.
func (r *Registry) All() []Archetype {
	out := make([]Archetype, len(r.archetypes))
	for i, a := range r.archetypes {
		out[i] = a.clone()
	}
	return out
}

// UnknownArchetypeError reports an archetype name missing from the registry.
type UnknownArchetypeError struct {
	Name  string
	Known []string
}

func (e *UnknownArchetypeError) Error() string {
	return fmt.Sprintf("unknown project type '%s' (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Is matches the invalid input class.
func (e *UnknownArchetypeError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}
