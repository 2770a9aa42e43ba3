// Package features defines optional project capabilities and the registry
// that resolves and validates a selection of them.
package features

import (
	"github.com/simonhull/forge/internal/manifest"
	"github.com/simonhull/forge/internal/render"
)

// Options describes the request a plugin contributes to.
type Options struct {
	ProjectName string
	Archetype   string
	Metadata    map[string]string
}

// Get returns a metadata value, or def when it is unset or blank.
func (o Options) Get(key, def string) string {
	if v, ok := o.Metadata[key]; ok && v != "" {
		return v
	}
	return def
}

// Compatibility lists the constraints a plugin declares.
type Compatibility struct {
	// Archetypes the plugin supports. Empty means every archetype.
	Archetypes []string

	// Conflicts names features that cannot be selected together with this
	// one. Conflicts are symmetric: declaring one side is enough.
	Conflicts []string

	// Requires names features that must also be selected.
	Requires []string
}

// Supports reports whether the plugin can be used with archetype.
func (c Compatibility) Supports(archetype string) bool {
	if len(c.Archetypes) == 0 {
		return true
	}
	for _, a := range c.Archetypes {
		if a == archetype {
			return true
		}
	}
	return false
}

// Plugin is a named unit of change applied to a generated project.
// Implementations must be safe for concurrent use and must return fresh
// slices and maps from every call.
type Plugin interface {
	Name() string
	Description() string
	Compatibility() Compatibility
	Dependencies(opts Options) []manifest.Dependency
	Files(opts Options) []manifest.Entry
	Context(opts Options) render.Map
}

// OptionValidator is implemented by plugins that read request metadata and
// can reject values they do not understand.
type OptionValidator interface {
	ValidateOptions(opts Options) error
}

// Definition is a Plugin built from static data.
type Definition struct {
	ID      string
	Summary string
	Compat  Compatibility
	Deps    []manifest.Dependency
	Entries []manifest.Entry
	Vars    render.Map
}

func (d *Definition) Name() string        { return d.ID }
func (d *Definition) Description() string { return d.Summary }

func (d *Definition) Compatibility() Compatibility {
	return Compatibility{
		Archetypes: append([]string(nil), d.Compat.Archetypes...),
		Conflicts:  append([]string(nil), d.Compat.Conflicts...),
		Requires:   append([]string(nil), d.Compat.Requires...),
	}
}

func (d *Definition) Dependencies(Options) []manifest.Dependency {
	return append([]manifest.Dependency(nil), d.Deps...)
}

func (d *Definition) Files(Options) []manifest.Entry {
	return append([]manifest.Entry(nil), d.Entries...)
}

func (d *Definition) Context(Options) render.Map {
	return d.Vars.Clone()
}
