package manifest

import (
	"fmt"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// Dependency is a Go module requirement of the generated project.
type Dependency struct {
	Path    string `yaml:"path" json:"path"`
	Version string `yaml:"version" json:"version"`
}

// Validate checks the module path and that the version is canonical semver.
func (d Dependency) Validate() error {
	if err := module.CheckPath(d.Path); err != nil {
		return fmt.Errorf("dependency '%s': %w", d.Path, err)
	}
	if !semver.IsValid(d.Version) {
		return fmt.Errorf("dependency '%s': invalid version '%s'", d.Path, d.Version)
	}
	return nil
}

func (d Dependency) String() string {
	return d.Path + " " + d.Version
}

// Dependencies is an ordered dependency list keyed by module path.
type Dependencies struct {
	deps  []Dependency
	index map[string]int
}

// NewDependencies creates an empty list.
func NewDependencies() *Dependencies {
	return &Dependencies{index: make(map[string]int)}
}

// Add appends dep. A later entry for a module already in the list replaces
// its version and keeps its original position.
func (d *Dependencies) Add(dep Dependency) {
	if idx, ok := d.index[dep.Path]; ok {
		d.deps[idx].Version = dep.Version
		return
	}
	d.index[dep.Path] = len(d.deps)
	d.deps = append(d.deps, dep)
}

// List returns the dependencies in order.
func (d *Dependencies) List() []Dependency {
	out := make([]Dependency, len(d.deps))
	copy(out, d.deps)
	return out
}
