// Package manifest holds the resolved list of files and dependencies for a
// single generation request.
package manifest

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	ferrors "github.com/simonhull/forge/internal/errors"
)

// Default permissions for generated entries.
const (
	DefaultFileMode fs.FileMode = 0o644
	DefaultDirMode  fs.FileMode = 0o755
)

// Entry declares one output of an archetype or feature.
type Entry struct {
	// Source is the template name. Unused for directories.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Path is the output path relative to the project root. It may
	// contain template expressions such as {{ project_name }}.
	Path string `yaml:"path" json:"path"`

	// Required entries are written even when they render empty. Optional
	// entries that render to whitespace only are skipped.
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`

	// Mode overrides the default permissions.
	Mode fs.FileMode `yaml:"mode,omitempty" json:"mode,omitempty"`

	// Dir marks an empty directory to create.
	Dir bool `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// File declares a required template-backed file.
func File(source, path string) Entry {
	return Entry{Source: source, Path: path, Required: true}
}

// Optional declares a file that is skipped when it renders empty.
func Optional(source, path string) Entry {
	return Entry{Source: source, Path: path}
}

// Executable declares a required file written with mode 0755.
func Executable(source, path string) Entry {
	return Entry{Source: source, Path: path, Required: true, Mode: 0o755}
}

// Dir declares an empty directory.
func Dir(path string) Entry {
	return Entry{Path: path, Required: true, Dir: true}
}

// FileMode returns the permissions to write the entry with.
func (e Entry) FileMode() fs.FileMode {
	if e.Mode != 0 {
		return e.Mode
	}
	if e.Dir {
		return DefaultDirMode
	}
	return DefaultFileMode
}

// Item is an entry placed in a manifest.
type Item struct {
	Entry

	// Output is the expanded, cleaned output path.
	Output string

	// Owner names the archetype or feature that contributed the entry.
	Owner string
}

// Manifest is an ordered set of items with unique output paths.
type Manifest struct {
	items []Item
	index map[string]int
}

// New creates an empty manifest.
func New() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Add places entry at the already-expanded output path. Reusing an output
// path, or nesting a path under a file, is a CollisionError naming both
// owners; the manifest is left unchanged.
func (m *Manifest) Add(owner string, entry Entry, output string) error {
	clean, err := CleanPath(output)
	if err != nil {
		return err
	}

	if idx, ok := m.index[clean]; ok {
		return &CollisionError{Path: clean, Owners: []string{m.items[idx].Owner, owner}}
	}

	// a/b cannot be written when a is a file, and a cannot be a file when
	// a/b exists.
	for dir := path.Dir(clean); dir != "."; dir = path.Dir(dir) {
		if idx, ok := m.index[dir]; ok && !m.items[idx].Dir {
			return &CollisionError{Path: dir, Owners: []string{m.items[idx].Owner, owner}}
		}
	}
	if !entry.Dir {
		prefix := clean + "/"
		for _, item := range m.items {
			if strings.HasPrefix(item.Output, prefix) {
				return &CollisionError{Path: clean, Owners: []string{item.Owner, owner}}
			}
		}
	}

	m.index[clean] = len(m.items)
	m.items = append(m.items, Item{Entry: entry, Output: clean, Owner: owner})
	return nil
}

// Items returns the manifest items in insertion order.
func (m *Manifest) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of items.
func (m *Manifest) Len() int {
	return len(m.items)
}

// Paths returns the output paths in insertion order.
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.items))
	for i, item := range m.items {
		paths[i] = item.Output
	}
	return paths
}

// CleanPath validates a project-relative output path and returns its clean
// slash-separated form.
func CleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", &InvalidPathError{Path: p, Reason: "path is empty"}
	}
	slashed := strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(slashed, "/") || (len(slashed) > 1 && slashed[1] == ':') {
		return "", &InvalidPathError{Path: p, Reason: "path must be relative"}
	}
	clean := path.Clean(slashed)
	if clean == "." {
		return "", &InvalidPathError{Path: p, Reason: "path refers to the project root"}
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &InvalidPathError{Path: p, Reason: "path escapes the project root"}
	}
	return clean, nil
}

// CollisionError reports two manifest sources claiming the same path.
type CollisionError struct {
	Path   string
	Owners []string
}

func (e *CollisionError) Error() string {
	owners := append([]string(nil), e.Owners...)
	sort.Strings(owners)
	return fmt.Sprintf("output path '%s' is claimed by more than one source: %s", e.Path, strings.Join(owners, ", "))
}

// Is matches the invalid input class.
func (e *CollisionError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}

// InvalidPathError reports an output path outside the project root.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid output path '%s': %s", e.Path, e.Reason)
}

// Is matches the invalid input class.
func (e *InvalidPathError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}
