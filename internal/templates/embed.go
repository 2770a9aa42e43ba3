// Package templates provides the embedded template pack for archetypes and
// features.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/simonhull/forge/internal/render"
)

//go:embed data
var dataFS embed.FS

const root = "data"

// FS returns the template pack. Names are relative to its root, for
// example "common/go.mod.tmpl".
func FS() fs.FS {
	sub, err := fs.Sub(dataFS, root)
	if err != nil {
		panic(fmt.Sprintf("templates: %v", err))
	}
	return sub
}

// NewEngine creates a render engine loaded with the template pack. Block
// tags trim their own line so control flow leaves no blank lines.
func NewEngine() (*render.Engine, error) {
	e := render.New(render.WithTrimBlocks())
	if err := e.LoadFS(dataFS, root); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return e, nil
}

// Names lists every template in the pack in sorted order.
func Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
