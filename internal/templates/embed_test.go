package templates_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/forge/internal/archetype"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/templates"
)

// referencedSources collects every template named by a built-in archetype
// or feature.
func referencedSources(t *testing.T) map[string]string {
	t.Helper()

	refs := make(map[string]string)
	for _, a := range archetype.Default().All() {
		for _, e := range a.Files {
			if !e.Dir {
				refs[e.Source] = a.Name
			}
		}
	}
	for _, p := range features.Default().All() {
		opts := features.Options{ProjectName: "demo", Archetype: archetype.APIServer}
		for _, e := range p.Files(opts) {
			refs[e.Source] = p.Name()
		}
	}
	return refs
}

func readTemplate(name string) (string, error) {
	data, err := fs.ReadFile(templates.FS(), name)
	return string(data), err
}

func TestNamesAreSorted(t *testing.T) {
	names, err := templates.Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "common/go.mod.tmpl")
}

func TestEveryReferencedTemplateExists(t *testing.T) {
	engine, err := templates.NewEngine()
	require.NoError(t, err)

	for source, owner := range referencedSources(t) {
		assert.True(t, engine.Has(source), "%s references missing template %s", owner, source)
	}
}

func TestEveryTemplateIsReferenced(t *testing.T) {
	refs := referencedSources(t)
	names, err := templates.Names()
	require.NoError(t, err)

	for _, name := range names {
		_, ok := refs[name]
		assert.True(t, ok, "template %s is not used by any archetype or feature", name)
	}
}

func TestEveryTemplateParses(t *testing.T) {
	engine, err := templates.NewEngine()
	require.NoError(t, err)

	for _, name := range engine.Names() {
		t.Run(name, func(t *testing.T) {
			src, err := readTemplate(name)
			require.NoError(t, err)
			_, err = engine.Parse(name, src)
			assert.NoError(t, err)
		})
	}
}

func TestEmptyTemplateRendersEmpty(t *testing.T) {
	engine, err := templates.NewEngine()
	require.NoError(t, err)

	out, err := engine.Render("features/testing/gitkeep.tmpl", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
