package generator

import (
	"strings"
	"time"

	"github.com/simonhull/forge/internal/archetype"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/filters"
	"github.com/simonhull/forge/internal/manifest"
	"github.com/simonhull/forge/internal/render"
)

// Defaults applied when metadata leaves a value unset.
const (
	DefaultGoVersion = "1.25"
	DefaultLicense   = "MIT"
)

// licenses maps accepted spellings to the ids the LICENSE template knows.
var licenses = map[string]string{
	"mit":          "MIT",
	"apache-2.0":   "Apache-2.0",
	"apache2":      "Apache-2.0",
	"apache":       "Apache-2.0",
	"bsd-3-clause": "BSD-3-Clause",
	"bsd3":         "BSD-3-Clause",
	"none":         "",
}

// NormalizeLicense returns the canonical id for a license name, ignoring
// case. "none" maps to the empty string. ok is false for licenses forge
// has no text for; the project then gets no LICENSE file.
func NormalizeLicense(name string) (id string, ok bool) {
	id, ok = licenses[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// ModulePath returns the module path for a request: the module_path
// metadata, else module_prefix joined with the name, else the bare name.
func ModulePath(name string, metadata map[string]string) string {
	if p := strings.TrimSpace(metadata["module_path"]); p != "" {
		return p
	}
	if prefix := strings.Trim(strings.TrimSpace(metadata["module_prefix"]), "/"); prefix != "" {
		return prefix + "/" + name
	}
	return name
}

// buildContext assembles the render context in three layers, each
// overriding the one before: flattened metadata, project identity, then
// feature contributions in registry order.
func buildContext(req Request, arch archetype.Archetype, registry *features.Registry, plugins []features.Plugin, deps []manifest.Dependency, now time.Time) render.Context {
	opts := pluginOptions(req)

	metadata := render.Map{}
	for k, v := range req.Metadata {
		metadata[k] = render.String(v)
	}

	ctx := metadata.Clone()
	ctx["metadata"] = metadata

	selected := make(map[string]bool, len(plugins))
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
		selected[p.Name()] = true
	}
	for _, name := range registry.Names() {
		ctx["has_"+filters.SnakeCase(name)] = render.Bool(selected[name])
	}

	depList := make(render.List, len(deps))
	for i, d := range deps {
		depList[i] = render.Map{
			"path":    render.String(d.Path),
			"version": render.String(d.Version),
		}
	}

	license, _ := NormalizeLicense(opts.Get("license", DefaultLicense))

	ctx["project_name"] = render.String(req.Name)
	ctx["package_name"] = render.String(filters.PackageName(req.Name))
	ctx["module_path"] = render.String(ModulePath(req.Name, req.Metadata))
	ctx["archetype"] = render.String(arch.Name)
	ctx["project_type"] = render.String(arch.Name)
	ctx["year"] = render.String(now.Format("2006"))
	ctx["go_version"] = render.String(opts.Get("go_version", DefaultGoVersion))
	ctx["author"] = render.String(opts.Get("author", "The "+req.Name+" authors"))
	ctx["description"] = render.String(opts.Get("description", arch.Description))
	ctx["license"] = render.String(license)
	ctx["features"] = render.Strings(names...)
	ctx["dependencies"] = depList

	for _, p := range plugins {
		for k, v := range p.Context(opts) {
			ctx[k] = v
		}
	}
	return ctx
}

// mergeDependencies lists the archetype's dependencies, then each
// plugin's in registry order. A later entry for the same module replaces
// the version in place.
func mergeDependencies(arch archetype.Archetype, plugins []features.Plugin, opts features.Options) []manifest.Dependency {
	deps := manifest.NewDependencies()
	for _, d := range arch.Dependencies {
		deps.Add(d)
	}
	for _, p := range plugins {
		for _, d := range p.Dependencies(opts) {
			deps.Add(d)
		}
	}
	return deps.List()
}

func pluginOptions(req Request) features.Options {
	return features.Options{ProjectName: req.Name, Archetype: req.Archetype, Metadata: req.Metadata}
}
