// Package generator turns a Request into a project on disk.
//
// Generation runs in two phases. The first resolves the archetype and
// features, merges the manifest, builds the render context and renders
// every file in memory. Only when all of that succeeds does the second
// phase commit the files through a Transaction. A template error on the
// last file therefore leaves nothing behind.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/simonhull/forge/internal/archetype"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/manifest"
	"github.com/simonhull/forge/internal/render"
	"github.com/simonhull/forge/internal/templates"
)

// Generator runs generation requests. It holds only read-only state, so
// one Generator may serve concurrent requests for distinct targets.
type Generator struct {
	archetypes *archetype.Registry
	features   *features.Registry
	engine     *render.Engine
	now        func() time.Time
	logger     *log.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithArchetypes replaces the built-in archetype registry.
func WithArchetypes(r *archetype.Registry) Option {
	return func(g *Generator) {
		g.archetypes = r
	}
}

// WithFeatures replaces the built-in feature registry.
func WithFeatures(r *features.Registry) Option {
	return func(g *Generator) {
		g.features = r
	}
}

// WithEngine replaces the engine loaded with the embedded templates.
func WithEngine(e *render.Engine) Option {
	return func(g *Generator) {
		g.engine = e
	}
}

// WithClock sets the time source for the year variable.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger for debug tracing of each step.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a Generator over the built-in registries and templates.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		archetypes: archetype.Default(),
		features:   features.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.engine == nil {
		engine, err := templates.NewEngine()
		if err != nil {
			return nil, err
		}
		g.engine = engine
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	return g, nil
}

// Plan is a resolved request: everything Generate knows before it renders.
type Plan struct {
	Request      Request
	Root         string
	Archetype    archetype.Archetype
	Features     []features.Plugin
	Manifest     *manifest.Manifest
	Dependencies []manifest.Dependency
	Context      render.Context
}

// FeatureNames returns the resolved feature names in registry order.
func (p *Plan) FeatureNames() []string {
	names := make([]string, len(p.Features))
	for i, f := range p.Features {
		names[i] = f.Name()
	}
	return names
}

// Plan validates req and resolves it without rendering file bodies or
// touching the filesystem.
func (g *Generator) Plan(req Request) (*Plan, error) {
	mode, err := req.Mode.normalize()
	if err != nil {
		return nil, err
	}
	req.Mode = mode

	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	if p := strings.TrimSpace(req.Metadata["module_path"]); p != "" {
		if err := ValidateModulePath(p); err != nil {
			return nil, err
		}
	}

	arch, err := g.archetypes.Lookup(req.Archetype)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("resolved archetype", "archetype", arch.Name)

	plugins, err := g.features.Resolve(g.selection(req, arch))
	if err != nil {
		return nil, err
	}
	opts := pluginOptions(req)
	if err := g.features.Validate(arch.Target(), plugins, opts); err != nil {
		return nil, err
	}

	plan := &Plan{
		Request:      req,
		Root:         targetDir(req),
		Archetype:    arch,
		Features:     plugins,
		Dependencies: mergeDependencies(arch, plugins, opts),
	}
	g.logger.Debug("resolved features", "features", plan.FeatureNames(), "dependencies", len(plan.Dependencies))

	plan.Context = buildContext(req, arch, g.features, plugins, plan.Dependencies, g.now())
	if license := opts.Get("license", DefaultLicense); license != "" {
		if _, ok := NormalizeLicense(license); !ok {
			g.logger.Warn("no license text available, skipping LICENSE", "license", license)
		}
	}

	m, err := g.mergeManifest(arch, plugins, opts, plan.Context)
	if err != nil {
		return nil, err
	}
	plan.Manifest = m
	g.logger.Debug("merged manifest", "entries", m.Len())
	return plan, nil
}

// selection returns the requested features plus the archetype defaults.
// A default that conflicts with an explicit selection is dropped, so
// asking for urfave-cli on a cli-tool replaces the default cobra.
func (g *Generator) selection(req Request, arch archetype.Archetype) []string {
	names := append([]string(nil), req.Features...)
	if req.NoDefaultFeatures {
		return names
	}

	explicit := make(map[string]bool, len(req.Features))
	for _, name := range req.Features {
		explicit[name] = true
	}

	for _, def := range arch.Defaults {
		if explicit[def] {
			continue
		}
		plugin, ok := g.features.Lookup(def)
		if !ok {
			names = append(names, def) // Reported by Resolve
			continue
		}
		if g.conflictsWithExplicit(plugin, req.Features) {
			g.logger.Debug("dropped default feature", "feature", def)
			continue
		}
		names = append(names, def)
	}
	return names
}

func (g *Generator) conflictsWithExplicit(plugin features.Plugin, explicit []string) bool {
	for _, name := range explicit {
		if other, ok := g.features.Lookup(name); ok && features.Conflicts(plugin, other) {
			return true
		}
	}
	return false
}

// mergeManifest adds the base entries, then each plugin's entries in
// registry order. Output paths are expanded before collision checks.
func (g *Generator) mergeManifest(arch archetype.Archetype, plugins []features.Plugin, opts features.Options, ctx render.Context) (*manifest.Manifest, error) {
	m := manifest.New()
	add := func(owner string, entries []manifest.Entry) error {
		for _, e := range entries {
			out, err := g.expandPath(e.Path, ctx)
			if err != nil {
				return err
			}
			if err := m.Add(owner, e, out); err != nil {
				return err
			}
		}
		return nil
	}

	if err := add(arch.Name, arch.Files); err != nil {
		return nil, err
	}
	for _, p := range plugins {
		if err := add(p.Name(), p.Files(opts)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (g *Generator) expandPath(p string, ctx render.Context) (string, error) {
	if !strings.Contains(p, "{{") && !strings.Contains(p, "{%") {
		return p, nil
	}
	out, err := g.engine.RenderString("path "+p, p, ctx)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// renderedFile is a manifest item rendered in memory.
type renderedFile struct {
	item    manifest.Item
	content []byte
}

// render renders every file entry. Optional entries that come out blank
// are dropped.
func (g *Generator) render(ctx context.Context, plan *Plan) ([]renderedFile, error) {
	var files []renderedFile
	for _, item := range plan.Manifest.Items() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if item.Dir {
			files = append(files, renderedFile{item: item})
			continue
		}

		content, err := g.engine.Render(item.Source, plan.Context)
		if err != nil {
			return nil, err
		}
		if !item.Required && strings.TrimSpace(string(content)) == "" {
			g.logger.Debug("skipped empty optional file", "path", item.Output)
			continue
		}
		if content == nil {
			content = []byte{}
		}
		files = append(files, renderedFile{item: item, content: content})
	}
	return files, nil
}

// Generate runs req. In write mode the project is committed all-or-nothing;
// in dry-run mode the same resolution and rendering run without writing.
// Cancelling ctx stops generation up to the start of the commit.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	plan, err := g.Plan(req)
	if err != nil {
		return nil, err
	}
	req = plan.Request

	exists, err := checkTarget(plan.Root, req.Mode, req.Force)
	if err != nil {
		return nil, err
	}

	files, err := g.render(ctx, plan)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Mode:         req.Mode,
		Root:         plan.Root,
		Archetype:    plan.Archetype.Name,
		Features:     plan.FeatureNames(),
		Dependencies: plan.Dependencies,
		TargetExists: exists,
	}
	for _, f := range files {
		if f.item.Dir {
			result.Directories = append(result.Directories, f.item.Output)
		} else {
			result.Paths = append(result.Paths, f.item.Output)
		}
	}

	if req.Mode == ModeDryRun {
		g.logger.Debug("dry run complete", "root", plan.Root, "files", len(result.Paths))
		return result, nil
	}

	// Last point at which cancellation is honoured.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The target may have changed while rendering.
	if _, err := checkTarget(plan.Root, req.Mode, req.Force); err != nil {
		return nil, err
	}

	tx := NewTransaction(plan.Root)
	for _, f := range files {
		if f.item.Dir {
			tx.Add(&MkdirOp{Rel: f.item.Output, Mode: f.item.FileMode()})
			continue
		}
		tx.Add(&WriteFileOp{Rel: f.item.Output, Content: f.content, Mode: f.item.FileMode(), Exclusive: !req.Force})
	}

	written, err := tx.Commit()
	if err != nil {
		return nil, err
	}
	result.Written = written
	g.logger.Debug("committed project", "root", plan.Root, "written", len(written))
	return result, nil
}

func targetDir(req Request) string {
	if req.TargetDir != "" {
		return filepath.Clean(req.TargetDir)
	}
	return req.Name
}

// checkTarget reports whether root exists. For writes, root must be
// missing or a directory, and the directory must be empty unless force is
// set. Dry runs only stat the target.
func checkTarget(root string, mode Mode, force bool) (bool, error) {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &IoError{Op: "stat", Path: root, Err: err}
	}
	if mode == ModeDryRun {
		return true, nil
	}

	if !info.IsDir() {
		return true, &TargetExistsError{Path: root}
	}
	if force {
		return true, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return true, &IoError{Op: "read", Path: root, Err: fmt.Errorf("cannot list target: %w", err)}
	}
	if len(entries) > 0 {
		return true, &TargetNotEmptyError{Path: root}
	}
	return true, nil
}
