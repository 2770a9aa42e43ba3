package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/forge/internal/archetype"
	"github.com/simonhull/forge/internal/config"
	ferrors "github.com/simonhull/forge/internal/errors"
	"github.com/simonhull/forge/internal/exec"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/generator"
	"github.com/simonhull/forge/internal/input"
	"github.com/simonhull/forge/internal/output"
)

// DefaultProjectType is used when neither flags nor preferences name one.
const DefaultProjectType = archetype.CLITool

// generateOptions holds the flags shared by new and init.
type generateOptions struct {
	projectType       string
	author            string
	description       string
	license           string
	module            string
	features          []string
	noDefaultFeatures bool
	set               []string
	nonInteractive    bool
	dryRun            bool
	fromConfig        string
	force             bool
	git               bool
	format            string
}

func (o *generateOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.projectType, "project-type", "p", "", "Project type ("+strings.Join(archetype.Default().Names(), ", ")+")")
	f.StringVarP(&o.author, "author", "a", "", "Author name for the project")
	f.StringVarP(&o.description, "description", "d", "", "Project description")
	f.StringVarP(&o.license, "license", "l", "", "License: MIT, Apache-2.0, BSD-3-Clause or none")
	f.StringVarP(&o.module, "module", "m", "", "Module path (default: module_prefix/name, or the name)")
	f.StringSliceVarP(&o.features, "features", "f", nil, "Features to enable (comma-separated)")
	f.BoolVar(&o.noDefaultFeatures, "no-default-features", false, "Skip the project type's default features")
	f.StringArrayVar(&o.set, "set", nil, "Template metadata as key=value (repeatable)")
	f.BoolVar(&o.nonInteractive, "non-interactive", false, "Use flags and saved preferences without prompting")
	f.BoolVar(&o.dryRun, "dry-run", false, "Preview the project without writing files")
	f.StringVar(&o.fromConfig, "from-config", "", "Use preferences from this file")
	f.BoolVar(&o.force, "force", false, "Generate into a non-empty directory")
	f.BoolVar(&o.git, "git", false, "Initialize a git repository after generating")
	f.StringVar(&o.format, "format", "text", "Dry-run preview format ("+strings.Join(output.ValidFormats(), ", ")+")")
}

// invalidInput marks a flag error as the user's to fix.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ferrors.ErrInvalidInput)
}

// parseSet parses repeated key=value flags.
func parseSet(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, invalidInput("invalid --set value '%s' (want key=value)", pair)
		}
		out[k] = v
	}
	return out, nil
}

// session carries one run of new or init.
type session struct {
	cmd         *cobra.Command
	opts        *generateOptions
	cfg         *config.Config
	cfgPath     string
	interactive bool
	remembered  bool
}

func newSession(cmd *cobra.Command, opts *generateOptions) (*session, error) {
	if _, err := output.ParseFormat(opts.format); err != nil {
		return nil, fmt.Errorf("%w: %w", err, ferrors.ErrInvalidInput)
	}

	cfgPath := opts.fromConfig
	load := config.LoadFile
	if cfgPath == "" {
		cfgPath, _ = cmd.Flags().GetString("config")
		load = config.Load
	}
	cfg, err := load(cfgPath)
	if err != nil {
		return nil, err
	}
	output.Logger.Debug("loaded preferences", "path", cfgPath, "remember", cfg.RememberChoices)

	return &session{
		cmd:         cmd,
		opts:        opts,
		cfg:         cfg.Merge(config.Overrides{Author: opts.author, License: opts.license}),
		cfgPath:     cfgPath,
		interactive: !opts.nonInteractive && input.IsInteractive(),
	}, nil
}

// request assembles the generation request from flags, preferences and,
// when interactive, prompts.
func (s *session) request(name, target string) (generator.Request, error) {
	projectType, err := s.projectType()
	if err != nil {
		return generator.Request{}, err
	}
	arch, err := archetype.Default().Lookup(projectType)
	if err != nil {
		return generator.Request{}, err
	}

	selected, noDefaults, err := s.features(arch)
	if err != nil {
		return generator.Request{}, err
	}

	set, err := parseSet(s.opts.set)
	if err != nil {
		return generator.Request{}, err
	}

	metadata := s.cfg.Metadata()
	if author := s.ask("author", "Author", s.opts.author, s.cfg.DefaultAuthor); author != "" {
		metadata["author"] = author
	}
	if license := s.ask("license", "License (MIT, Apache-2.0, BSD-3-Clause, none)", s.opts.license, s.cfg.DefaultLicense); license != "" {
		metadata["license"] = license
	}
	if desc := s.ask("", "Description", s.opts.description, arch.Description); desc != "" {
		metadata["description"] = desc
	}
	if s.opts.module != "" {
		metadata["module_path"] = s.opts.module
	}
	for k, v := range set {
		metadata[k] = v
	}

	mode := generator.ModeWrite
	if s.opts.dryRun {
		mode = generator.ModeDryRun
	}

	return generator.Request{
		Name:              name,
		TargetDir:         target,
		Archetype:         arch.Name,
		Features:          selected,
		NoDefaultFeatures: noDefaults,
		Metadata:          metadata,
		Mode:              mode,
		Force:             s.opts.force,
	}, nil
}

func (s *session) projectType() (string, error) {
	if s.opts.projectType != "" {
		return s.opts.projectType, nil
	}
	def := s.cfg.ProjectType
	if def == "" {
		def = DefaultProjectType
	}
	if !s.interactive {
		return def, nil
	}

	var choices []input.Choice
	for _, a := range archetype.Default().All() {
		choices = append(choices, input.Choice{Name: a.Name, Description: a.Description})
	}
	return input.Select("What kind of project?", choices, def)
}

// features returns the explicit selection and whether archetype defaults
// are skipped. The interactive picker shows the defaults pre-ticked, so
// its answer replaces them.
func (s *session) features(arch archetype.Archetype) ([]string, bool, error) {
	if len(s.opts.features) > 0 || s.opts.noDefaultFeatures {
		return s.opts.features, s.opts.noDefaultFeatures, nil
	}

	var preferred []string
	for _, f := range s.cfg.FeaturesFor(arch.Name) {
		if arch.Allows(f) {
			preferred = append(preferred, f)
		}
	}
	if !s.interactive || len(arch.Features) == 0 {
		return preferred, false, nil
	}

	var choices []input.Choice
	for _, name := range arch.Features {
		if p, ok := features.Default().Lookup(name); ok {
			choices = append(choices, input.Choice{Name: name, Description: p.Description()})
		}
	}
	picked, err := input.MultiSelect("Which features?", choices, append(append([]string(nil), arch.Defaults...), preferred...))
	if err != nil {
		return nil, false, err
	}
	return picked, true, nil
}

// ask returns the flag value, else a prompted answer, else def. A prompted
// answer for a rememberable kind may be saved to the preferences file.
func (s *session) ask(kind, label, flag, def string) string {
	if flag != "" || !s.interactive {
		if flag != "" {
			return flag
		}
		return def
	}

	answer := input.Prompt(label, def)
	if kind != "" && answer != "" && answer != def && s.cfg.RememberChoices &&
		input.Confirm("Remember this choice for future projects?", false) {
		s.remembered = s.cfg.Remember(kind, answer) || s.remembered
	}
	return answer
}

// run executes the request and reports the outcome.
func (s *session) run(ctx context.Context, req generator.Request) error {
	gen, err := generator.New(generator.WithLogger(output.Logger))
	if err != nil {
		return err
	}

	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	p := s.printer()
	if s.remembered {
		if err := s.cfg.Save(s.cfgPath); err != nil {
			p.Warn(fmt.Sprintf("Could not save preferences: %v", err))
		}
	}

	if req.Mode == generator.ModeDryRun {
		format, _ := output.ParseFormat(s.opts.format)
		return output.WritePreview(s.cmd.OutOrStdout(), res, format)
	}

	p.Success(fmt.Sprintf("Created %s project: %s", res.Archetype, req.Name))
	p.Verbose(fmt.Sprintf("Wrote %d files to %s", len(res.Paths), res.Root))

	if s.opts.git {
		s.gitInit(ctx, res.Root)
	}

	p.NextSteps(nextSteps(res)...)
	return nil
}

func (s *session) printer() *output.Printer {
	return output.NewPrinter(s.cmd.OutOrStdout(), s.cmd.ErrOrStderr())
}

func nextSteps(res *generator.Result) []string {
	var steps []string
	if dir := relativeDir(res.Root); dir != "." {
		steps = append(steps, "cd "+dir)
	}
	if res.Archetype == archetype.Workspace {
		steps = append(steps, "go work sync")
	} else {
		steps = append(steps, "go mod tidy")
	}
	return append(steps, "make test")
}

// relativeDir returns root relative to the working directory, or root
// itself when no relative form exists.
func relativeDir(root string) string {
	wd, err := os.Getwd()
	if err != nil {
		return root
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return root
	}
	return rel
}

// gitInit initializes a repository. The project is already committed, so
// a failure here is reported as a warning.
func (s *session) gitInit(ctx context.Context, root string) {
	p := s.printer()
	if !exec.GitAvailable() {
		p.Warn("git not found; skipping repository initialization")
		return
	}
	e := exec.NewExecutor(&exec.Options{Stdout: s.cmd.OutOrStdout(), Stderr: s.cmd.ErrOrStderr()})
	if err := exec.GitInit(ctx, e, root, s.interactive); err != nil {
		p.Warn(fmt.Sprintf("git init failed: %v", err))
		return
	}
	p.Verbose("Initialized git repository")
}
