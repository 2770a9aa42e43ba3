package generator

import (
	"fmt"

	ferrors "github.com/simonhull/forge/internal/errors"
	"github.com/simonhull/forge/internal/manifest"
)

// Mode selects whether Generate writes to disk.
type Mode string

const (
	// ModeWrite renders every file and commits the project to disk.
	ModeWrite Mode = "write"

	// ModeDryRun renders every file in memory and reports what would be
	// written. The target is only checked for existence.
	ModeDryRun Mode = "dry-run"
)

func (m Mode) normalize() (Mode, error) {
	switch m {
	case "", ModeWrite:
		return ModeWrite, nil
	case ModeDryRun:
		return ModeDryRun, nil
	default:
		return "", fmt.Errorf("unknown generation mode '%s': %w", m, ferrors.ErrInvalidInput)
	}
}

// Request describes one project to generate.
type Request struct {
	// Name is the project name. It names the module, binaries and the
	// default target directory.
	Name string

	// TargetDir is the directory to generate into. Defaults to Name.
	TargetDir string

	// Archetype is the project type, for example "api-server".
	Archetype string

	// Features are the selected feature names. Order is irrelevant.
	Features []string

	// NoDefaultFeatures skips the archetype's default features.
	NoDefaultFeatures bool

	// Metadata holds free-form settings: author, description, license,
	// module_path, go_version, database_kind and anything a template reads.
	Metadata map[string]string

	Mode Mode

	// Force allows writing into a non-empty directory. Existing files at
	// manifest paths are replaced.
	Force bool
}

// Result describes a generated project, or the project a dry run would
// generate. Dry-run and write results for the same request and
// environment list the same paths and dependencies.
type Result struct {
	Mode      Mode     `yaml:"mode" json:"mode"`
	Root      string   `yaml:"root" json:"root"`
	Archetype string   `yaml:"archetype" json:"archetype"`
	Features  []string `yaml:"features" json:"features"`

	// Paths are the project-relative files in manifest order.
	Paths []string `yaml:"paths" json:"paths"`

	// Directories are the empty directories the manifest declares.
	Directories []string `yaml:"directories,omitempty" json:"directories,omitempty"`

	// Written lists what was created on disk. Empty for dry runs.
	Written []string `yaml:"written,omitempty" json:"written,omitempty"`

	Dependencies []manifest.Dependency `yaml:"dependencies" json:"dependencies"`

	// TargetExists reports whether the target was already present.
	TargetExists bool `yaml:"target_exists" json:"target_exists"`
}
