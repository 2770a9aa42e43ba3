package generator

import (
	"fmt"
	"strings"

	"github.com/simonhull/forge/internal/archetype"
	ferrors "github.com/simonhull/forge/internal/errors"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/manifest"
	"github.com/simonhull/forge/internal/render"
)

// Errors raised by the registries, the manifest and the renderer surface
// unchanged from Generate. The aliases let callers match every failure
// kind from this package.
type (
	UnknownArchetypeError  = archetype.UnknownArchetypeError
	UnknownFeatureError    = features.UnknownFeatureError
	CompatibilityError     = features.CompatibilityError
	ManifestCollisionError = manifest.CollisionError
	InvalidPathError       = manifest.InvalidPathError
	RenderError            = render.RenderError
)

// InvalidNameError reports a project name or module path that fails the
// identifier rules.
type InvalidNameError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
}

// Is matches the invalid input class.
func (e *InvalidNameError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}

// TargetExistsError reports a target path that exists but is not a
// directory.
type TargetExistsError struct {
	Path string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("target '%s' already exists and is not a directory", e.Path)
}

// Is matches the invalid input class.
func (e *TargetExistsError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}

// TargetNotEmptyError reports a target directory that already has
// contents.
type TargetNotEmptyError struct {
	Path string
}

func (e *TargetNotEmptyError) Error() string {
	return fmt.Sprintf("target directory '%s' is not empty (use --force to generate into it)", e.Path)
}

// Is matches the invalid input class.
func (e *TargetNotEmptyError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}

// IoError reports a filesystem failure. Written lists the project-relative
// paths created before the failure; the transaction has already tried to
// remove them.
type IoError struct {
	Op      string
	Path    string
	Written []string
	Err     error
}

func (e *IoError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	if len(e.Written) > 0 {
		msg += fmt.Sprintf(" (rolled back %d written: %s)", len(e.Written), strings.Join(e.Written, ", "))
	}
	return msg
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// Is matches the environment class.
func (e *IoError) Is(target error) bool {
	return target == ferrors.ErrEnvironment
}
