package features

import (
	"fmt"
	"strings"

	ferrors "github.com/simonhull/forge/internal/errors"
)

// UnknownFeatureError reports feature names missing from the registry.
type UnknownFeatureError struct {
	Names []string
	Known []string
}

func (e *UnknownFeatureError) Error() string {
	label := "feature"
	if len(e.Names) > 1 {
		label = "features"
	}
	return fmt.Sprintf("unknown %s %s (available: %s)", label, quoteList(e.Names), strings.Join(e.Known, ", "))
}

// Is matches the invalid input class.
func (e *UnknownFeatureError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}

// Reason classifies a CompatibilityError.
type Reason string

const (
	ReasonUnsupported        Reason = "unsupported"
	ReasonConflict           Reason = "conflict"
	ReasonMissingRequirement Reason = "missing-requirement"
	ReasonInvalidOption      Reason = "invalid-option"
)

// CompatibilityError reports a feature selection that cannot be generated.
type CompatibilityError struct {
	Reason    Reason
	Feature   string
	Other     string // the conflicting or required feature
	Archetype string
	Err       error // set for invalid options
}

func (e *CompatibilityError) Error() string {
	switch e.Reason {
	case ReasonUnsupported:
		return fmt.Sprintf("feature '%s' is not supported for archetype '%s'", e.Feature, e.Archetype)
	case ReasonConflict:
		return fmt.Sprintf("features '%s' and '%s' cannot be combined", e.Feature, e.Other)
	case ReasonMissingRequirement:
		return fmt.Sprintf("feature '%s' requires '%s' to be selected", e.Feature, e.Other)
	default:
		return fmt.Sprintf("feature '%s': %v", e.Feature, e.Err)
	}
}

func (e *CompatibilityError) Unwrap() error {
	return e.Err
}

// Is matches the invalid input class.
func (e *CompatibilityError) Is(target error) bool {
	return target == ferrors.ErrInvalidInput
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}
