package render

import (
	"fmt"

	ferrors "github.com/simonhull/forge/internal/errors"
)

// RenderError reports a template that failed to parse or render.
type RenderError struct {
	Template string
	Line     int
	Reason   string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template '%s' line %d: %s", e.Template, e.Line, e.Reason)
	}
	return fmt.Sprintf("template '%s': %s", e.Template, e.Reason)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is matches the template error class.
func (e *RenderError) Is(target error) bool {
	return target == ferrors.ErrTemplate
}

func newError(template string, line int, format string, args ...any) *RenderError {
	return &RenderError{Template: template, Line: line, Reason: fmt.Sprintf(format, args...)}
}
