package generator

import (
	"errors"
	"fmt"

	"golang.org/x/mod/module"

	"github.com/simonhull/forge/internal/filters"
)

// MaxNameLength is the longest accepted project name.
const MaxNameLength = 64

// reservedNames cannot name a project: as a package name they mean
// something else to the go command, or they collide with a directory or
// file the archetypes generate.
var reservedNames = map[string]bool{
	"main":     true,
	"test":     true,
	"doc":      true,
	"internal": true,
	"cmd":      true,
	"vendor":   true,
	"testdata": true,
}

// ValidateName checks a project name: ASCII letters, digits, '-' and '_'
// only, starting with a letter, without consecutive separators and not
// ending with one. Reserved names are rejected whatever their case.
func ValidateName(name string) error {
	fail := func(reason string) error {
		return &InvalidNameError{Field: "project name", Value: name, Reason: reason}
	}

	if name == "" {
		return fail("name is empty")
	}
	if len(name) > MaxNameLength {
		return fail("name is longer than 64 characters")
	}

	prevSep := false
	for i, r := range name {
		sep := r == '-' || r == '_'
		if sep && prevSep {
			return fail("name contains consecutive separators")
		}
		prevSep = sep

		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return fail("name contains whitespace")
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fail("name starts with a digit")
			}
		case r == '-' || r == '_':
			if i == 0 {
				return fail("name starts with a separator")
			}
		default:
			return fail("only letters, digits, '-' and '_' are allowed")
		}
	}

	if last := name[len(name)-1]; last == '-' || last == '_' {
		return fail("name ends with a separator")
	}
	if pkg := filters.PackageName(name); reservedNames[pkg] {
		return fail(fmt.Sprintf("'%s' is a reserved name", pkg))
	}
	return nil
}

// ValidateModulePath checks an explicit module path with the go command's
// own rules.
func ValidateModulePath(path string) error {
	if err := module.CheckPath(path); err != nil {
		reason := err.Error()
		var pathErr *module.InvalidPathError
		if errors.As(err, &pathErr) && pathErr.Err != nil {
			reason = pathErr.Err.Error()
		}
		return &InvalidNameError{Field: "module path", Value: path, Reason: reason}
	}
	return nil
}
