package generator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/forge/internal/archetype"
	ferrors "github.com/simonhull/forge/internal/errors"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{name: "simple", input: "app"},
		{name: "single letter", input: "a"},
		{name: "kebab", input: "my-app"},
		{name: "snake", input: "my_project"},
		{name: "mixed case with digits", input: "MyApp2"},
		{name: "max length", input: strings.Repeat("a", MaxNameLength)},
		{name: "empty", input: "", reason: "name is empty"},
		{name: "too long", input: strings.Repeat("a", MaxNameLength+1), reason: "name is longer than 64 characters"},
		{name: "space", input: "my project", reason: "name contains whitespace"},
		{name: "tab", input: "my\tproject", reason: "name contains whitespace"},
		{name: "leading digit", input: "1app", reason: "name starts with a digit"},
		{name: "leading dash", input: "-app", reason: "name starts with a separator"},
		{name: "leading underscore", input: "_app", reason: "name starts with a separator"},
		{name: "trailing dash", input: "app-", reason: "name ends with a separator"},
		{name: "dot", input: "my.app", reason: "only letters, digits, '-' and '_' are allowed"},
		{name: "slash", input: "acme/app", reason: "only letters, digits, '-' and '_' are allowed"},
		{name: "non-ascii", input: "héllo", reason: "only letters, digits, '-' and '_' are allowed"},
		{name: "double dash", input: "my--app", reason: "name contains consecutive separators"},
		{name: "double underscore", input: "my__app", reason: "name contains consecutive separators"},
		{name: "mixed separators", input: "my-_app", reason: "name contains consecutive separators"},
		{name: "reserved main", input: "main", reason: "'main' is a reserved name"},
		{name: "reserved test", input: "test", reason: "'test' is a reserved name"},
		{name: "reserved doc", input: "doc", reason: "'doc' is a reserved name"},
		{name: "reserved internal", input: "internal", reason: "'internal' is a reserved name"},
		{name: "reserved cmd", input: "cmd", reason: "'cmd' is a reserved name"},
		{name: "reserved vendor", input: "vendor", reason: "'vendor' is a reserved name"},
		{name: "reserved testdata", input: "testdata", reason: "'testdata' is a reserved name"},
		{name: "reserved in other case", input: "Main", reason: "'main' is a reserved name"},
		{name: "reserved as package name", input: "test-data", reason: "'testdata' is a reserved name"},
		{name: "reserved word inside name", input: "main-app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}

			var nameErr *InvalidNameError
			require.ErrorAs(t, err, &nameErr)
			assert.Equal(t, "project name", nameErr.Field)
			assert.Equal(t, tt.input, nameErr.Value)
			assert.Equal(t, tt.reason, nameErr.Reason)
			assert.True(t, errors.Is(err, ferrors.ErrInvalidInput))
		})
	}
}

func TestValidateNameMessage(t *testing.T) {
	err := ValidateName("my project")
	require.Error(t, err)
	assert.Equal(t, "invalid project name 'my project': name contains whitespace", err.Error())
}

func TestReservedNameIsRejectedBeforeResolution(t *testing.T) {
	g := newGenerator(t)

	_, err := g.Generate(context.Background(), Request{
		Name:      "doc",
		TargetDir: filepath.Join(t.TempDir(), "doc"),
		Archetype: archetype.Library,
		Mode:      ModeDryRun,
	})
	var nameErr *InvalidNameError
	require.ErrorAs(t, err, &nameErr)
	assert.Equal(t, "'doc' is a reserved name", nameErr.Reason)
}

func TestValidateModulePath(t *testing.T) {
	valid := []string{
		"github.com/acme/app",
		"example.com/app/v2",
		"gitlab.com/group/sub/app",
	}
	for _, p := range valid {
		assert.NoError(t, ValidateModulePath(p), p)
	}

	invalid := []string{
		"Bad Path",
		"github.com/acme/app/",
		"/abs/path",
		"github.com/acme/../app",
	}
	for _, p := range invalid {
		err := ValidateModulePath(p)
		var nameErr *InvalidNameError
		if assert.ErrorAs(t, err, &nameErr, p) {
			assert.Equal(t, "module path", nameErr.Field)
			assert.NotEmpty(t, nameErr.Reason)
		}
	}
}

func TestModulePath(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     string
	}{
		{name: "bare name", want: "app"},
		{name: "prefix", metadata: map[string]string{"module_prefix": "github.com/acme/"}, want: "github.com/acme/app"},
		{name: "explicit wins", metadata: map[string]string{"module_prefix": "github.com/acme", "module_path": "example.com/x"}, want: "example.com/x"},
		{name: "blank explicit ignored", metadata: map[string]string{"module_path": "  "}, want: "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModulePath("app", tt.metadata))
		})
	}
}
