package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "forge", "config.yaml"), path)

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	path, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "forge", "config.yaml"), path)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`default_author: Ada Lovelace
default_license: Apache-2.0
default_ci: gitlab-ci
module_prefix: github.com/ada
project_type: api-server
default_features:
  api-server: [database, docker]
remember_choices: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := &Config{
		DefaultAuthor:   "Ada Lovelace",
		DefaultLicense:  "Apache-2.0",
		DefaultCI:       "gitlab-ci",
		ModulePrefix:    "github.com/ada",
		ProjectType:     "api-server",
		DefaultFeatures: map[string][]string{"api-server": {"database", "docker"}},
		RememberChoices: false,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_author: File Author\n"), 0o644))

	t.Setenv("FORGE_DEFAULT_AUTHOR", "Env Author")
	t.Setenv("FORGE_GO_VERSION", "1.24")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Env Author", cfg.DefaultAuthor)
	assert.Equal(t, "1.24", cfg.GoVersion)
	assert.True(t, cfg.RememberChoices)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "forge"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forge", "config.yaml"), []byte("default_license: BSD-3-Clause\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "BSD-3-Clause", cfg.DefaultLicense)
}

func TestLoadFileRequiresFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFeaturesFor(t *testing.T) {
	cfg := &Config{
		DefaultCI:       "github-actions",
		DefaultFeatures: map[string][]string{"cli-tool": {"docker", "github-actions"}},
	}
	assert.Equal(t, []string{"docker", "github-actions"}, cfg.FeaturesFor("cli-tool"))
	assert.Equal(t, []string{"github-actions"}, cfg.FeaturesFor("library"))
	assert.Empty(t, New().FeaturesFor("library"))
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_author: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "forge", "config.yaml")
	cfg := &Config{
		DefaultAuthor:   "Grace Hopper",
		DefaultLicense:  "MIT",
		RememberChoices: true,
	}
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "default_author: Grace Hopper\ndefault_license: MIT\nremember_choices: true\n", string(data))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMerge(t *testing.T) {
	base := &Config{DefaultAuthor: "Config Author", DefaultLicense: "MIT", DefaultCI: "github-actions"}

	merged := base.Merge(Overrides{Author: "CLI Author", CI: "gitlab-ci"})
	assert.Equal(t, "CLI Author", merged.DefaultAuthor)
	assert.Equal(t, "MIT", merged.DefaultLicense)
	assert.Equal(t, "gitlab-ci", merged.DefaultCI)
	assert.Equal(t, "Config Author", base.DefaultAuthor, "merge must not modify the receiver")
}

func TestRemember(t *testing.T) {
	cfg := New()
	assert.True(t, cfg.Remember("author", "Ada"))
	assert.True(t, cfg.Remember("license", "Apache-2.0"))
	assert.True(t, cfg.Remember("ci", "gitlab-ci"))
	assert.False(t, cfg.Remember("colour", "blue"))
	assert.Equal(t, &Config{DefaultAuthor: "Ada", DefaultLicense: "Apache-2.0", DefaultCI: "gitlab-ci", RememberChoices: true}, cfg)

	cfg.RememberChoices = false
	assert.False(t, cfg.Remember("author", "Bob"))
	assert.Equal(t, "Ada", cfg.DefaultAuthor)
}

func TestMetadata(t *testing.T) {
	cfg := &Config{DefaultAuthor: "Ada", ModulePrefix: "github.com/ada", DefaultCI: "gitlab-ci"}
	assert.Equal(t, map[string]string{
		"author":        "Ada",
		"module_prefix": "github.com/ada",
	}, cfg.Metadata())
}
