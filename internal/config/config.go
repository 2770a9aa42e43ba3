// Package config loads and saves forge user preferences.
//
// Preferences live in $XDG_CONFIG_HOME/forge/config.yaml (falling back to
// ~/.config/forge/config.yaml). Environment variables with the FORGE_
// prefix override the file, and command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment variable prefix for forge configuration.
const envPrefix = "FORGE"

// Config holds remembered preferences.
type Config struct {
	DefaultAuthor  string `mapstructure:"default_author" yaml:"default_author,omitempty"`
	DefaultLicense string `mapstructure:"default_license" yaml:"default_license,omitempty"`

	// DefaultCI names the CI feature added to new projects, for example
	// github-actions.
	DefaultCI string `mapstructure:"default_ci" yaml:"default_ci,omitempty"`

	// ModulePrefix is joined with the project name to form the module
	// path, for example github.com/acme.
	ModulePrefix string `mapstructure:"module_prefix" yaml:"module_prefix,omitempty"`

	GoVersion string `mapstructure:"go_version" yaml:"go_version,omitempty"`

	// ProjectType is used when no project type is given.
	ProjectType string `mapstructure:"project_type" yaml:"project_type,omitempty"`

	// DefaultFeatures maps a project type to features selected in
	// non-interactive runs when none are given.
	DefaultFeatures map[string][]string `mapstructure:"default_features" yaml:"default_features,omitempty"`

	// RememberChoices enables offering to save prompted answers.
	RememberChoices bool `mapstructure:"remember_choices" yaml:"remember_choices"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{RememberChoices: true}
}

// DefaultPath returns the preferences file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "forge", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "forge", "config.yaml"), nil
}

// Load reads the preferences file at path, or at DefaultPath when path is
// empty. A missing file is not an error; the defaults and any FORGE_
// environment variables apply.
func Load(path string) (*Config, error) {
	return load(path, false)
}

// LoadFile is Load for a file the user named explicitly, which must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every field gets a
	// default for AutomaticEnv to override.
	v.SetDefault("default_author", "")
	v.SetDefault("default_license", "")
	v.SetDefault("default_ci", "")
	v.SetDefault("module_prefix", "")
	v.SetDefault("go_version", "")
	v.SetDefault("project_type", "")
	v.SetDefault("remember_choices", true)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Overrides are values given on the command line. Empty fields keep the
// configured value.
type Overrides struct {
	Author  string
	License string
	CI      string
}

// Merge returns a copy of c with the non-empty overrides applied.
func (c *Config) Merge(o Overrides) *Config {
	out := *c
	if o.Author != "" {
		out.DefaultAuthor = o.Author
	}
	if o.License != "" {
		out.DefaultLicense = o.License
	}
	if o.CI != "" {
		out.DefaultCI = o.CI
	}
	return &out
}

// Remember records a prompted answer when RememberChoices is enabled. It
// reports whether the value was stored. Known kinds are author, license
// and ci.
func (c *Config) Remember(kind, value string) bool {
	if !c.RememberChoices {
		return false
	}
	switch kind {
	case "author":
		c.DefaultAuthor = value
	case "license":
		c.DefaultLicense = value
	case "ci":
		c.DefaultCI = value
	default:
		return false
	}
	return true
}

// FeaturesFor returns the configured default features for a project type
// plus the default CI feature, without duplicates.
func (c *Config) FeaturesFor(projectType string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range append(append([]string(nil), c.DefaultFeatures[projectType]...), c.DefaultCI) {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Metadata returns the preferences as generation metadata keys. Unset
// values are omitted so the generator defaults apply.
func (c *Config) Metadata() map[string]string {
	md := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			md[k] = v
		}
	}
	set("author", c.DefaultAuthor)
	set("license", c.DefaultLicense)
	set("module_prefix", c.ModulePrefix)
	set("go_version", c.GoVersion)
	return md
}
