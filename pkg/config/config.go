// Package config loads wheelhouse defaults from a TOML file.
//
// The file supplies defaults for flags that tend to be identical across
// invocations in one workspace (interpreter, extra pip args, repo naming).
// Command-line flags always win over file values.
//
// Example:
//
//	[pip]
//	python = "python3.11"
//	isolated = true
//	extra_args = ["--no-cache-dir"]
//
//	[pip.environment]
//	PIP_INDEX_URL = "https://mirror.internal/simple"
//
//	[render]
//	repo = "pip"
//	repo_prefix = "pypi__"
//	data_exclude = ["**/tests/**"]
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

// Pip holds subprocess defaults.
type Pip struct {
	Python      string            `toml:"python"`
	Isolated    bool              `toml:"isolated"`
	ExtraArgs   []string          `toml:"extra_args"`
	Environment map[string]string `toml:"environment"`
}

// Render holds target-generation defaults.
type Render struct {
	Repo                        string   `toml:"repo"`
	RepoPrefix                  string   `toml:"repo_prefix"`
	DataExclude                 []string `toml:"data_exclude"`
	EnableImplicitNamespacePkgs bool     `toml:"enable_implicit_namespace_pkgs"`
}

// Config is the full defaults file.
type Config struct {
	Pip    Pip    `toml:"pip"`
	Render Render `toml:"render"`
}

// Load reads a config file. An empty path returns a zero Config so callers
// always have a value to layer flags onto.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}
	return cfg, nil
}
