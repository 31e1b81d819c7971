// Copyright 2025 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and represents the TSOS configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Id represents a uid or gid given in the config either numerically or as a
// name to be resolved later by internal/identity. This models the
// Id::Numeric(u32) | Id::Text(String) enum of the original implementation's
// config.rs as a small Go sum type, since TOML has no native sum types.
type Id struct {
	Numeric bool
	Num     uint32
	Text    string
}

// UnmarshalTOML implements toml.Unmarshaler, accepting either a TOML
// integer or a TOML string for a single config key.
func (i *Id) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case int64:
		i.Numeric = true
		i.Num = uint32(v)
	case string:
		i.Numeric = false
		i.Text = v
	default:
		return fmt.Errorf("id: unsupported value type %T", value)
	}
	return nil
}

// Config is the parsed TSOS configuration, combining the user-supplied
// local section with the search path derived from the environment.
type Config struct {
	Exec       string              `toml:"exec"`
	Secrets    map[string][]string `toml:"secrets"`
	SearchPath []string            `toml:"search_path"`
	Uid        *Id                 `toml:"uid"`
	Gid        *Id                 `toml:"gid"`
	EnvPath    bool                `toml:"env_path"`

	// globalSearchPath is derived, not read from TOML: env-derived
	// directories (only when EnvPath is true) followed by the two fixed
	// global roots, matching Config::new in original_source/src/config.rs.
	globalSearchPath []string
}

// Load reads and parses the TOML config file at path, then derives the
// global search path from the parsed env_path key and the TSOS_PATH-style
// OS path list tsosPath.
func Load(path, tsosPath string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(tsoserr.ErrConfigIO, "reading %s: %s", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(tsoserr.ErrConfigParse, "parsing %s: %s", path, err)
	}
	if cfg.Exec == "" {
		return nil, errors.Wrapf(tsoserr.ErrConfigParse, "%s: missing required key \"exec\"", path)
	}

	cfg.globalSearchPath = buildGlobalSearchPath(cfg.EnvPath, tsosPath)
	return &cfg, nil
}

func buildGlobalSearchPath(envPath bool, tsosPath string) []string {
	var search []string
	if envPath && tsosPath != "" {
		search = append(search, filepath.SplitList(tsosPath)...)
	}
	search = append(search, "/etc/tsos.d", "/usr/lib/tsos")
	return search
}

// EffectiveSearchPath returns the local search_path (if any) followed by
// the global search path, in the order ProviderResolver must try them:
// local entries always win over global ones (P3).
func (c *Config) EffectiveSearchPath() []string {
	out := make([]string, 0, len(c.SearchPath)+len(c.globalSearchPath))
	out = append(out, c.SearchPath...)
	out = append(out, c.globalSearchPath...)
	return out
}

// GlobalSearchPath returns only the derived global portion of the search
// path, primarily for tests.
func (c *Config) GlobalSearchPath() []string {
	return c.globalSearchPath
}
