// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config assembles stilyagi settings from an optional YAML file and
// STILYAGI_* environment variables. Command-line flags are applied last by
// the commands themselves.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leynos/concordat-vale/internal/acronyms"
	"github.com/leynos/concordat-vale/internal/manifest"
	"github.com/leynos/concordat-vale/internal/packaging"
)

// DefaultFile is read from the working directory when --config is not set.
const DefaultFile = ".stilyagi.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STILYAGI_"

// LookupFunc reads one environment variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Zip configures archive builds.
type Zip struct {
	StylesPath    string   `yaml:"styles_path"`
	OutputDir     string   `yaml:"output_dir"`
	Styles        []string `yaml:"styles"`
	Vocabulary    string   `yaml:"vocabulary"`
	IniStylesPath string   `yaml:"ini_styles_path"`
	Version       string   `yaml:"version"`
	Exclude       []string `yaml:"exclude"`
}

// Install configures installs into a consumer project.
type Install struct {
	ValeIni        string `yaml:"vale_ini"`
	Makefile       string `yaml:"makefile"`
	ReleaseVersion string `yaml:"release_version"`
	ReleaseTag     string `yaml:"release_tag"`
	SkipManifest   bool   `yaml:"skip_manifest_download"`
	StepCommand    string `yaml:"step_command"`
}

// Acronyms configures sync-acronyms.
type Acronyms struct {
	Source string `yaml:"source"`
	Script string `yaml:"script"`
}

// Config is the merged configuration.
type Config struct {
	ProjectRoot string   `yaml:"project_root"`
	Zip         Zip      `yaml:"zip"`
	Install     Install  `yaml:"install"`
	Acronyms    Acronyms `yaml:"acronyms"`

	// GitHubToken authenticates release lookups. Only read from GITHUB_TOKEN.
	GitHubToken string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ProjectRoot: ".",
		Zip: Zip{
			StylesPath:    packaging.DefaultStylesPath,
			OutputDir:     packaging.DefaultOutputDir,
			IniStylesPath: packaging.DefaultIniStylesPath,
		},
		Install: Install{
			ValeIni:     ".vale.ini",
			Makefile:    "Makefile",
			StepCommand: manifest.DefaultCommand,
		},
		Acronyms: Acronyms{
			Source: acronyms.DefaultSource,
			Script: acronyms.DefaultScript,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. A missing file is an error only when required is set.
func Load(path string, required bool, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config YAML %s: %w", path, err)
			}
		}
	}
	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty STILYAGI_* variables and GITHUB_TOKEN.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = SplitList(v)
		}
	}

	str("PROJECT_ROOT", &c.ProjectRoot)

	str("STYLES_PATH", &c.Zip.StylesPath)
	str("OUTPUT_DIR", &c.Zip.OutputDir)
	list("STYLE", &c.Zip.Styles)
	str("VOCABULARY", &c.Zip.Vocabulary)
	str("INI_STYLES_PATH", &c.Zip.IniStylesPath)
	str("VERSION", &c.Zip.Version)
	list("EXCLUDE", &c.Zip.Exclude)

	str("VALE_INI", &c.Install.ValeIni)
	str("MAKEFILE", &c.Install.Makefile)
	str("RELEASE_VERSION", &c.Install.ReleaseVersion)
	str("RELEASE_TAG", &c.Install.ReleaseTag)
	str("STEP_COMMAND", &c.Install.StepCommand)
	if v, ok := lookup(EnvPrefix + "SKIP_MANIFEST_DOWNLOAD"); ok && v != "" {
		skip, err := parseFlag(v)
		if err != nil {
			return fmt.Errorf("%sSKIP_MANIFEST_DOWNLOAD: %w", EnvPrefix, err)
		}
		c.Install.SkipManifest = skip
	}

	str("ACRONYMS_SOURCE", &c.Acronyms.Source)
	str("ACRONYMS_SCRIPT", &c.Acronyms.Script)

	if v, ok := lookup("GITHUB_TOKEN"); ok {
		c.GitHubToken = v
	}
	return nil
}

// SplitList splits a comma-separated value, dropping blank items.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseFlag accepts strconv booleans plus yes/no/on/off.
func parseFlag(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on", "y":
		return true, nil
	case "no", "off", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(v))
}
