package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Addon describes one upstream addon to aggregate into the repository.
type Addon struct {
	// ID is the Kodi addon identifier, unique across the configuration.
	ID string `yaml:"addon_id"`
	// Repo is the GitHub repository slug in "owner/name" form.
	Repo string `yaml:"repo"`
	// AssetPattern is the glob matched against release asset names.
	AssetPattern string `yaml:"asset_pattern"`
}

// Config holds the repository generator settings.
type Config struct {
	// Addons lists the upstream addons in publication order.
	Addons []Addon `yaml:"addons"`
	// OutputDir is the directory the repository tree is generated into.
	// It is deleted and recreated on every run.
	OutputDir string `yaml:"output_dir"`
	// AddonDir is the local directory holding the repository addon itself.
	AddonDir string `yaml:"addon_dir"`
	// Timeout bounds a single addon's release query and download.
	Timeout time.Duration `yaml:"timeout"`
	// Concurrency is the number of addons acquired in parallel.
	// Values below two keep the sequential reference behavior.
	Concurrency int `yaml:"concurrency"`
}

const (
	// DefaultConfigFilename is the default configuration file.
	DefaultConfigFilename = "addons.yaml"

	// DefaultOutputDir is the default publish directory.
	DefaultOutputDir = "dist"

	// DefaultAddonDir is the default directory of the repository addon.
	DefaultAddonDir = "repository"

	// DefaultTimeout bounds release queries and asset downloads per addon.
	DefaultTimeout = 2 * time.Minute
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAddonIDRequired is returned when an addon entry has no identifier.
	errAddonIDRequired = errors.New("addon_id must be provided")
	// errAddonRepoInvalid is returned when the repo slug is not "owner/name".
	errAddonRepoInvalid = errors.New("repo must be an owner/name slug")
	// errAssetPatternRequired is returned when an addon entry has no asset glob.
	errAssetPatternRequired = errors.New("asset_pattern must be provided")
	// errAddonIDDuplicated is returned when two entries share an identifier.
	errAddonIDDuplicated = errors.New("addon_id is duplicated")
)

// Load reads configuration from the provided path and validates it.
// Validation happens before any output mutation, so a malformed file
// never destroys a previously generated tree.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks addon entries for required fields and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	seen := make(map[string]struct{}, len(cfg.Addons))

	for i, addon := range cfg.Addons {
		if addon.ID == "" {
			return fmt.Errorf("addon %d: %w", i, errAddonIDRequired)
		}

		if _, ok := seen[addon.ID]; ok {
			return fmt.Errorf("addon %q: %w", addon.ID, errAddonIDDuplicated)
		}

		seen[addon.ID] = struct{}{}

		owner, name, ok := strings.Cut(addon.Repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("addon %q: %w", addon.ID, errAddonRepoInvalid)
		}

		if addon.AssetPattern == "" {
			return fmt.Errorf("addon %q: %w", addon.ID, errAssetPatternRequired)
		}
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.AddonDir == "" {
		cfg.AddonDir = DefaultAddonDir
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return nil
}
