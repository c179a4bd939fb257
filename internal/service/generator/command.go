package generator

import (
	"context"
	"fmt"

	"github.com/dangerouslaser/repogen/internal/config"
	"github.com/dangerouslaser/repogen/internal/logger"
	"github.com/dangerouslaser/repogen/internal/release"
)

// Options contains inputs for the generator entry point.
type Options struct {
	// ConfigPath is the path to the addons YAML file (defaults to addons.yaml).
	ConfigPath string
	// OutputDir overrides the configured publish directory when set.
	OutputDir string
	// AddonDir overrides the configured repository addon directory when set.
	AddonDir string
	// Concurrency overrides the configured worker count when positive.
	Concurrency int
}

// Run executes the repository generation workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "repogen")

	// Configuration problems must abort before the previous output tree
	// is touched.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	if opts.AddonDir != "" {
		cfg.AddonDir = opts.AddonDir
	}

	if opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}

	source, err := release.NewGitHubSource()
	if err != nil {
		return fmt.Errorf("initialize release source: %w", err)
	}

	gen := newGenerator(cfg, release.NewAcquirer(source, cfg.Timeout))

	if err := gen.Run(ctx); err != nil {
		return fmt.Errorf("generator failed: %w", err)
	}

	return nil
}
