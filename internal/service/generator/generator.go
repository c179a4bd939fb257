package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dangerouslaser/repogen/internal/checksum"
	"github.com/dangerouslaser/repogen/internal/config"
	"github.com/dangerouslaser/repogen/internal/logger"
	"github.com/dangerouslaser/repogen/internal/manifest"
	"github.com/dangerouslaser/repogen/internal/release"
)

const (
	// outputFileMode is used for generated files in the output tree.
	outputFileMode os.FileMode = 0o644

	// outputDirMode is used for directories in the output tree.
	outputDirMode os.FileMode = 0o755
)

// ErrNoAddons is returned when a run produced zero manifest fragments;
// there is nothing meaningful to publish in that case.
var ErrNoAddons = errors.New("no addons were packaged")

// generator rebuilds the publishable repository tree from scratch.
// It is unexported—callers should use Run, which encapsulates setup.
type generator struct {
	// cfg holds the validated generator settings.
	cfg *config.Config
	// acquirer downloads upstream addon artifacts.
	acquirer *release.Acquirer
}

// newGenerator creates a generator with the provided settings and acquirer.
func newGenerator(cfg *config.Config, acquirer *release.Acquirer) *generator {
	return &generator{
		cfg:      cfg,
		acquirer: acquirer,
	}
}

// Run rebuilds the output tree: self-package first, then every configured
// addon in order, then the aggregate manifest and the listing pages.
func (g *generator) Run(ctx context.Context) error {
	if isGeneratorRunningNow(ctx) {
		return errGeneratorRunning
	}

	if err := writeRunMarker(); err != nil {
		return err
	}

	defer removeRunMarker(ctx)

	if err := g.resetOutputDir(); err != nil {
		return err
	}

	// The self-package fragment always merges first.
	fragments := make([]string, 0, len(g.cfg.Addons)+1)

	selfFragment, err := g.buildSelfPackage(ctx)
	if err != nil {
		return err
	}

	if selfFragment != "" {
		fragments = append(fragments, selfFragment)
	}

	results, err := g.acquireAll(ctx)
	if err != nil {
		return err
	}

	for _, result := range results {
		if result != nil {
			fragments = append(fragments, result.Fragment)
		}
	}

	if len(fragments) == 0 {
		return ErrNoAddons
	}

	if err := g.writeAggregate(ctx, fragments); err != nil {
		return err
	}

	if err := writeIndexPages(g.cfg.OutputDir); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Repository generated",
		"output", g.cfg.OutputDir,
		"addons", len(fragments),
		"files", manifest.AggregateFilename+", "+manifest.AggregateFilename+checksum.Extension+", "+indexFilename)

	return nil
}

// resetOutputDir deletes and recreates the publish directory, so no state
// carries over between runs.
func (g *generator) resetOutputDir() error {
	if err := os.RemoveAll(g.cfg.OutputDir); err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}

	if err := os.MkdirAll(g.cfg.OutputDir, outputDirMode); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	return nil
}

// acquireAll downloads every configured addon. Results land in a slice
// indexed by configuration position, so merge order stays
// configuration-driven regardless of completion order.
func (g *generator) acquireAll(ctx context.Context) ([]*release.Result, error) {
	results := make([]*release.Result, len(g.cfg.Addons))

	if g.cfg.Concurrency <= 1 {
		for i, addon := range g.cfg.Addons {
			result, err := g.acquirer.Acquire(ctx, addon, filepath.Join(g.cfg.OutputDir, addon.ID))
			if err != nil {
				return nil, err
			}

			results[i] = result
		}

		return results, nil
	}

	var (
		wg       sync.WaitGroup
		workers  = make(chan struct{}, g.cfg.Concurrency)
		mu       sync.Mutex
		firstErr error
	)

	for i, addon := range g.cfg.Addons {
		i, addon := i, addon

		wg.Add(1)
		workers <- struct{}{}

		go func() {
			defer wg.Done()

			defer func() {
				<-workers
			}()

			result, err := g.acquirer.Acquire(ctx, addon, filepath.Join(g.cfg.OutputDir, addon.ID))
			if err != nil {
				mu.Lock()

				if firstErr == nil {
					firstErr = err
				}

				mu.Unlock()

				return
			}

			results[i] = result
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return results, nil
}

// writeAggregate merges the fragments and writes addons.xml plus its
// digest sidecar at the output root.
func (g *generator) writeAggregate(ctx context.Context, fragments []string) error {
	doc, err := manifest.Merge(fragments)
	if err != nil {
		return err
	}

	aggregatePath := filepath.Join(g.cfg.OutputDir, manifest.AggregateFilename)
	if err := os.WriteFile(aggregatePath, []byte(doc), outputFileMode); err != nil {
		return fmt.Errorf("write %s: %w", aggregatePath, err)
	}

	sidecarPath := aggregatePath + checksum.Extension
	if err := os.WriteFile(sidecarPath, []byte(checksum.Text(doc)), outputFileMode); err != nil {
		return fmt.Errorf("write %s: %w", sidecarPath, err)
	}

	logger.InfoKV(ctx, "Aggregate manifest written",
		"path", aggregatePath, "fragments", len(fragments))

	return nil
}
