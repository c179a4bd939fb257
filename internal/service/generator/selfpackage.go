package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dangerouslaser/repogen/internal/archive"
	"github.com/dangerouslaser/repogen/internal/checksum"
	"github.com/dangerouslaser/repogen/internal/logger"
	"github.com/dangerouslaser/repogen/internal/manifest"
)

// buildSelfPackage zips the repository addon directory into the output
// tree, the same shape as a downloaded artifact, and returns its manifest
// text. A missing addon.xml means there is no repository addon to package;
// the run proceeds without a self-fragment.
func (g *generator) buildSelfPackage(ctx context.Context) (string, error) {
	manifestPath := filepath.Join(g.cfg.AddonDir, archive.ManifestFilename)

	addon, err := manifest.ReadAddon(manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.InfoKV(ctx, "No repository addon manifest, skipping self-package", "path", manifestPath)

		return "", nil
	}

	if err != nil {
		return "", err
	}

	destDir := filepath.Join(g.cfg.OutputDir, addon.ID)
	if err := os.MkdirAll(destDir, outputDirMode); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	zipName := fmt.Sprintf("%s-%s%s", addon.ID, addon.Version, archive.Extension)
	zipPath := filepath.Join(destDir, zipName)

	if err := archive.BuildAddonZip(g.cfg.AddonDir, addon.ID, zipPath); err != nil {
		return "", err
	}

	// Convenience copy at the output root for direct download.
	if err := copyFile(zipPath, filepath.Join(g.cfg.OutputDir, zipName)); err != nil {
		return "", err
	}

	// The digest sidecar accompanies the nested copy only.
	digest, err := checksum.File(zipPath)
	if err != nil {
		return "", err
	}

	sidecarPath := zipPath + checksum.Extension
	if err := os.WriteFile(sidecarPath, []byte(digest), outputFileMode); err != nil {
		return "", fmt.Errorf("write %s: %w", sidecarPath, err)
	}

	logger.InfoKV(ctx, "Self-package built",
		"addon", addon.ID, "version", addon.Version, "archive", zipName)

	return addon.Text, nil
}

// copyFile duplicates src at dst with the output file mode.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outputFileMode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", dst, err)
	}

	return nil
}
