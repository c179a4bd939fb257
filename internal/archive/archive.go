package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

const (
	// ManifestFilename is the reserved name of the embedded addon manifest.
	ManifestFilename = "addon.xml"

	// Extension is the archive suffix used for all published artifacts.
	Extension = ".zip"
)

// ExtractManifest locates the addon manifest inside a zip archive and
// returns its decoded text. A qualifying entry is named addon.xml and sits
// either at the archive root or directly under a folder named addonID.
// The boolean reports whether such an entry exists; its absence is not an
// error. Archives are expected to contain at most one qualifying entry,
// the first in archive order wins otherwise.
func ExtractManifest(zipPath, addonID string) (string, bool, error) {
	reader, err := zip.OpenReader(filepath.Clean(zipPath))
	if err != nil {
		return "", false, fmt.Errorf("open archive %s: %w", zipPath, err)
	}

	// Best-effort close; the archive is only read.
	defer func() {
		_ = reader.Close()
	}()

	for _, entry := range reader.File {
		if !qualifies(entry.Name, addonID) {
			continue
		}

		contents, err := readEntry(entry)
		if err != nil {
			return "", false, fmt.Errorf("read %s from %s: %w", entry.Name, zipPath, err)
		}

		return contents, true, nil
	}

	return "", false, nil
}

// qualifies reports whether a zip entry name points at the addon manifest
// in the archive root or in the addon's own folder.
func qualifies(name, addonID string) bool {
	if path.Base(name) != ManifestFilename {
		return false
	}

	dir := path.Dir(name)

	return dir == "." || dir == addonID
}

// readEntry decodes one zip entry into a string.
func readEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}

	defer func() {
		_ = rc.Close()
	}()

	contents, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return string(contents), nil
}

// BuildAddonZip packs every regular file directly under srcDir into a new
// deflate-compressed archive at destPath. Entry paths are prefixed with
// "addonID/" so the archive unpacks into the addon's own folder, which is
// the layout Kodi expects. Entry order follows sorted filenames, keeping
// the archive deterministic for a given source directory.
func BuildAddonZip(srcDir, addonID, destPath string) (err error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read addon directory: %w", err)
	}

	out, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
	}()

	writer := zip.NewWriter(out)

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		if err := addFile(writer, filepath.Join(srcDir, entry.Name()), addonID+"/"+entry.Name()); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	return nil
}

// addFile copies one file into the archive under the provided entry name.
func addFile(writer *zip.Writer, srcPath, entryName string) error {
	src, err := os.Open(filepath.Clean(srcPath))
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}

	defer func() {
		_ = src.Close()
	}()

	dst, err := writer.Create(entryName)
	if err != nil {
		return fmt.Errorf("add %s: %w", entryName, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write %s: %w", entryName, err)
	}

	return nil
}
