package checksum

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	// Ensure MD5 is available for digest calculation.
	_ "crypto/md5"
)

const (
	// Algorithm is the hash used for every digest in the repository tree.
	// Kodi consumers use the sidecar files for change detection only, so
	// the legacy MD5 convention is kept on purpose.
	Algorithm crypto.Hash = crypto.MD5

	// Extension is the suffix of digest sidecar files.
	Extension = ".md5"

	// readChunkSize is the buffer size used when streaming files.
	readChunkSize = 8 * 1024
)

// errHashUnavailable indicates the configured hash is not linked in.
var errHashUnavailable = errors.New("hash function unavailable")

// File returns the lowercase hex digest of a file's content.
// The file is streamed in fixed-size chunks, so memory use does not
// depend on the file size.
func File(path string) (string, error) {
	if !Algorithm.Available() {
		return "", fmt.Errorf("digest calculation not possible: %w", errHashUnavailable)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open file for digest: %w", err)
	}

	// Best-effort close; the file is only read.
	defer func() {
		_ = f.Close()
	}()

	hasher := Algorithm.New()

	buf := make([]byte, readChunkSize)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", fmt.Errorf("calculate digest: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Text returns the lowercase hex digest of a string's UTF-8 bytes.
// File and Text use the same algorithm, so identical byte content yields
// an identical digest regardless of which operation produced it.
func Text(s string) string {
	hasher := Algorithm.New()
	// hash.Hash.Write never returns an error.
	_, _ = hasher.Write([]byte(s))

	return hex.EncodeToString(hasher.Sum(nil))
}
