package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AggregateFilename is the name of the merged manifest document.
	AggregateFilename = "addons.xml"

	// DefaultVersion is assumed when a manifest omits its version attribute.
	DefaultVersion = "1.0.0"

	// prolog is the fixed XML declaration of the aggregate document.
	prolog = `<?xml version="1.0" encoding="UTF-8"?>`

	// declarationMarker starts an XML declaration line inside a fragment.
	declarationMarker = "<?xml"
)

var (
	// ErrNoFragments is returned when a merge is attempted with no input;
	// an empty aggregate is never a valid publication.
	ErrNoFragments = errors.New("no manifest fragments to merge")

	// errManifestIDMissing is returned when a manifest has no id attribute.
	errManifestIDMissing = errors.New("manifest has no id attribute")
)

// Merge combines addon manifest fragments into the aggregate addons.xml
// text. Each fragment keeps its content and relative order; only lines
// holding an XML declaration are stripped, so a fragment without one
// passes through unchanged. The result is a single well-formed document
// with one <addons> root element.
func Merge(fragments []string) (string, error) {
	if len(fragments) == 0 {
		return "", ErrNoFragments
	}

	parts := make([]string, 0, len(fragments)+2)
	parts = append(parts, prolog+"\n<addons>")

	for _, fragment := range fragments {
		parts = append(parts, stripDeclaration(fragment))
	}

	parts = append(parts, "</addons>\n")

	return strings.Join(parts, "\n"), nil
}

// stripDeclaration drops XML declaration lines from a fragment and trims
// surrounding whitespace so fragments join cleanly.
func stripDeclaration(fragment string) string {
	lines := strings.Split(strings.TrimSpace(fragment), "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), declarationMarker) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// Addon is the identity of a single addon manifest plus its raw text.
type Addon struct {
	// ID is the addon identifier from the root element.
	ID string
	// Version is the addon version, defaulted when absent.
	Version string
	// Text is the raw manifest document as read from disk.
	Text string
}

// ReadAddon reads an addon.xml file and returns its identity attributes
// together with the untouched document text. A missing file surfaces as
// os.ErrNotExist so callers can treat it as a skip condition.
func ReadAddon(path string) (*Addon, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var root struct {
		ID      string `xml:"id,attr"`
		Version string `xml:"version,attr"`
	}

	if err := xml.Unmarshal(contents, &root); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if root.ID == "" {
		return nil, fmt.Errorf("%s: %w", path, errManifestIDMissing)
	}

	if root.Version == "" {
		root.Version = DefaultVersion
	}

	return &Addon{
		ID:      root.ID,
		Version: root.Version,
		Text:    string(contents),
	}, nil
}
