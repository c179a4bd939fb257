package generator

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dangerouslaser/repogen/internal/archive"
)

// indexFilename is the listing page written into every output directory.
const indexFilename = "index.html"

// indexTemplate renders one directory listing the way Kodi's HTTP file
// browser expects: one anchor per line, nothing else.
var indexTemplate = template.Must(template.New(indexFilename).Parse(
	"<html><body>\n{{range .}}<a href=\"{{.}}\">{{.}}</a>\n{{end}}</body></html>\n"))

// indexPage is the listing computed for one directory.
type indexPage struct {
	// dir is the directory the page belongs to.
	dir string
	// entries are the link targets, in listing order.
	entries []string
}

// writeIndexPages generates a listing page per directory of the finished
// output tree. The tree is first walked read-only to compute every listing,
// then the pages are written, so generation never observes its own output.
func writeIndexPages(root string) error {
	pages, err := collectIndexPages(root)
	if err != nil {
		return err
	}

	for _, page := range pages {
		var builder strings.Builder
		if err := indexTemplate.Execute(&builder, page.entries); err != nil {
			return fmt.Errorf("render listing for %s: %w", page.dir, err)
		}

		path := filepath.Join(page.dir, indexFilename)
		if err := os.WriteFile(path, []byte(builder.String()), outputFileMode); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return nil
}

// collectIndexPages walks the tree and computes the listing of every
// directory without writing anything.
func collectIndexPages(root string) ([]indexPage, error) {
	var pages []indexPage

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			return nil
		}

		items, err := os.ReadDir(path)
		if err != nil {
			return err
		}

		var dirs, files []string

		for _, item := range items {
			if item.IsDir() {
				dirs = append(dirs, item.Name())
			} else {
				files = append(files, item.Name())
			}
		}

		pages = append(pages, indexPage{
			dir:     path,
			entries: indexEntries(path == root, dirs, files),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk output tree: %w", err)
	}

	return pages, nil
}

// indexEntries computes the link targets of one directory listing.
// Subdirectory links come first and only in non-root directories. The root
// lists archive files only, so Kodi's "install from zip" browser sees just
// the downloadable packages. A listing never includes its own filename.
func indexEntries(isRoot bool, dirs, files []string) []string {
	entries := make([]string, 0, len(dirs)+len(files))

	if !isRoot {
		for _, dir := range dirs {
			entries = append(entries, dir+"/")
		}
	}

	for _, file := range files {
		if file == indexFilename {
			continue
		}

		if isRoot && !strings.HasSuffix(file, archive.Extension) {
			continue
		}

		entries = append(entries, file)
	}

	return entries
}
