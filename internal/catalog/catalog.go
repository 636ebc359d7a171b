package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrCatalogEmpty = errors.New("catalog is empty")

type CatalogEmptyError struct {
	Dir string
	Ext string
}

func (e *CatalogEmptyError) Error() string {
	return fmt.Sprintf("no %s files found in %s", e.Ext, e.Dir)
}

func (e *CatalogEmptyError) Is(target error) bool {
	return target == ErrCatalogEmpty
}

// Catalog is the sorted, immutable list of frame paths.
type Catalog struct {
	dir   string
	paths []string
}

// Build lists dir once and keeps the regular files ending in ext.
func Build(dir string, ext string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list frames in %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ext) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, &CatalogEmptyError{Dir: dir, Ext: ext}
	}
	sort.Strings(names)
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return &Catalog{dir: dir, paths: paths}, nil
}

// FromPaths builds a catalog from an explicit list, sorted the same way as Build.
func FromPaths(paths []string) (*Catalog, error) {
	if len(paths) == 0 {
		return nil, &CatalogEmptyError{Dir: "", Ext: "frame"}
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return &Catalog{paths: sorted}, nil
}

func (c *Catalog) Dir() string {
	return c.dir
}

func (c *Catalog) Len() int {
	return len(c.paths)
}

// Index reduces tick into [0, Len()).
func (c *Catalog) Index(tick int) int {
	n := len(c.paths)
	i := tick % n
	if i < 0 {
		i += n
	}
	return i
}

func (c *Catalog) Resolve(tick int) string {
	return c.paths[c.Index(tick)]
}

func (c *Catalog) Path(i int) string {
	return c.paths[i]
}

func (c *Catalog) Paths() []string {
	return append([]string(nil), c.paths...)
}
