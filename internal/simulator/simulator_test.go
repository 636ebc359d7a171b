package simulator

import (
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"suncet-viewer/internal/catalog"
	"suncet-viewer/internal/decode"
)

func TestWriteCatalogIsDecodable(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteCatalog(dir, 3, 16, 1)
	if err != nil {
		t.Fatalf("WriteCatalog error: %v", err)
	}
	if len(paths) != 3 || !sort.StringsAreSorted(paths) {
		t.Fatalf("unexpected paths: %v", paths)
	}

	cat, err := catalog.Build(dir, ".jp2")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if cat.Len() != 3 || cat.Path(0) != filepath.Join(dir, "sim_00000.jp2") {
		t.Fatalf("unexpected catalog: %v", cat.Paths())
	}

	frame, err := decode.ImageDecoder{}.Load(cat.Path(1))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if frame.Width != 16 || frame.Height != 16 || frame.Channels != 1 {
		t.Fatalf("unexpected shape: %v", frame.Shape())
	}
}

func TestFrameDeterministic(t *testing.T) {
	a := Frame(rand.New(rand.NewSource(7)), 2, 8, 12)
	b := Frame(rand.New(rand.NewSource(7)), 2, 8, 12)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel %d differs", i)
		}
	}
}

func TestWriteCatalogRejectsBadGeometry(t *testing.T) {
	if _, err := WriteCatalog(t.TempDir(), 0, 16, 1); err == nil {
		t.Fatalf("expected error for zero frames")
	}
}
