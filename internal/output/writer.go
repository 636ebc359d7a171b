package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"suncet-viewer/internal/types"
)

// ExportGrid writes the displayed grid as "x, y, value" lines and returns the
// file path. The name is derived from the frame path.
func ExportGrid(outputDir string, framePath string, grid types.Grid) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(framePath), filepath.Ext(framePath))
	if base == "" || base == "." {
		base = "frame"
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("%s_export_%s.txt", Timestamp(), base))
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	_, _ = fmt.Fprintln(w, "x, y, value")
	for i, value := range grid.Values {
		_, _ = fmt.Fprintf(w, "%d, %d, %g\n", i%grid.Width, i/grid.Width, value)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return "", err
	}
	return filename, f.Close()
}

// NormalizeJSONValue converts CBOR-decoded values (map[any]any, byte strings)
// into shapes encoding/json accepts.
func NormalizeJSONValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = NormalizeJSONValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = NormalizeJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = NormalizeJSONValue(item)
		}
		return out
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(v))
	default:
		return v
	}
}
