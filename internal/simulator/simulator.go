package simulator

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	jpeg2000 "github.com/ajroetker/go-jpeg2000"
)

// WriteCatalog fills dir with n lossless grayscale JP2 frames of a Gaussian
// blob drifting across a size x size field with Poisson-like noise. Frame
// names sort in acquisition order. The returned paths are sorted.
func WriteCatalog(dir string, n int, size int, seed int64) ([]string, error) {
	if n < 1 || size < 2 {
		return nil, fmt.Errorf("invalid simulator geometry n=%d size=%d", n, size)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		img := Frame(rng, i, n, size)
		path := filepath.Join(dir, fmt.Sprintf("sim_%05d.jp2", i))
		if err := writeJP2(path, img); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Frame renders frame i of n.
func Frame(rng *rand.Rand, i int, n int, size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	phase := 2 * math.Pi * float64(i) / float64(n)
	centerX := float64(size)/2 + float64(size)/4*math.Cos(phase)
	centerY := float64(size)/2 + float64(size)/4*math.Sin(phase)
	width := float64(size*size) / 20
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			base := 220 * math.Exp(-(dx*dx+dy*dy)/width)
			val := base + rng.NormFloat64()*math.Sqrt(base+1)
			if val < 0 {
				val = 0
			}
			if val > 255 {
				val = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(val)})
		}
	}
	return img
}

func writeJP2(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg2000.Encode(f, img, &jpeg2000.EncodeOptions{Lossless: true, FileFormat: jpeg2000.FormatJP2}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
