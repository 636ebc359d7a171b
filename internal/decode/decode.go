package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	_ "github.com/ajroetker/go-jpeg2000"
	_ "golang.org/x/image/tiff"

	"suncet-viewer/internal/types"
)

var ErrDecode = errors.New("frame decode failed")

// DecodeError reports a catalog entry that could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

type Decoder interface {
	Load(path string) (types.Frame, error)
}

// ImageDecoder decodes through the image package registry: JP2/J2K via
// go-jpeg2000 and TIFF via x/image. Nothing is cached.
type ImageDecoder struct{}

func (ImageDecoder) Load(path string) (types.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Frame{}, &DecodeError{Path: path, Err: err}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return types.Frame{}, &DecodeError{Path: path, Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return types.Frame{}, &DecodeError{Path: path, Err: err}
	}
	gray := cfg.ColorModel == color.GrayModel || cfg.ColorModel == color.Gray16Model
	frame, err := FromImage(img, gray)
	if err != nil {
		return types.Frame{}, &DecodeError{Path: path, Err: err}
	}
	frame.Path = path
	return frame, nil
}

// FromImage converts img to a frame. Gray sources keep one channel; everything
// else keeps three. 8-bit sources stay in 0..255, 16-bit sources in 0..65535.
func FromImage(img image.Image, gray bool) (types.Frame, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return types.Frame{}, fmt.Errorf("empty image %dx%d", w, h)
	}

	switch src := img.(type) {
	case *image.Gray:
		frame := types.NewFrame(w, h, 1)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				frame.Pix[y*w+x] = uint16(v)
			}
		}
		return frame, nil
	case *image.Gray16:
		frame := types.NewFrame(w, h, 1)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+2*w]
			for x := 0; x < w; x++ {
				frame.Pix[y*w+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
			}
		}
		return frame, nil
	}

	shift := uint32(8)
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64:
		shift = 0
	}

	channels := 3
	if gray {
		channels = 1
	}
	frame := types.NewFrame(w, h, channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*w + x) * channels
			frame.Pix[i] = uint16(r >> shift)
			if channels == 3 {
				frame.Pix[i+1] = uint16(g >> shift)
				frame.Pix[i+2] = uint16(b >> shift)
			}
		}
	}
	return frame, nil
}
