package decode

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	jpeg2000 "github.com/ajroetker/go-jpeg2000"
)

func writeJP2(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg2000.Encode(f, img, &jpeg2000.EncodeOptions{Lossless: true, FileFormat: jpeg2000.FormatJP2}); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestLoadGrayJP2(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*8 + y)})
		}
	}
	path := filepath.Join(t.TempDir(), "f0.jp2")
	writeJP2(t, path, img)

	frame, err := ImageDecoder{}.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if frame.Width != 16 || frame.Height != 8 || frame.Channels != 1 {
		t.Fatalf("unexpected shape: %v", frame.Shape())
	}
	if frame.Path != path {
		t.Fatalf("unexpected path: %q", frame.Path)
	}
	if got := frame.At(3, 2, 0); got != 3*8+2 {
		t.Fatalf("unexpected pixel at (3,2): %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.jp2")
	_, err := ImageDecoder{}.Load(path)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Path != path {
		t.Fatalf("expected DecodeError for %s, got %#v", path, err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jp2")
	if err := os.WriteFile(path, []byte("definitely not a jpeg2000 file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (ImageDecoder{}).Load(path); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestFromImage(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	frame, err := FromImage(rgba, false)
	if err != nil {
		t.Fatalf("FromImage error: %v", err)
	}
	if frame.Channels != 3 || len(frame.Pix) != 6 {
		t.Fatalf("unexpected frame: %#v", frame)
	}
	if frame.At(1, 0, 0) != 10 || frame.At(1, 0, 1) != 20 || frame.At(1, 0, 2) != 30 {
		t.Fatalf("unexpected pixel: %v", frame.Pix[3:])
	}

	grayFromRGBA, err := FromImage(rgba, true)
	if err != nil {
		t.Fatalf("FromImage error: %v", err)
	}
	if grayFromRGBA.Channels != 1 || grayFromRGBA.At(1, 0, 0) != 10 {
		t.Fatalf("unexpected gray frame: %#v", grayFromRGBA)
	}

	g16 := image.NewGray16(image.Rect(0, 0, 1, 1))
	g16.SetGray16(0, 0, color.Gray16{Y: 4097})
	deep, err := FromImage(g16, true)
	if err != nil {
		t.Fatalf("FromImage error: %v", err)
	}
	if deep.At(0, 0, 0) != 4097 {
		t.Fatalf("unexpected 16-bit value: %d", deep.At(0, 0, 0))
	}

	if _, err := FromImage(image.NewGray(image.Rect(0, 0, 0, 0)), true); err == nil {
		t.Fatalf("expected error for empty image")
	}
}
