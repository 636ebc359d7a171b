package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"suncet-viewer/internal/catalog"
	"suncet-viewer/internal/decode"
	"suncet-viewer/internal/processing"
	"suncet-viewer/internal/wire"
)

func main() {
	var (
		dir     = flag.String("path", "images", "Directory holding the frame files")
		ext     = flag.String("ext", ".jp2", "Frame file extension")
		limit   = flag.Int("limit", 0, "Max number of frames to summarize (0 = all)")
		diff    = flag.Bool("difference", false, "Also summarize the running difference against the previous frame")
		cborDir = flag.String("cbor-dir", "", "Write each frame (and difference) as an RFC 8746 CBOR array into this directory")
	)
	flag.Parse()

	cat, err := catalog.Build(*dir, *ext)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if *cborDir != "" {
		if err := os.MkdirAll(*cborDir, 0o755); err != nil {
			log.Fatalf("cbor-dir: %v", err)
		}
	}

	var (
		dec      decode.ImageDecoder
		ok       int
		failed   int
		mismatch int
	)
	for i, path := range cat.Paths() {
		if *limit > 0 && i >= *limit {
			break
		}
		frame, err := dec.Load(path)
		if err != nil {
			failed++
			fmt.Printf("%s: %v\n", path, err)
			continue
		}
		ok++
		stats := processing.Summarize(processing.Collapse(frame))
		fmt.Printf("%s: shape %v min %.1f max %.1f mean %.2f\n", path, frame.Shape(), stats.Min, stats.Max, stats.Mean)
		if *cborDir != "" {
			payload, err := wire.EncodeFrame(frame)
			if err != nil {
				log.Fatalf("encode %s: %v", path, err)
			}
			writeArray(*cborDir, path, ".cbor", payload)
		}

		if !*diff || i == 0 {
			continue
		}
		prev, err := dec.Load(cat.Path(i - 1))
		if err != nil {
			continue
		}
		delta, err := processing.MaybeDifference(frame, &prev, true)
		if err != nil {
			mismatch++
			fmt.Printf("  difference: %v\n", err)
			continue
		}
		grid := processing.Collapse(delta)
		dstats := processing.Summarize(grid)
		fmt.Printf("  difference: max %.1f mean %.2f\n", dstats.Max, dstats.Mean)
		if *cborDir != "" {
			payload, err := wire.EncodeGrid(grid)
			if err != nil {
				log.Fatalf("encode difference %s: %v", path, err)
			}
			writeArray(*cborDir, path, ".diff.cbor", payload)
		}
	}

	fmt.Printf("summary: frames=%d decoded=%d failed=%d shape_mismatch=%d\n", cat.Len(), ok, failed, mismatch)
}

func writeArray(dir, framePath, suffix string, payload []byte) {
	base := strings.TrimSuffix(filepath.Base(framePath), filepath.Ext(framePath))
	out := filepath.Join(dir, base+suffix)
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		log.Fatalf("write %s: %v", out, err)
	}
}
