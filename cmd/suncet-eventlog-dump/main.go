package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"suncet-viewer/internal/output"
	"suncet-viewer/internal/processing"
	"suncet-viewer/internal/wire"
)

func main() {
	var (
		path  = flag.String("path", "", "Path to event log .bin file")
		limit = flag.Int("limit", 0, "Number of records to dump (0 = all)")
		array = flag.String("array", "", "Summarize an RFC 8746 CBOR array file (as written by suncet-decode -cbor-dir) instead")
	)
	flag.Parse()

	if *array != "" {
		dumpArray(*array)
		return
	}
	if *path == "" {
		log.Fatal("path is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open event log: %v", err)
	}
	defer f.Close()

	next, err := output.ReadEventLog(f)
	if err != nil {
		log.Fatalf("%v", err)
	}

	count := 0
	for {
		if *limit > 0 && count >= *limit {
			return
		}
		rec, err := next()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Fatalf("read record: %v", err)
		}

		var decoded any
		if err := cbor.Unmarshal(rec.Payload, &decoded); err != nil {
			log.Printf("record %d: CBOR decode error: %v", count, err)
			count++
			continue
		}

		pretty, err := json.MarshalIndent(output.NormalizeJSONValue(decoded), "", "  ")
		if err != nil {
			log.Printf("record %d: JSON encode error: %v", count, err)
			count++
			continue
		}

		log.Printf("record %d timestamp=%s size=%d", count, rec.Time.Format(time.RFC3339Nano), len(rec.Payload))
		fmt.Println(string(pretty))
		count++
	}
}

func dumpArray(path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read array: %v", err)
	}
	grid, err := wire.DecodeGrid(payload)
	if err != nil {
		log.Fatalf("decode array: %v", err)
	}
	stats := processing.Summarize(grid)
	pretty, err := json.MarshalIndent(map[string]any{
		"path":   path,
		"height": grid.Height,
		"width":  grid.Width,
		"stats":  stats,
	}, "", "  ")
	if err != nil {
		log.Fatalf("JSON encode error: %v", err)
	}
	fmt.Println(string(pretty))
}
