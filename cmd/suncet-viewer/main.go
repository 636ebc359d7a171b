package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"suncet-viewer/internal/catalog"
	"suncet-viewer/internal/config"
	"suncet-viewer/internal/decode"
	"suncet-viewer/internal/output"
	"suncet-viewer/internal/player"
	"suncet-viewer/internal/remote"
	"suncet-viewer/internal/server"
	"suncet-viewer/internal/simulator"
	"suncet-viewer/internal/types"
	"suncet-viewer/internal/viewer"
	"suncet-viewer/internal/wire"
)

func main() {
	defaults := config.Default()
	var (
		configPath     = flag.String("config", "", "Optional YAML config file; explicit flags override it")
		port           = flag.Int("port", defaults.Port, "HTTP port for the web UI")
		imageDir       = flag.String("image-dir", defaults.ImageDir, "Directory holding the frame files")
		extension      = flag.String("ext", defaults.Extension, "Frame file extension")
		frameRate      = flag.Int("frame-rate", defaults.FrameRate, "Initial frame rate (1-30 fps)")
		paused         = flag.Bool("paused", defaults.Paused, "Start paused instead of playing")
		debug          = flag.Bool("debug", defaults.Debug, "Run against a generated synthetic catalog")
		debugFrames    = flag.Int("debug-frames", defaults.DebugFrames, "Number of synthetic frames")
		debugSize      = flag.Int("debug-size", defaults.DebugSize, "Synthetic frame edge length in pixels")
		outputDir      = flag.String("output-dir", defaults.OutputDir, "Directory for exported frames")
		eventLog       = flag.Bool("event-log", defaults.EventLog, "Record control events to disk")
		eventLogDir    = flag.String("event-log-dir", defaults.EventLogDir, "Directory for event logs")
		remoteEndpoint = flag.String("remote-endpoint", defaults.RemoteEndpoint, "ZMQ PULL endpoint for remote control, e.g. tcp://*:5599")
		remoteLogEvery = flag.Int("remote-log-every", defaults.RemoteLogEvery, "Log every Nth remote control error")
	)
	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "image-dir":
			cfg.ImageDir = *imageDir
		case "ext":
			cfg.Extension = *extension
		case "frame-rate":
			cfg.FrameRate = *frameRate
		case "paused":
			cfg.Paused = *paused
		case "debug":
			cfg.Debug = *debug
		case "debug-frames":
			cfg.DebugFrames = *debugFrames
		case "debug-size":
			cfg.DebugSize = *debugSize
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "event-log":
			cfg.EventLog = *eventLog
		case "event-log-dir":
			cfg.EventLogDir = *eventLogDir
		case "remote-endpoint":
			cfg.RemoteEndpoint = *remoteEndpoint
		case "remote-log-every":
			cfg.RemoteLogEvery = *remoteLogEvery
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Debug {
		dir, err := os.MkdirTemp("", "suncet-sim-")
		if err != nil {
			log.Fatalf("simulator: %v", err)
		}
		defer os.RemoveAll(dir)
		if _, err := simulator.WriteCatalog(dir, cfg.DebugFrames, cfg.DebugSize, 1); err != nil {
			log.Fatalf("simulator: %v", err)
		}
		cfg.ImageDir = dir
		cfg.Extension = ".jp2"
		log.Printf("debug mode: generated %d synthetic frames in %s", cfg.DebugFrames, dir)
	}

	cat, err := catalog.Build(cfg.ImageDir, cfg.Extension)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogEmpty) {
			log.Fatalf("nothing to show: %v", err)
		}
		log.Fatalf("catalog: %v", err)
	}
	log.Printf("catalog: %d %s frames in %s", cat.Len(), cfg.Extension, cfg.ImageDir)

	var recorder *output.EventLogWriter
	if cfg.EventLog {
		recorder, err = output.NewEventLogWriter(cfg.EventLogDir, "events")
		if err != nil {
			log.Fatalf("failed to start event log: %v", err)
		}
		log.Printf("recording control events to %s", recorder.Path())
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Printf("event log close failed: %v", err)
			}
		}()
	}

	var srv *server.Server
	broadcast := func(_ types.Event, result types.RenderResult) {
		srv.Publish(result)
	}
	record := func(event types.Event, _ types.RenderResult) {
		if recorder == nil || event.Kind == types.EventTimerTick {
			return
		}
		payload, err := wire.EncodeEvent(event)
		if err != nil {
			log.Printf("event log encode failed: %v", err)
			return
		}
		if err := recorder.Record(payload); err != nil {
			log.Printf("event log write failed: %v", err)
		}
	}

	vctx := viewer.NewContext(cat, decode.ImageDecoder{}, cfg.FrameRate)
	if cfg.Paused {
		vctx.Controls.State = types.Paused
	}
	p := player.New(vctx, broadcast, record)

	exportFn := func() (string, error) {
		latest, ok := p.Latest()
		if !ok || latest.Grid == nil {
			return "", errors.New("no frame to export")
		}
		path, err := output.ExportGrid(cfg.OutputDir, latest.Path, *latest.Grid)
		if err == nil {
			log.Printf("exported %s to %s", latest.Path, path)
		}
		return path, err
	}
	srv = server.New(cfg, cat, p, exportFn)

	if cfg.RemoteEndpoint != "" {
		events, err := remote.Listen(ctx, cfg.RemoteEndpoint, cfg.RemoteLogEvery)
		if err != nil {
			log.Fatalf("failed to start remote control on %s: %v", cfg.RemoteEndpoint, err)
		}
		log.Printf("remote control listening on %s", cfg.RemoteEndpoint)
		go func() {
			for event := range events {
				if !p.Submit(event) {
					log.Printf("remote %s dropped: event queue full", event.Kind)
				}
			}
		}()
		srv.AddCounter("remote_decode_failures_total", remote.DecodeFailures)
	}

	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("player stopped: %v", err)
		}
	}()

	log.Printf("Starting web UI at http://localhost:%d\n", cfg.Port)
	if err := srv.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
