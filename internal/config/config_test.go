package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	body := "image_dir: /data/suncet\nframe_rate: 5\nremote_endpoint: tcp://*:5599\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ImageDir != "/data/suncet" || cfg.FrameRate != 5 || cfg.RemoteEndpoint != "tcp://*:5599" {
		t.Fatalf("file values not applied: %#v", cfg)
	}
	if cfg.Port != 8050 || cfg.Extension != ".jp2" {
		t.Fatalf("defaults lost: %#v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [nope"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.FrameRate = 120
	cfg.Extension = "tif"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if cfg.FrameRate != 30 || cfg.Extension != ".tif" {
		t.Fatalf("unexpected normalized config: %#v", cfg)
	}

	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid port error")
	}
}
