package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port           int    `yaml:"port"`
	ImageDir       string `yaml:"image_dir"`
	Extension      string `yaml:"extension"`
	FrameRate      int    `yaml:"frame_rate"`
	Paused         bool   `yaml:"paused"`
	Debug          bool   `yaml:"debug"`
	DebugFrames    int    `yaml:"debug_frames"`
	DebugSize      int    `yaml:"debug_size"`
	OutputDir      string `yaml:"output_dir"`
	EventLog       bool   `yaml:"event_log"`
	EventLogDir    string `yaml:"event_log_dir"`
	RemoteEndpoint string `yaml:"remote_endpoint"`
	RemoteLogEvery int    `yaml:"remote_log_every"`
}

func Default() AppConfig {
	return AppConfig{
		Port:           8050,
		ImageDir:       "images",
		Extension:      ".jp2",
		FrameRate:      15,
		DebugFrames:    24,
		DebugSize:      64,
		OutputDir:      "output",
		EventLogDir:    "eventlog",
		RemoteLogEvery: 100,
	}
}

// Load returns Default overlaid with the YAML file at path.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fixes up values the rest of the program relies on.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ImageDir == "" && !c.Debug {
		return fmt.Errorf("image directory is required")
	}
	if c.Extension == "" {
		c.Extension = ".jp2"
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.FrameRate < 1 {
		c.FrameRate = 1
	}
	if c.FrameRate > 30 {
		c.FrameRate = 30
	}
	if c.DebugFrames < 1 {
		c.DebugFrames = 1
	}
	if c.DebugSize < 2 {
		c.DebugSize = 2
	}
	if c.RemoteLogEvery < 1 {
		c.RemoteLogEvery = 1
	}
	return nil
}
