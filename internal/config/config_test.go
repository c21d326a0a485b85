package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.URL != "ws://127.0.0.1:5000/ws" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	opts := cfg.RoundOptions()
	if opts.ColorChangeMinDelay != 2*time.Second || opts.ColorChangeMaxDelay != 7*time.Second {
		t.Errorf("color change range = [%s,%s]", opts.ColorChangeMinDelay, opts.ColorChangeMaxDelay)
	}
	if !cfg.Audio.Enabled || !cfg.UI.Mouse {
		t.Error("audio and mouse should default on")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "client.yaml", `
server:
  url: ws://game.local:9000/ws
log:
  level: debug
rounds:
  color_change:
    min_delay: 1s
    max_delay: 3s
  click_box:
    box_width: 0.2
    box_height: 0.3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.URL != "ws://game.local:9000/ws" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	opts := cfg.RoundOptions()
	if opts.ColorChangeMinDelay != time.Second || opts.ColorChangeMaxDelay != 3*time.Second {
		t.Errorf("color change range = [%s,%s]", opts.ColorChangeMinDelay, opts.ColorChangeMaxDelay)
	}
	if opts.ClickBoxSize.W != 0.2 || opts.ClickBoxSize.H != 0.3 {
		t.Errorf("ClickBoxSize = %+v", opts.ClickBoxSize)
	}
	// Unset sections keep their defaults.
	if opts.BrightnessTick != 50*time.Millisecond {
		t.Errorf("BrightnessTick = %s", opts.BrightnessTick)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "client.toml", `
state_dir = "/var/tmp/rg"

[audio]
enabled = false
volume = 0.4

[rounds.brightness]
tick = "20ms"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Audio.Enabled || cfg.Audio.Volume != 0.4 {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	if cfg.Rounds.Brightness.Tick != 20*time.Millisecond {
		t.Errorf("Brightness.Tick = %s", cfg.Rounds.Brightness.Tick)
	}
	if cfg.ResolvedStateDir() != "/var/tmp/rg" {
		t.Errorf("ResolvedStateDir() = %q", cfg.ResolvedStateDir())
	}
	if cfg.LogFile() != filepath.Join("/var/tmp/rg", "client.log") {
		t.Errorf("LogFile() = %q", cfg.LogFile())
	}
	if cfg.Server.URL == "" {
		t.Error("server url default lost")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REACTION_URL", "ws://env:1/ws")
	t.Setenv("REACTION_TOKEN", "secret")
	t.Setenv("REACTION_LOG_LEVEL", "warn")
	t.Setenv("REACTION_STATE_DIR", "/tmp/env-state")

	path := writeFile(t, "client.yaml", "server:\n  url: ws://file:2/ws\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.URL != "ws://env:1/ws" || cfg.Server.Token != "secret" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Log.Level != "warn" || cfg.StateDir != "/tmp/env-state" {
		t.Errorf("Log.Level = %q, StateDir = %q", cfg.Log.Level, cfg.StateDir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"bad yaml", "c.yaml", "server: [unclosed"},
		{"bad toml", "c.toml", "server = "},
		{"inverted delays", "c.yaml", "rounds:\n  color_change:\n    min_delay: 5s\n    max_delay: 1s\n"},
		{"zero tick", "c.yaml", "rounds:\n  brightness:\n    tick: 0s\n"},
		{"oversized box", "c.yaml", "rounds:\n  double_trouble:\n    box_width: 1.5\n"},
		{"loud", "c.yaml", "audio:\n  volume: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.file, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit config should error")
	}
}
