// Package config loads client settings from YAML or TOML, then applies
// .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reaction-game/tui/internal/identity"
	"github.com/reaction-game/tui/internal/round"
)

type Config struct {
	Server   ServerConfig `yaml:"server" toml:"server"`
	StateDir string       `yaml:"state_dir" toml:"state_dir"`
	Log      LogConfig    `yaml:"log" toml:"log"`
	Audio    AudioConfig  `yaml:"audio" toml:"audio"`
	Rounds   RoundsConfig `yaml:"rounds" toml:"rounds"`
	UI       UIConfig     `yaml:"ui" toml:"ui"`
}

type ServerConfig struct {
	URL   string `yaml:"url" toml:"url"`
	Token string `yaml:"token" toml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	Volume  float64 `yaml:"volume" toml:"volume"`
}

type RoundsConfig struct {
	ColorChange   ColorChangeConfig `yaml:"color_change" toml:"color_change"`
	Brightness    BrightnessConfig  `yaml:"brightness" toml:"brightness"`
	ClickBox      BoxConfig         `yaml:"click_box" toml:"click_box"`
	DoubleTrouble BoxConfig         `yaml:"double_trouble" toml:"double_trouble"`
}

type ColorChangeConfig struct {
	MinDelay time.Duration `yaml:"min_delay" toml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay" toml:"max_delay"`
}

type BrightnessConfig struct {
	Tick time.Duration `yaml:"tick" toml:"tick"`
}

// BoxConfig sizes a target box as a fraction of the arena.
type BoxConfig struct {
	Width  float64 `yaml:"box_width" toml:"box_width"`
	Height float64 `yaml:"box_height" toml:"box_height"`
}

type UIConfig struct {
	Mouse bool `yaml:"mouse" toml:"mouse"`
}

// Default returns the built-in settings.
func Default() *Config {
	opts := round.DefaultOptions()
	return &Config{
		Server: ServerConfig{URL: "ws://127.0.0.1:5000/ws"},
		Log:    LogConfig{Level: "info"},
		Audio:  AudioConfig{Enabled: true, Volume: 1},
		Rounds: RoundsConfig{
			ColorChange: ColorChangeConfig{
				MinDelay: opts.ColorChangeMinDelay,
				MaxDelay: opts.ColorChangeMaxDelay,
			},
			Brightness:    BrightnessConfig{Tick: opts.BrightnessTick},
			ClickBox:      BoxConfig{Width: opts.ClickBoxSize.W, Height: opts.ClickBoxSize.H},
			DoubleTrouble: BoxConfig{Width: opts.DoubleTroubleSize.W, Height: opts.DoubleTroubleSize.H},
		},
		UI: UIConfig{Mouse: true},
	}
}

// Load reads path over the defaults. An empty path skips the file. Files
// ending in .toml are decoded as TOML, anything else as YAML. Environment
// overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REACTION_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("REACTION_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("REACTION_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REACTION_STATE_DIR"); v != "" {
		c.StateDir = v
	}
}

// Validate rejects settings the round engines cannot use.
func (c *Config) Validate() error {
	cc := c.Rounds.ColorChange
	if cc.MinDelay < 0 || cc.MaxDelay < cc.MinDelay {
		return fmt.Errorf("rounds.color_change: delay range [%s,%s] is invalid", cc.MinDelay, cc.MaxDelay)
	}
	if c.Rounds.Brightness.Tick <= 0 {
		return fmt.Errorf("rounds.brightness.tick must be positive, got %s", c.Rounds.Brightness.Tick)
	}
	for name, b := range map[string]BoxConfig{
		"click_box":      c.Rounds.ClickBox,
		"double_trouble": c.Rounds.DoubleTrouble,
	} {
		if b.Width <= 0 || b.Width > 1 || b.Height <= 0 || b.Height > 1 {
			return fmt.Errorf("rounds.%s: box size %vx%v must be within (0,1]", name, b.Width, b.Height)
		}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be within [0,1], got %v", c.Audio.Volume)
	}
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	return nil
}

// RoundOptions converts the rounds section for the dispatcher.
func (c *Config) RoundOptions() round.Options {
	r := c.Rounds
	return round.Options{
		ColorChangeMinDelay: r.ColorChange.MinDelay,
		ColorChangeMaxDelay: r.ColorChange.MaxDelay,
		BrightnessTick:      r.Brightness.Tick,
		ClickBoxSize:        round.Size{W: r.ClickBox.Width, H: r.ClickBox.Height},
		DoubleTroubleSize:   round.Size{W: r.DoubleTrouble.Width, H: r.DoubleTrouble.Height},
	}
}

// ResolvedStateDir returns the configured state dir or the XDG default.
func (c *Config) ResolvedStateDir() string {
	if c.StateDir != "" {
		return c.StateDir
	}
	return identity.DefaultDir()
}

// LogFile returns the configured log path or client.log in the state dir.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.ResolvedStateDir(), "client.log")
}
