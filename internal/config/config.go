package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"citycam/internal/host"

	"gopkg.in/yaml.v3"
)

// Config holds every user-tunable camera setting.
type Config struct {
	Movement    MovementConfig    `yaml:"movement"`
	Camera      CameraConfig      `yaml:"camera"`
	Ground      GroundConfig      `yaml:"ground"`
	Transitions TransitionConfig  `yaml:"transitions"`
	Follow      FollowConfig      `yaml:"follow"`
	Walkthrough WalkthroughConfig `yaml:"walkthrough"`
	Keys        KeyConfig         `yaml:"keys"`
}

type MovementConfig struct {
	MoveSpeed               float64 `yaml:"camera_move_speed"`
	GoFasterSpeedMultiplier float64 `yaml:"go_faster_speed_multiplier"`
	RotationSensitivity     float64 `yaml:"rotation_sensitivity"`
	InvertYAxis             bool    `yaml:"invert_y_axis"`
}

type CameraConfig struct {
	FieldOfView float64 `yaml:"field_of_view"`
}

type GroundConfig struct {
	SnapToGround      bool    `yaml:"snap_to_ground"`
	GroundOffset      float64 `yaml:"ground_offset"`
	PreventClipGround bool    `yaml:"prevent_clip_ground"`
	LimitSpeedGround  bool    `yaml:"limit_speed_ground"`
}

type TransitionConfig struct {
	AnimateTransitions bool    `yaml:"animate_transitions"`
	AnimationSpeed     float64 `yaml:"animation_speed"`
}

type FollowConfig struct {
	AllowUserOffset bool `yaml:"allow_user_offset"`
	IntegrateHideUI bool `yaml:"integrate_hide_ui"`
}

type WalkthroughConfig struct {
	Manual bool    `yaml:"manual"`
	Timer  float64 `yaml:"timer"` // seconds per target
}

type KeyConfig struct {
	Toggle    host.Key `yaml:"toggle"`
	ShowMouse host.Key `yaml:"show_mouse"`
	GoFaster  host.Key `yaml:"go_faster"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Movement: MovementConfig{
			MoveSpeed:               128,
			GoFasterSpeedMultiplier: 4,
			RotationSensitivity:     1,
		},
		Camera: CameraConfig{FieldOfView: 45},
		Ground: GroundConfig{
			GroundOffset:      16,
			PreventClipGround: true,
		},
		Transitions: TransitionConfig{
			AnimateTransitions: true,
			AnimationSpeed:     1,
		},
		Follow: FollowConfig{IntegrateHideUI: true},
		Walkthrough: WalkthroughConfig{
			Timer: 30,
		},
		Keys: KeyConfig{
			Toggle:    "Tab",
			ShowMouse: "ControlLeft",
			GoFaster:  "ShiftLeft",
		},
	}
}

// LoadConfig reads settings from a yaml file. Keys missing from the file keep
// their default values and out-of-range values are clamped.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	cfg.Clamp()
	return cfg, nil
}

// LoadOrDefault never fails: a missing or corrupt file yields the defaults. The
// returned error only says why the defaults were used, and is nil for a file
// that simply does not exist yet.
func LoadOrDefault(filename string) (*Config, error) {
	cfg, err := LoadConfig(filename)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Default(), err
}

// SaveConfig writes settings to filename, replacing it atomically.
func SaveConfig(cfg *Config, filename string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// Clamp forces every numeric field into its declared range and replaces empty
// key bindings with their defaults.
func (c *Config) Clamp() {
	for _, f := range c.Fields() {
		f.normalize()
	}
}

// Helper functions for easy access to commonly used values
func (c *Config) GetMoveSpeed() float64 {
	return c.Movement.MoveSpeed
}

func (c *Config) GetFieldOfView() float64 {
	return c.Camera.FieldOfView
}

func (c *Config) GetGroundOffset() float64 {
	return c.Ground.GroundOffset
}

// NeedsTerrain reports whether any ground-relative feature is on.
func (c *Config) NeedsTerrain() bool {
	return c.Ground.SnapToGround || c.Ground.PreventClipGround || c.Ground.LimitSpeedGround
}
