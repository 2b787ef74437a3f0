package engineconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EngineConfigPath is the default prefs file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// EnginePrefs holds runtime preferences for the director and its debug overlays. Persisted across runs.
// Authored scene content lives in the content package, not here.
type EnginePrefs struct {
	ShowFPS      bool   `json:"show_fps" mapstructure:"show_fps"`
	ShowMemAlloc bool   `json:"show_memalloc" mapstructure:"show_memalloc"`
	LogLevel     string `json:"log_level" mapstructure:"log_level"`

	ScrollCooldown   time.Duration `json:"scroll_cooldown" mapstructure:"scroll_cooldown"`
	FadeDuration     time.Duration `json:"fade_duration" mapstructure:"fade_duration"`
	CameraDuration   time.Duration `json:"camera_duration" mapstructure:"camera_duration"`
	ParallaxDuration time.Duration `json:"parallax_duration" mapstructure:"parallax_duration"`
	ParallaxScale    float32       `json:"parallax_scale" mapstructure:"parallax_scale"`
	MaxStep          float32       `json:"max_step" mapstructure:"max_step"`

	GuardRepeatSpawn       bool    `json:"guard_repeat_spawn" mapstructure:"guard_repeat_spawn"`
	NormalizeThrowRotation bool    `json:"normalize_throw_rotation" mapstructure:"normalize_throw_rotation"`
	JumpHoldFactor         float32 `json:"jump_hold_factor" mapstructure:"jump_hold_factor"`

	ContentPath     string `json:"content_path" mapstructure:"content_path"`
	CameraStatePath string `json:"camera_state_path" mapstructure:"camera_state_path"`
}

// Default returns default preferences (overlays off, 800ms scroll gate, 1s fades).
func Default() EnginePrefs {
	return EnginePrefs{
		LogLevel:         "info",
		ScrollCooldown:   800 * time.Millisecond,
		FadeDuration:     time.Second,
		CameraDuration:   1500 * time.Millisecond,
		ParallaxDuration: 500 * time.Millisecond,
		ParallaxScale:    0.05,
		MaxStep:          0.1,
		JumpHoldFactor:   0.7,
		ContentPath:      "content",
		CameraStatePath:  "config/camera.json",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("show_fps", d.ShowFPS)
	v.SetDefault("show_memalloc", d.ShowMemAlloc)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("scroll_cooldown", d.ScrollCooldown.String())
	v.SetDefault("fade_duration", d.FadeDuration.String())
	v.SetDefault("camera_duration", d.CameraDuration.String())
	v.SetDefault("parallax_duration", d.ParallaxDuration.String())
	v.SetDefault("parallax_scale", d.ParallaxScale)
	v.SetDefault("max_step", d.MaxStep)
	v.SetDefault("guard_repeat_spawn", d.GuardRepeatSpawn)
	v.SetDefault("normalize_throw_rotation", d.NormalizeThrowRotation)
	v.SetDefault("jump_hold_factor", d.JumpHoldFactor)
	v.SetDefault("content_path", d.ContentPath)
	v.SetDefault("camera_state_path", d.CameraStatePath)
}

// Load reads preferences from path (JSON). A missing file yields Default() and does not create one.
// Keys absent from the file keep their defaults. DIRECTOR_* environment variables override both.
func Load(path string) (EnginePrefs, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("director")
	v.AutomaticEnv()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Default(), fmt.Errorf("engineconfig: read %s: %w", path, err)
		}
	}

	var p EnginePrefs
	if err := v.Unmarshal(&p); err != nil {
		return Default(), fmt.Errorf("engineconfig: decode %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path, creating its directory if needed.
func Save(path string, p EnginePrefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	v := viper.New()
	v.Set("show_fps", p.ShowFPS)
	v.Set("show_memalloc", p.ShowMemAlloc)
	v.Set("log_level", p.LogLevel)
	v.Set("scroll_cooldown", p.ScrollCooldown.String())
	v.Set("fade_duration", p.FadeDuration.String())
	v.Set("camera_duration", p.CameraDuration.String())
	v.Set("parallax_duration", p.ParallaxDuration.String())
	v.Set("parallax_scale", p.ParallaxScale)
	v.Set("max_step", p.MaxStep)
	v.Set("guard_repeat_spawn", p.GuardRepeatSpawn)
	v.Set("normalize_throw_rotation", p.NormalizeThrowRotation)
	v.Set("jump_hold_factor", p.JumpHoldFactor)
	v.Set("content_path", p.ContentPath)
	v.Set("camera_state_path", p.CameraStatePath)
	v.SetConfigType("json")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("engineconfig: write %s: %w", path, err)
	}
	return nil
}
