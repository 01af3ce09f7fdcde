package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. WAVREC_QUALITY
// or WAVREC_STORAGE_DIR.
const EnvPrefix = "WAVREC"

type Config struct {
	Quality  string        `json:"quality" mapstructure:"quality"` // "mono16k" or "stereo44k"
	LogLevel string        `json:"log_level" mapstructure:"log_level"`
	Hotkey   string        `json:"hotkey" mapstructure:"hotkey"` // Toggles recording in tray mode, "" disables
	Audio    AudioConfig   `json:"audio" mapstructure:"audio"`
	Storage  StorageConfig `json:"storage" mapstructure:"storage"`

	fs   afero.Fs
	path string
}

type AudioConfig struct {
	InputDevice     string `json:"input_device" mapstructure:"input_device"`
	OutputDevice    string `json:"output_device" mapstructure:"output_device"`
	PlaybackBackend string `json:"playback_backend" mapstructure:"playback_backend"` // "portaudio" or "oto"
}

type StorageConfig struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("quality", "mono16k")
	v.SetDefault("log_level", "info")
	v.SetDefault("hotkey", "Ctrl+Alt+R")
	v.SetDefault("audio.input_device", "")
	v.SetDefault("audio.output_device", "")
	v.SetDefault("audio.playback_backend", "portaudio")
	v.SetDefault("storage.dir", RecordingsPath())
}

// Load reads the config from path, or from DefaultPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs is Load against an arbitrary filesystem.
func LoadFs(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error checking config file %s: %w", path, err)
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{fs: fs, path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be corrected later.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	switch c.Audio.PlaybackBackend {
	case "", "portaudio", "oto":
	default:
		return fmt.Errorf("audio.playback_backend must be 'portaudio' or 'oto', got: %s", c.Audio.PlaybackBackend)
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir cannot be empty")
	}
	return nil
}

// Path returns the file the config was loaded from and is saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to disk
func (c *Config) Save() error {
	fs := c.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	path := c.path
	if path == "" {
		path = DefaultPath()
	}

	// Ensure directory exists
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, path, data, 0644)
}

// DefaultPath returns the platform-specific config file path
func DefaultPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "wavrec", "config.json")
}

// RecordingsPath returns the platform-specific default recordings directory
func RecordingsPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "wavrec", "recordings")
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
