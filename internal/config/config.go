// Package config loads runtime settings from defaults, an optional YAML file,
// RUNNING_COACH_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "RUNNING_COACH"
	AppDir    = ".running-coach"
)

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Debug      bool   `mapstructure:"debug"`
}

type CatalogConfig struct {
	File  string `mapstructure:"file"` // Empty selects the built-in tables
	Watch bool   `mapstructure:"watch"`
}

type TimerConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

type HapticsConfig struct {
	Bell        bool          `mapstructure:"bell"`
	Device      string        `mapstructure:"device"` // BLE address of the wearable, empty disables it
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`
}

type StateConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Haptics HapticsConfig `mapstructure:"haptics"`
	State   StateConfig   `mapstructure:"state"`
}

// Defaults returns the settings used when nothing overrides them.
// home is the user's home directory.
func Defaults(home string) Config {
	dir := filepath.Join(home, AppDir)
	return Config{
		Log: LogConfig{
			File:       filepath.Join(dir, "running-coach.log"),
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Timer: TimerConfig{Tick: time.Second},
		Haptics: HapticsConfig{
			Bell:        true,
			ScanTimeout: 20 * time.Second,
		},
		State: StateConfig{Dir: dir},
	}
}

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"log-file":      "log.file",
	"debug":         "log.debug",
	"catalog":       "catalog.file",
	"watch-catalog": "catalog.watch",
	"tick":          "timer.tick",
	"bell":          "haptics.bell",
	"device":        "haptics.device",
	"scan-timeout":  "haptics.scan_timeout",
	"state-dir":     "state.dir",
}

// RegisterFlags adds the overridable settings to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-file", "", "log file path (default ~/.running-coach/running-coach.log)")
	fs.Bool("debug", false, "log the progression state around every tick")
	fs.String("catalog", "", "YAML program catalog to use instead of the built-in tables")
	fs.Bool("watch-catalog", false, "reload the catalog file when it changes")
	fs.Duration("tick", 0, "timer period, one engine second per tick (default 1s)")
	fs.Bool("bell", true, "ring the terminal bell on interval changes")
	fs.String("device", "", "BLE address of a vibration wearable (Immediate Alert service)")
	fs.Duration("scan-timeout", 0, "how long to scan for the wearable (default 20s)")
	fs.String("state-dir", "", "directory for remembered menu selection (default ~/.running-coach)")
}

// Load resolves the configuration. configFile may be empty, in which case
// ~/.running-coach/config.yaml is read when present. fs may be nil.
func Load(home, configFile string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults(home))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	} else {
		v.AddConfigPath(filepath.Join(home, AppDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("catalog.file", d.Catalog.File)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("timer.tick", d.Timer.Tick)
	v.SetDefault("haptics.bell", d.Haptics.Bell)
	v.SetDefault("haptics.device", d.Haptics.Device)
	v.SetDefault("haptics.scan_timeout", d.Haptics.ScanTimeout)
	v.SetDefault("state.dir", d.State.Dir)
}

// Validate rejects settings the shell cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.Timer.Tick <= 0 {
		errs = append(errs, fmt.Errorf("timer.tick must be positive, got %s", c.Timer.Tick))
	}
	if c.Log.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("log.max_size_mb must not be negative, got %d", c.Log.MaxSizeMB))
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("log.max_backups must not be negative, got %d", c.Log.MaxBackups))
	}
	if c.Haptics.Device != "" && c.Haptics.ScanTimeout <= 0 {
		errs = append(errs, fmt.Errorf("haptics.scan_timeout must be positive when a device is set"))
	}
	if c.Catalog.Watch && c.Catalog.File == "" {
		errs = append(errs, errors.New("catalog.watch needs catalog.file"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HomeDir returns the user's home directory, falling back to the working directory
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
