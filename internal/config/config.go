package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"ride/internal/shortcut"
)

const (
	maxConfigFileBytes int64 = 1 << 20
	// Port 0 asks the OS for a free port.
	maxValidPort = 65535

	appDirName     = "ride"
	configFileName = "config.yaml"
)

// Log levels accepted by log_level.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Test seams.
var (
	userConfigDirFn = os.UserConfigDir
	userHomeDirFn   = os.UserHomeDir
)

// LogPluginConfig holds the log viewer sinks.
type LogPluginConfig struct {
	LogToConsole bool `yaml:"log_to_console" json:"log_to_console"`
	LogToFile    bool `yaml:"log_to_file" json:"log_to_file"`
}

// PluginsConfig groups per-plugin settings.
type PluginsConfig struct {
	Log LogPluginConfig `yaml:"log" json:"log"`
}

// Config is the on-disk application configuration.
type Config struct {
	Plugins PluginsConfig `yaml:"plugins" json:"plugins"`
	// Shortcuts maps an action name to a shortcut override, e.g.
	// "View RIDE Log": "CtrlCmd-Shift-L".
	Shortcuts     map[string]string `yaml:"shortcuts" json:"shortcuts"`
	WebSocketPort int               `yaml:"websocket_port" json:"websocket_port"`
	// TempDir overrides where session log files go; empty means os.TempDir().
	TempDir  string `yaml:"temp_dir" json:"temp_dir"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Plugins: PluginsConfig{
			Log: LogPluginConfig{LogToConsole: false, LogToFile: true},
		},
		Shortcuts: map[string]string{},
		LogLevel:  LogLevelInfo,
	}
}

// Clone returns a deep copy of cfg.
func Clone(src Config) Config {
	dst := src
	dst.Shortcuts = maps.Clone(src.Shortcuts)
	if dst.Shortcuts == nil {
		dst.Shortcuts = map[string]string{}
	}
	return dst
}

// SlogLevel converts LogLevel for slog. Unknown values map to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultPath returns <user config dir>/ride/config.yaml, falling back to
// ~/.config and then to the temp dir when the platform lookups fail.
func DefaultPath() string {
	base, err := userConfigDirFn()
	if err != nil || strings.TrimSpace(base) == "" {
		home, homeErr := userHomeDirFn()
		if homeErr != nil {
			slog.Warn("[WARN-CONFIG] using temp dir as config path fallback",
				"error", errors.Join(err, homeErr))
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appDirName, configFileName)
}

// Load reads the config file. A missing or empty file yields the defaults.
// Invalid individual values are reset with a warning; only unreadable or
// unparsable files return an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		slog.Warn("[WARN-CONFIG] failed to parse config, using defaults", "path", path, "error", err)
		return DefaultConfig(), fmt.Errorf("load config: parse: %w", err)
	}

	// "log: ~" or a log block without log_to_file must not turn the file
	// sink off; only an explicit value may.
	hasLogToFile, probeErr := probeLogToFile(raw)
	if probeErr != nil {
		slog.Warn("[WARN-CONFIG] failed to probe plugins.log.log_to_file, keeping parsed value", "error", probeErr)
	} else if !hasLogToFile {
		cfg.Plugins.Log.LogToFile = DefaultConfig().Plugins.Log.LogToFile
	}

	applyDefaultsAndValidate(&cfg)
	return cfg, nil
}

// EnsureFile writes the default config if the file is missing and returns
// the loaded config.
func EnsureFile(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if _, err := Save(path, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save validates cfg and writes it atomically. It returns the normalized
// config that was written.
func Save(path string, cfg Config) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return cfg, errors.New("config path required")
	}
	cfg = Clone(cfg)
	applyDefaultsAndValidate(&cfg)

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("save config: marshal: %w", err)
	}
	if err := atomicWrite(path, raw); err != nil {
		return cfg, err
	}
	slog.Debug("[DEBUG-CONFIG] config saved", "path", path)
	return cfg, nil
}

// applyDefaultsAndValidate normalizes cfg in place. Bad values are logged
// and replaced so a hand-edited file never blocks startup.
func applyDefaultsAndValidate(cfg *Config) {
	validateWebSocketPort(cfg)
	validateTempDir(cfg)
	validateLogLevel(cfg)
	cfg.Shortcuts = sanitizeShortcuts(cfg.Shortcuts, shortcut.NewNormalizer(shortcut.CurrentPlatform()))
}

func validateWebSocketPort(cfg *Config) {
	if cfg.WebSocketPort < 0 || cfg.WebSocketPort > maxValidPort {
		slog.Warn("[WARN-CONFIG] websocket_port out of range (0-65535), using 0",
			"configured", cfg.WebSocketPort)
		cfg.WebSocketPort = 0
	}
}

// validateTempDir expands a leading "~" and clears relative paths.
func validateTempDir(cfg *Config) {
	dir := strings.TrimSpace(cfg.TempDir)
	if dir == "" {
		cfg.TempDir = ""
		return
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[WARN-CONFIG] cannot expand temp_dir, using system temp dir", "tempDir", dir, "error", err)
			cfg.TempDir = ""
			return
		}
		dir = filepath.Join(home, dir[1:])
	}
	if !filepath.IsAbs(dir) {
		slog.Warn("[WARN-CONFIG] temp_dir must be absolute, using system temp dir", "tempDir", dir)
		cfg.TempDir = ""
		return
	}
	cfg.TempDir = filepath.Clean(dir)
}

func validateLogLevel(cfg *Config) {
	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		cfg.LogLevel = level
	case "":
		cfg.LogLevel = LogLevelInfo
	default:
		slog.Warn("[WARN-CONFIG] unknown log_level, using info", "configured", cfg.LogLevel)
		cfg.LogLevel = LogLevelInfo
	}
}

// sanitizeShortcuts keeps overrides whose shortcut parses; the stored value
// is the normalized form.
func sanitizeShortcuts(in map[string]string, n *shortcut.Normalizer) map[string]string {
	out := make(map[string]string, len(in))
	for name, raw := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			slog.Warn("[WARN-CONFIG] shortcut override with empty action name ignored")
			continue
		}
		sc := n.New(raw)
		if _, err := sc.Parse(); err != nil {
			slog.Warn("[WARN-CONFIG] invalid shortcut override ignored", "action", name, "shortcut", raw, "error", err)
			continue
		}
		out[name] = sc.Value()
	}
	return out
}

type rawLogToFileProbe struct {
	Plugins *struct {
		Log *struct {
			LogToFile *bool `yaml:"log_to_file"`
		} `yaml:"log"`
	} `yaml:"plugins"`
}

func probeLogToFile(raw []byte) (bool, error) {
	var probe rawLogToFileProbe
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false, err
	}
	if probe.Plugins == nil || probe.Plugins.Log == nil {
		return false, nil
	}
	return probe.Plugins.Log.LogToFile != nil, nil
}
