// Package config loads runtime settings from an optional TOML file and the
// environment.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/boot-runtime/compat"
	"github.com/wippyai/boot-runtime/errors"
)

const (
	// FileVar names the configuration file.
	FileVar = "BOOT_CONFIG"
	// LogLevelVar overrides the configured log level.
	LogLevelVar = "BOOT_LOG_LEVEL"

	// MaxMemoryPages is the largest 32-bit linear memory in 64 KiB pages.
	MaxMemoryPages = 65536
)

// Config holds every runtime setting.
type Config struct {
	Heap   HeapConfig
	Log    LogConfig
	Compat compat.Policy
	Loader LoaderConfig
}

// HeapConfig controls the managed heap.
type HeapConfig struct {
	LimitBytes       int
	TraceAllocations bool
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  zapcore.Level
	Format string
}

// LoaderConfig controls the boot image loader.
type LoaderConfig struct {
	MemoryLimitPages uint32
	Mounts           []Mount
	InheritEnv       bool
}

// Mount exposes a host directory to the program.
type Mount struct {
	Host     string `toml:"host"`
	Guest    string `toml:"guest"`
	ReadOnly bool   `toml:"read_only"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  zapcore.WarnLevel,
			Format: "console",
		},
		Compat: compat.DefaultPolicy(),
		Loader: LoaderConfig{
			InheritEnv: true,
		},
	}
}

type fileConfig struct {
	Heap struct {
		LimitBytes       int  `toml:"limit_bytes"`
		TraceAllocations bool `toml:"trace_allocations"`
	} `toml:"heap"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Compat struct {
		LimbSize string `toml:"limb_size"`
		LimbBits string `toml:"limb_bits"`
	} `toml:"compat"`
	Loader struct {
		MemoryLimitPages int64   `toml:"memory_limit_pages"`
		Mounts           []Mount `toml:"mounts"`
		InheritEnv       bool    `toml:"inherit_env"`
	} `toml:"loader"`
}

// Load reads path and overlays the keys it defines on Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Subject(path).
			Cause(err).
			Detail("load config %s", path).
			Build()
	}

	if meta.IsDefined("heap", "limit_bytes") {
		if raw.Heap.LimitBytes < 0 {
			return Config{}, invalid("heap.limit_bytes", "must not be negative")
		}
		cfg.Heap.LimitBytes = raw.Heap.LimitBytes
	}

	if meta.IsDefined("heap", "trace_allocations") {
		cfg.Heap.TraceAllocations = raw.Heap.TraceAllocations
	}

	if meta.IsDefined("log", "level") {
		lvl, err := parseLevel(raw.Log.Level)
		if err != nil {
			return Config{}, err
		}
		cfg.Log.Level = lvl
	}

	if meta.IsDefined("log", "format") {
		format := strings.ToLower(strings.TrimSpace(raw.Log.Format))
		if format != "console" && format != "json" {
			return Config{}, invalid("log.format", "expected console or json, got "+raw.Log.Format)
		}
		cfg.Log.Format = format
	}

	if meta.IsDefined("compat", "limb_size") {
		sev, err := compat.ParseSeverity(raw.Compat.LimbSize)
		if err != nil {
			return Config{}, err
		}
		cfg.Compat.LimbSize = sev
	}

	if meta.IsDefined("compat", "limb_bits") {
		sev, err := compat.ParseSeverity(raw.Compat.LimbBits)
		if err != nil {
			return Config{}, err
		}
		cfg.Compat.LimbBits = sev
	}

	if meta.IsDefined("loader", "memory_limit_pages") {
		pages := raw.Loader.MemoryLimitPages
		if pages < 0 || pages > MaxMemoryPages {
			return Config{}, invalid("loader.memory_limit_pages", "must be between 0 and 65536")
		}
		cfg.Loader.MemoryLimitPages = uint32(pages)
	}

	if meta.IsDefined("loader", "mounts") {
		mounts, err := normalizeMounts(raw.Loader.Mounts)
		if err != nil {
			return Config{}, err
		}
		cfg.Loader.Mounts = mounts
	}

	if meta.IsDefined("loader", "inherit_env") {
		cfg.Loader.InheritEnv = raw.Loader.InheritEnv
	}

	return cfg, nil
}

// FromEnv loads the file named by BOOT_CONFIG, if any, and applies
// BOOT_LOG_LEVEL on top.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(FileVar); ok && strings.TrimSpace(path) != "" {
		loaded, err := Load(strings.TrimSpace(path))
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if level, ok := lookup(LogLevelVar); ok && strings.TrimSpace(level) != "" {
		lvl, err := parseLevel(level)
		if err != nil {
			return Config{}, err
		}
		cfg.Log.Level = lvl
	}

	return cfg, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").
			Subject(s).
			Cause(err).
			Detail("invalid log level %q", s).
			Build()
	}
	return lvl, nil
}

func normalizeMounts(in []Mount) ([]Mount, error) {
	out := make([]Mount, 0, len(in))
	for _, m := range in {
		m.Host = strings.TrimSpace(m.Host)
		m.Guest = strings.TrimSpace(m.Guest)
		if m.Host == "" {
			return nil, invalid("loader.mounts", "mount host path is empty")
		}
		if m.Guest == "" {
			m.Guest = "/"
		}
		out = append(out, m)
	}
	return out, nil
}

func invalid(key, detail string) *errors.Error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(strings.Split(key, ".")...).
		Subject(key).
		Detail("%s: %s", key, detail).
		Build()
}
