// Package config loads dotlink settings.
//
// Layers, lowest priority first: built-in defaults, the config file
// ($XDG_CONFIG_HOME/dotlink/config.yaml or config.toml, or an explicit
// path), DOTLINK_* environment variables, and flags set on the command
// line.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from environment variables before lookup
	EnvPrefix = "DOTLINK_"

	appDirName = "dotlink"
)

// Keys
const (
	KeyManifest  = "manifest"
	KeyRoot      = "root"
	KeyFormat    = "format"
	KeyNameWidth = "name_width"
)

// Config holds the resolved settings.
type Config struct {
	// Manifest path, relative to the repository root unless absolute
	Manifest string `koanf:"manifest"`

	// Root of the dotfiles repository; empty means discover
	Root string `koanf:"root"`

	// Format is the output format: auto, term, text or json
	Format string `koanf:"format"`

	// NameWidth is the width of the name column in status output
	NameWidth int `koanf:"name_width"`

	// File is the config file that was loaded, if any
	File string `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		KeyManifest:  "dotfiles.yaml",
		KeyRoot:      "",
		KeyFormat:    "auto",
		KeyNameWidth: 20,
	}
}

// Options controls Load.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string

	// Overrides are applied last, typically flags the user set.
	Overrides map[string]interface{}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file
	path, err := configFile(opts.File)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}
	cfg.File = path

	if cfg.NameWidth <= 0 {
		return nil, errors.Newf(errors.ErrConfigLoad, "%s must be positive, got %d", KeyNameWidth, cfg.NameWidth)
	}

	logger.Debug().
		Str("manifest", cfg.Manifest).
		Str("root", cfg.Root).
		Str("format", cfg.Format).
		Int("nameWidth", cfg.NameWidth).
		Msg("Configuration resolved")

	return &cfg, nil
}

// Dir returns the dotlink config directory. XDG_CONFIG_HOME is read at
// call time, falling back to xdg.ConfigHome.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = xdg.ConfigHome
	}
	return filepath.Join(base, appDirName)
}

// configFile picks the file to load. An explicit path must exist; the
// default locations are optional.
func configFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", explicit)
		}
		return explicit, nil
	}

	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(Dir(), name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Parser()
	}
	return yaml.Parser()
}
