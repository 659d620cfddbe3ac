// Package config loads ipyprev settings from defaults, a config file,
// IPYPREV_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phobologic/ipyprev/internal/highlight"
	"github.com/phobologic/ipyprev/internal/logger"
	"github.com/phobologic/ipyprev/internal/render"
)

// configName is the config file name without extension.
const configName = ".ipyprev"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix.
const envPrefix = "IPYPREV"

// Defaults.
const (
	DefaultTheme    = highlight.DefaultTheme
	DefaultEngine   = highlight.EngineChroma
	DefaultColor    = highlight.ProfileTrueColor
	DefaultWidth    = render.DefaultWidth
	DefaultLogLevel = "warn"

	// MinWidth leaves room for a header with a multi-digit index.
	MinWidth = 16
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds rendering settings. Field tags use mapstructure for viper.
type Config struct {
	Theme    string `mapstructure:"theme"`
	Engine   string `mapstructure:"engine"`
	Color    string `mapstructure:"color"`
	Width    int    `mapstructure:"width"`
	LogLevel string `mapstructure:"log_level"`
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	switch c.Engine {
	case highlight.EngineChroma, highlight.EngineTreeSitter:
	default:
		return fmt.Errorf("%w: engine %q (want chroma or treesitter)", ErrInvalid, c.Engine)
	}
	switch c.Color {
	case highlight.ProfileAuto, highlight.ProfileTrueColor, highlight.ProfileANSI256,
		highlight.ProfileANSI, highlight.ProfileASCII:
	default:
		return fmt.Errorf("%w: color %q", ErrInvalid, c.Color)
	}
	if c.Width < MinWidth {
		return fmt.Errorf("%w: width %d is below %d", ErrInvalid, c.Width, MinWidth)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.Theme == "" {
		return fmt.Errorf("%w: empty theme", ErrInvalid)
	}
	return nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"theme":     "theme",
	"engine":    "engine",
	"color":     "color",
	"width":     "width",
	"log-level": "log_level",
}

// Load resolves the configuration. If configPath is non-empty it must exist;
// otherwise .ipyprev.yaml is searched in the working directory and $HOME and
// a missing file is not an error. Flags that were set on the command line
// override everything else.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		logger.Debug("loaded config", "file", v.ConfigFileUsed())
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("theme", DefaultTheme)
	v.SetDefault("engine", DefaultEngine)
	v.SetDefault("color", DefaultColor)
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("log_level", DefaultLogLevel)
}

// Template returns a commented config file holding the defaults.
func Template() string {
	return fmt.Sprintf(`# ipyprev configuration.
# Every key can also be set with an IPYPREV_<KEY> environment variable
# (for example IPYPREV_THEME) or the matching command-line flag.

# chroma style used for highlighted output
theme: %s

# preferred highlighting engine: chroma or treesitter
# (treesitter falls back to chroma for grammars it does not have)
engine: %s

# color profile: auto, truecolor, ansi256, ansi or ascii
color: %s

# width of the separator lines around each cell
width: %d

# debug, info, warn or error
log_level: %s
`, DefaultTheme, DefaultEngine, DefaultColor, DefaultWidth, DefaultLogLevel)
}
