package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dkeye/wsession/internal/domain"
)

const EnvPrefix = "WSCLIENT"

type Config struct {
	Mode     string `mapstructure:"mode" validate:"oneof=debug release test"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`

	Host    string `mapstructure:"host" validate:"required"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
	Secure  bool   `mapstructure:"secure"`
	Message string `mapstructure:"message" validate:"required"`

	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" validate:"gte=0s"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" validate:"gte=0s"`
	ReadLimit        int64         `mapstructure:"read_limit" validate:"gte=0"`

	// Echo server only.
	Reply        string        `mapstructure:"reply"`
	RateLimit    int           `mapstructure:"rate_limit" validate:"gte=0"`
	RateInterval time.Duration `mapstructure:"rate_interval" validate:"gte=0s"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"config":    "config",
	"mode":      "mode",
	"log-level": "log_level",
	"host":      "host",
	"port":      "port",
	"path":      "path",
	"secure":    "secure",
	"message":   "message",
	"reply":     "reply",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("path", "/some-uri")
	v.SetDefault("secure", false)
	v.SetDefault("message", "Hello world")
	v.SetDefault("handshake_timeout", "45s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("reply", "")
	v.SetDefault("rate_limit", 20)
	v.SetDefault("rate_interval", "1s")
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a yaml config file")
	fs.String("mode", "release", "debug, release or test")
	fs.String("log-level", "info", "trace, debug, info, warn, error or disabled")
	fs.String("host", "localhost", "server host")
	fs.Int("port", 8080, "server port")
	fs.String("path", "/some-uri", "websocket path")
	fs.Bool("secure", false, "use wss://")
	fs.String("message", "Hello world", "text frame sent on open")
	fs.String("reply", "", "fixed reply text (echo server); empty echoes")
	return fs
}

// Load resolves config from flags, WSCLIENT_* env, an optional yaml file
// and defaults, in that order of precedence.
func Load(name string, args []string) (*Config, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	explicit := v.GetString("config")
	fileName := explicit
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		if explicit != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Debug().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug().Str("module", "config").Str("mode", cfg.Mode).Str("target", cfg.Target().URL()).Msg("config resolved")
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", verrs)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Target() domain.Target {
	return domain.Target{
		Host:   c.Host,
		Port:   c.Port,
		Path:   c.Path,
		Secure: c.Secure,
	}
}

// Level maps LogLevel to zerolog; unknown values fall back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
