package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/jwalitptl/patient-portal/internal/i18n"
)

// EnvPrefix prefixes every environment override, e.g. PORTAL_SERVER_PORT.
const EnvPrefix = "PORTAL"

// Bootstrap is read from the environment before the config file is located.
type Bootstrap struct {
	ConfigFile string `envconfig:"CONFIG_FILE"`
	// Env overrides the env key of the config file when set.
	Env string `envconfig:"ENV"`
}

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Locale    LocaleConfig    `mapstructure:"locale"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Export    ExportConfig    `mapstructure:"export"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DataConfig struct {
	// Dir overrides the embedded bundle with a directory on disk.
	Dir              string        `mapstructure:"dir"`
	ReloadInterval   time.Duration `mapstructure:"reload_interval"`
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	RetryAfter       time.Duration `mapstructure:"retry_after"`
}

type LocaleConfig struct {
	Default  string `mapstructure:"default"`
	Timezone string `mapstructure:"timezone"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is "console" or "json". Empty picks console in development.
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CacheConfig struct {
	MaxAge int `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type ExportConfig struct {
	OutDir string `mapstructure:"out_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("data.dir", "")
	v.SetDefault("data.reload_interval", time.Duration(0))
	v.SetDefault("data.refresh_interval", time.Duration(0))
	v.SetDefault("data.failure_threshold", 3)
	v.SetDefault("data.retry_after", 5*time.Second)

	v.SetDefault("locale.default", "fr-FR")
	v.SetDefault("locale.timezone", "Europe/Paris")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cache.max_age", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "patient_portal")

	v.SetDefault("export.out_dir", "dist")
}

// LoadBootstrap reads PORTAL_CONFIG_FILE and PORTAL_ENV.
func LoadBootstrap() (Bootstrap, error) {
	var b Bootstrap
	if err := envconfig.Process(EnvPrefix, &b); err != nil {
		return Bootstrap{}, fmt.Errorf("failed to read bootstrap environment: %w", err)
	}
	return b, nil
}

// LoadConfig loads the configuration selected by the bootstrap environment.
func LoadConfig() (*Config, error) {
	b, err := LoadBootstrap()
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// Load reads defaults, then the config file, then PORTAL_* overrides. A
// missing config.yaml in the search path is not an error; a missing
// explicit ConfigFile is.
func Load(b Bootstrap) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if b.ConfigFile != "" {
		v.SetConfigFile(b.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if b.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if b.Env != "" {
		cfg.Env = b.Env
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Data.ReloadInterval < 0 {
		return fmt.Errorf("data.reload_interval must not be negative")
	}
	if c.Data.RefreshInterval < 0 {
		return fmt.Errorf("data.refresh_interval must not be negative")
	}
	if _, err := c.DefaultLanguage(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format %q must be console or json", c.Log.Format)
	}
	return nil
}

// DefaultLanguage returns the supported tag matching locale.default.
func (c *Config) DefaultLanguage() (language.Tag, error) {
	tag, ok := i18n.ParseTag(c.Locale.Default)
	if !ok {
		return language.Und, fmt.Errorf("locale.default %q is not supported", c.Locale.Default)
	}
	return tag, nil
}

// Location returns the timezone used for calendar days and greetings.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return nil, fmt.Errorf("locale.timezone: %w", err)
	}
	return loc, nil
}

// ConsoleLogs reports whether logs should be human readable.
func (c *Config) ConsoleLogs() bool {
	if c.Log.Format != "" {
		return c.Log.Format == "console"
	}
	return c.Env == "development"
}
