package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

const (
	DefaultAPIURL         = "http://localhost:3500"
	DefaultListen         = "127.0.0.1:0"
	DefaultDebounce       = 300 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "warn"
	DefaultSecretBackend  = SecretBackendAuto

	homeDirName    = ".assetforge"
	configFileName = "config"
	configFileType = "toml"
	homeEnvVar     = "ASSETFORGE_HOME"
)

const (
	SecretBackendAuto = "auto"
	SecretBackendPass = "pass"
	SecretBackendFile = "file"
)

// Config is resolved from defaults, then ~/.assetforge/config.toml, then the environment.
// Command line flags are applied last by the caller.
type Config struct {
	APIURL         string        `mapstructure:"api_url"         env:"ASSETFORGE_API_URL"`
	LoginURL       string        `mapstructure:"login_url"       env:"ASSETFORGE_LOGIN_URL"`
	Listen         string        `mapstructure:"listen"          env:"ASSETFORGE_LISTEN"`
	Debounce       time.Duration `mapstructure:"debounce"        env:"ASSETFORGE_DEBOUNCE"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" env:"ASSETFORGE_REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"log_level"       env:"ASSETFORGE_LOG_LEVEL"`
	SecretBackend  string        `mapstructure:"secret_backend"  env:"ASSETFORGE_SECRET_BACKEND"`
	Home           string        `mapstructure:"-"               env:"ASSETFORGE_HOME"`
}

type LoadOptions struct {
	// Viper is reused when set so callers can bind flags to it.
	Viper *viper.Viper
	// Environ replaces the process environment, mainly for tests.
	Environ map[string]string
}

func Defaults() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		Listen:         DefaultListen,
		Debounce:       DefaultDebounce,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		SecretBackend:  DefaultSecretBackend,
	}
}

func Load(opts LoadOptions) (Config, error) {
	environ := opts.Environ
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}

	home, err := resolveHome(environ)
	if err != nil {
		return Config{}, err
	}

	v := opts.Viper
	if v == nil {
		v = viper.New()
	}

	defaults := Defaults()
	v.SetDefault("api_url", defaults.APIURL)
	v.SetDefault("listen", defaults.Listen)
	v.SetDefault("debounce", defaults.Debounce)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("secret_backend", defaults.SecretBackend)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(home)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Home = home

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if err := validateHTTPURL("api url", c.APIURL, true); err != nil {
		errs = append(errs, err)
	}
	if err := validateHTTPURL("login url", c.LoginURL, false); err != nil {
		errs = append(errs, err)
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.SecretBackend {
	case SecretBackendAuto, SecretBackendPass, SecretBackendFile:
	default:
		errs = append(errs, fmt.Errorf("unsupported secret backend %q", c.SecretBackend))
	}

	return errors.Join(errs...)
}

func (c Config) ConfigFile() string {
	return filepath.Join(c.Home, configFileName+"."+configFileType)
}

func (c Config) SessionFile() string {
	return filepath.Join(c.Home, "session.toml")
}

func (c Config) SecretsDir() string {
	return filepath.Join(c.Home, "secrets")
}

func ParseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("unsupported log level %q", raw)
	}
	return level, nil
}

func resolveHome(environ map[string]string) (string, error) {
	if home := strings.TrimSpace(environ[homeEnvVar]); home != "" {
		return filepath.Clean(home), nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(userHome, homeDirName), nil
}

func validateHTTPURL(name, raw string, required bool) error {
	if strings.TrimSpace(raw) == "" {
		if required {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", name)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", name)
	}

	return nil
}
