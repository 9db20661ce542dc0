// Package config loads service settings from an optional intake.yaml, INTAKE_*
// environment variables and the bare PORT variable, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"agency-intake/internal/apperr"
)

const envPrefix = "INTAKE"

// Keys.
const (
	KeyPort             = "port"
	KeyAPIBaseURL       = "api.base_url"
	KeySubmitTimeout    = "api.submit_timeout"
	KeyReferenceTimeout = "api.reference_timeout"
	KeyCacheSize        = "cache.size"
	KeyCacheTTL         = "cache.ttl"
	KeySessionIdleTTL   = "session.idle_ttl"
	KeySessionMax       = "session.max"
	KeyLogLevel         = "log.level"
)

type Config struct {
	Port             int
	APIBaseURL       string
	SubmitTimeout    time.Duration
	ReferenceTimeout time.Duration
	CacheSize        int
	CacheTTL         time.Duration
	SessionIdleTTL   time.Duration
	SessionMax       int
	LogLevel         slog.Level
}

// Addr is the listen address for the session service.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyAPIBaseURL, "http://localhost:3000/api")
	v.SetDefault(KeySubmitTimeout, 30*time.Second)
	v.SetDefault(KeyReferenceTimeout, 10*time.Second)
	v.SetDefault(KeyCacheSize, 128)
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeySessionIdleTTL, 30*time.Minute)
	v.SetDefault(KeySessionMax, 10000)
	v.SetDefault(KeyLogLevel, "info")
}

// New returns a viper instance with defaults and environment bindings. When
// file is empty intake.yaml is looked up in the working directory and
// /etc/agency-intake.
func New(file string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("intake")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/agency-intake")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyPort, envPrefix+"_PORT", "PORT")
	return v
}

// Load reads the config file, if any, and decodes v.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, apperr.WrapInvalid(err, "config", "Load", "read config file")
		}
	}
	return Decode(v)
}

// Decode validates the settings already present in v.
func Decode(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:             v.GetInt(KeyPort),
		APIBaseURL:       strings.TrimRight(v.GetString(KeyAPIBaseURL), "/"),
		SubmitTimeout:    v.GetDuration(KeySubmitTimeout),
		ReferenceTimeout: v.GetDuration(KeyReferenceTimeout),
		CacheSize:        v.GetInt(KeyCacheSize),
		CacheTTL:         v.GetDuration(KeyCacheTTL),
		SessionIdleTTL:   v.GetDuration(KeySessionIdleTTL),
		SessionMax:       v.GetInt(KeySessionMax),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, invalid("log level %q", v.GetString(KeyLogLevel))
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, invalid("port %d out of range", cfg.Port)
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, invalid("api base URL %q", cfg.APIBaseURL)
	}
	if cfg.SubmitTimeout <= 0 {
		return Config{}, invalid("submit timeout %s", cfg.SubmitTimeout)
	}
	if cfg.ReferenceTimeout <= 0 {
		return Config{}, invalid("reference timeout %s", cfg.ReferenceTimeout)
	}
	if cfg.CacheSize < 0 {
		return Config{}, invalid("cache size %d", cfg.CacheSize)
	}
	if cfg.SessionIdleTTL <= 0 {
		return Config{}, invalid("session idle ttl %s", cfg.SessionIdleTTL)
	}
	if cfg.SessionMax < 0 {
		return Config{}, invalid("session max %d", cfg.SessionMax)
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return apperr.WrapInvalid(apperr.ErrInvalidConfig, "config", "Decode", fmt.Sprintf(format, args...))
}
