package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything listfeed reads at startup.
type Config struct {
	UsersURL       string
	MusiciansURL   string
	RequestTimeout time.Duration
	UserAgent      string
	LogFile        string
	LogLevel       string
	MetricsAddr    string
	RefreshEvery   time.Duration
}

const (
	defaultConfigPath     = "~/.config/listfeed/config.toml"
	defaultLogFile        = "~/.local/state/listfeed/listfeed.log"
	defaultUsersURL       = "https://jsonplaceholder.typicode.com/users"
	defaultMusiciansURL   = "https://rss.applemarketingtools.com/api/v2/us/music/most-played/10/albums.json"
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "info"
	defaultUserAgent      = "listfeed/0.1"
	dotEnvFile            = ".env"
)

// Environment variables consulted after the config file.
const (
	EnvUsersURL       = "LISTFEED_USERS_URL"
	EnvMusiciansURL   = "LISTFEED_MUSICIANS_URL"
	EnvRequestTimeout = "LISTFEED_REQUEST_TIMEOUT"
	EnvLogLevel       = "LISTFEED_LOG_LEVEL"
	EnvMetricsAddr    = "LISTFEED_METRICS_ADDR"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		UsersURL:       defaultUsersURL,
		MusiciansURL:   defaultMusiciansURL,
		RequestTimeout: defaultRequestTimeout,
		UserAgent:      defaultUserAgent,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load reads the config file at path (or the default location), then applies
// environment overrides. Variables from a .env file in the working directory
// count as environment but never replace variables already set.
func Load(path string) (Config, error) {
	env, err := environment(dotEnvFile)
	if err != nil {
		return Config{}, err
	}
	return load(path, env)
}

func load(path string, env map[string]string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.readFile(resolved); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		UsersURL       string `toml:"users_url"`
		MusiciansURL   string `toml:"musicians_url"`
		RequestTimeout string `toml:"request_timeout"`
		UserAgent      string `toml:"user_agent"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		MetricsAddr    string `toml:"metrics_addr"`
		RefreshEvery   string `toml:"refresh_every"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.UsersURL, raw.UsersURL)
	setString(&c.MusiciansURL, raw.MusiciansURL)
	setString(&c.UserAgent, raw.UserAgent)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.MetricsAddr, raw.MetricsAddr)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if err := setDuration(&c.RequestTimeout, "request_timeout", raw.RequestTimeout); err != nil {
		return err
	}
	return setDuration(&c.RefreshEvery, "refresh_every", raw.RefreshEvery)
}

func (c *Config) applyEnv(env map[string]string) error {
	setString(&c.UsersURL, env[EnvUsersURL])
	setString(&c.MusiciansURL, env[EnvMusiciansURL])
	setString(&c.LogLevel, env[EnvLogLevel])
	setString(&c.MetricsAddr, env[EnvMetricsAddr])
	return setDuration(&c.RequestTimeout, EnvRequestTimeout, env[EnvRequestTimeout])
}

// environment merges the .env file under the process environment.
func environment(dotenv string) (map[string]string, error) {
	env, err := godotenv.Read(dotenv)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", dotenv, err)
		}
		env = map[string]string{}
	}
	for _, key := range []string{EnvUsersURL, EnvMusiciansURL, EnvRequestTimeout, EnvLogLevel, EnvMetricsAddr} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

// setDuration accepts Go duration strings. A bare "0" disables the limit.
func setDuration(dst *time.Duration, key, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	if v == "0" {
		*dst = 0
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d < 0 {
		return fmt.Errorf("parse config: %s: negative duration %s", key, v)
	}
	*dst = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath expands a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
