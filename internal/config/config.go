// Package config resolves the XDG configuration directory and loads
// settings from an optional config file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"todo/internal/store"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// YAMLFile and JSONCFile are the config file names, tried in order.
	YAMLFile  = "config.yaml"
	JSONCFile = "config.jsonc"

	// LogFile is where the terminal UI writes its log.
	LogFile = "todo.log"
)

// Defaults.
const (
	DefaultServerURL  = "http://localhost:8080"
	DefaultTimeout    = 5 * time.Second
	DefaultListen     = ":8080"
	DefaultDriver     = store.DriverMongo
	DefaultAuthSource = "admin"
	DefaultDatabase   = "todo"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// File is the config file that was loaded, or empty.
	File string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// ServerURL is the origin of the task resource server.
	ServerURL string

	// Timeout bounds each request to the server.
	Timeout time.Duration

	// Listen is the address serve binds to.
	Listen string

	// Store configures the persistent store used by serve.
	Store store.Config
}

// fileConfig mirrors the on-disk layout of config.yaml and config.jsonc.
type fileConfig struct {
	Server  string `yaml:"server" json:"server"`
	Timeout string `yaml:"timeout" json:"timeout"`
	Listen  string `yaml:"listen" json:"listen"`
	Store   struct {
		Driver     string `yaml:"driver" json:"driver"`
		DSN        string `yaml:"dsn" json:"dsn"`
		UseAuth    *bool  `yaml:"use_auth" json:"use_auth"`
		Username   string `yaml:"username" json:"username"`
		Password   string `yaml:"password" json:"password"`
		AuthSource string `yaml:"auth_source" json:"auth_source"`
		Database   string `yaml:"database" json:"database"`
	} `yaml:"store" json:"store"`
}

// New creates a Config rooted at configDir. If configDir is empty, uses
// XDG_CONFIG_HOME/todo or $HOME/.config/todo. Defaults are overlaid by
// the config file, if any, and then by the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	c := &Config{
		Dir:       dir,
		ServerURL: DefaultServerURL,
		Timeout:   DefaultTimeout,
		Listen:    DefaultListen,
		Store: store.Config{
			Driver:     DefaultDriver,
			AuthSource: DefaultAuthSource,
			Database:   DefaultDatabase,
		},
	}
	if err := c.loadFile(); err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LogPath returns the path of the terminal UI log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

func (c *Config) loadFile() error {
	for _, name := range []string{YAMLFile, JSONCFile} {
		path := filepath.Join(c.Dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		var fc fileConfig
		if name == YAMLFile {
			err = yaml.Unmarshal(data, &fc)
		} else {
			err = json.Unmarshal(jsonc.ToJSON(data), &fc)
		}
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := c.merge(fc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		c.File = path
		return nil
	}
	return nil
}

func (c *Config) merge(fc fileConfig) error {
	setString(&c.ServerURL, fc.Server)
	setString(&c.Listen, fc.Listen)
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}

	s := &c.Store
	setString(&s.Driver, fc.Store.Driver)
	setString(&s.DSN, fc.Store.DSN)
	setString(&s.Username, fc.Store.Username)
	setString(&s.Password, fc.Store.Password)
	setString(&s.AuthSource, fc.Store.AuthSource)
	setString(&s.Database, fc.Store.Database)
	if fc.Store.UseAuth != nil {
		s.UseAuth = *fc.Store.UseAuth
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.ServerURL, os.Getenv("TODO_SERVER"))
	setString(&c.Listen, os.Getenv("TODO_LISTEN"))

	s := &c.Store
	setString(&s.Driver, os.Getenv("TODO_STORE_DRIVER"))
	setString(&s.DSN, os.Getenv("MONGO_CONN_STR"))
	setString(&s.DSN, os.Getenv("TODO_STORE_DSN"))
	setString(&s.Username, os.Getenv("MONGO_USERNAME"))
	setString(&s.Password, os.Getenv("MONGO_PASSWORD"))

	if v := os.Getenv("USE_DB_AUTH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("USE_DB_AUTH: %w", err)
		}
		s.UseAuth = b
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
