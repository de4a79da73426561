// Package store owns the connection to the persistent task store.
//
// Open returns an explicitly owned handle instead of a process-wide
// connection. The handle moves through open → ready → closed; once
// closed every operation fails with ErrClosed.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/go-sql-driver/mysql"

	"todo/internal/service"
	"todo/internal/store/memstore"
	"todo/internal/store/mongostore"
	"todo/internal/store/sqlstore"
)

// Driver names accepted by Open.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = sqlstore.DriverMySQL
	DriverSQLite = sqlstore.DriverSQLite
	DriverMemory = "memory"
)

var (
	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownDriver is returned by Open for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Config selects and parameterizes a backend.
type Config struct {
	Driver string

	// DSN is the connection string: a MongoDB URI, a MySQL DSN or a
	// SQLite path. Unused for the memory driver.
	DSN string

	// MongoDB credentials, applied when UseAuth is set.
	UseAuth    bool
	Username   string
	Password   string
	AuthSource string

	// Database is the MongoDB database name.
	Database string
}

// Backend is what a driver provides.
type Backend interface {
	service.Service
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// State is the lifecycle state of a Conn.
type State int

const (
	StateOpen State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Conn is an owned handle on a backend. It implements service.Service
// and is safe for concurrent use.
type Conn struct {
	mu      sync.RWMutex
	state   State
	backend Backend
	driver  string
	logger  *slog.Logger
}

// Open connects to the backend selected by cfg and pings it. On
// success the handle is ready. Open does not retry.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Info("connecting to store", "driver", cfg.Driver, "dsn", Redact(cfg.Driver, cfg.DSN))

	var backend Backend
	var err error
	switch cfg.Driver {
	case DriverMongo:
		backend, err = mongostore.Open(ctx, mongostore.Config{
			URI:        cfg.DSN,
			UseAuth:    cfg.UseAuth,
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: cfg.AuthSource,
			Database:   cfg.Database,
		})
	case DriverMySQL, DriverSQLite:
		backend, err = sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
	case DriverMemory:
		backend = memstore.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		logger.Error("store connection failed", "driver", cfg.Driver, "error", err)
		return nil, err
	}

	conn := NewConn(cfg.Driver, backend, logger)
	if err := conn.Ready(ctx); err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}
	logger.Info("connected to store", "driver", cfg.Driver)
	return conn, nil
}

// NewConn wraps an already connected backend. The handle starts open;
// call Ready before use.
func NewConn(driver string, backend Backend, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Conn{state: StateOpen, backend: backend, driver: driver, logger: logger}
}

// Ready pings the backend and moves the handle from open to ready.
func (c *Conn) Ready(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	}
	if err := c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	c.state = StateReady
	return nil
}

// State returns the lifecycle state.
func (c *Conn) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Driver returns the driver name the handle was opened with.
func (c *Conn) Driver() string { return c.driver }

// Ping reports whether the store is reachable.
func (c *Conn) Ping(ctx context.Context) error {
	b, err := c.ready()
	if err != nil {
		return err
	}
	return b.Ping(ctx)
}

// ListTasks implements service.Service.
func (c *Conn) ListTasks(ctx context.Context) ([]service.Task, error) {
	b, err := c.ready()
	if err != nil {
		return nil, err
	}
	return b.ListTasks(ctx)
}

// CreateTask implements service.Service.
func (c *Conn) CreateTask(ctx context.Context, text string) (service.Task, error) {
	b, err := c.ready()
	if err != nil {
		return service.Task{}, err
	}
	return b.CreateTask(ctx, text)
}

// UpdateTask implements service.Service.
func (c *Conn) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	b, err := c.ready()
	if err != nil {
		return service.Task{}, err
	}
	return b.UpdateTask(ctx, id, patch)
}

// DeleteTask implements service.Service.
func (c *Conn) DeleteTask(ctx context.Context, id string) error {
	b, err := c.ready()
	if err != nil {
		return err
	}
	return b.DeleteTask(ctx, id)
}

// Close closes the backend. Closing twice returns ErrClosed.
func (c *Conn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateClosed
	if err := c.backend.Close(ctx); err != nil {
		c.logger.Error("store close failed", "driver", c.driver, "error", err)
		return err
	}
	c.logger.Info("store closed", "driver", c.driver)
	return nil
}

func (c *Conn) ready() (Backend, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.state {
	case StateReady:
		return c.backend, nil
	case StateClosed:
		return nil, ErrClosed
	default:
		return nil, fmt.Errorf("store is not ready (state %s)", c.state)
	}
}

var (
	uriCredentialsRe   = regexp.MustCompile(`//.*@`)
	mysqlCredentialsRe = regexp.MustCompile(`^.*@`)
	sqlitePasswordRe   = regexp.MustCompile(`(_auth_pass=)[^&]*`)
)

// Redact hides the credentials of a connection string for driver.
// MongoDB URIs lose their userinfo, MySQL DSNs their user:password@
// prefix and SQLite DSNs their _auth_pass parameter.
func Redact(driver, dsn string) string {
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return mysqlCredentialsRe.ReplaceAllString(dsn, "***:***@")
		}
		if cfg.User == "" && cfg.Passwd == "" {
			return cfg.FormatDSN()
		}
		cfg.User, cfg.Passwd = "***", "***"
		return cfg.FormatDSN()
	case DriverSQLite:
		return sqlitePasswordRe.ReplaceAllString(dsn, "${1}***")
	default:
		return uriCredentialsRe.ReplaceAllString(dsn, "//***:***@")
	}
}
