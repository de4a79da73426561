package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/server"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: it opens the configured store
// and serves the task resource surface until interrupted.
type ServeCmd struct {
	listen string
	driver string
	dsn    string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the task API" }
func (c *ServeCmd) Usage() string {
	return "todo serve [--listen <addr>] [--store <driver>] [--dsn <dsn>]"
}
func (c *ServeCmd) NeedsBackend() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.listen, "listen", "", "address to listen on")
	fs.StringVar(&c.driver, "store", "", "store driver")
	fs.StringVar(&c.dsn, "dsn", "", "store connection string")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	listen := cfg.Listen
	if c.listen != "" {
		listen = c.listen
	}
	storeCfg := cfg.Store
	if c.driver != "" {
		storeCfg.Driver = c.driver
	}
	if c.dsn != "" {
		storeCfg.DSN = c.dsn
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewLevel(errOut, level)

	// No retry: a store that cannot be reached at startup ends the process.
	conn, err := store.Open(ctx, storeCfg, logger)
	if errors.Is(err, store.ErrUnknownDriver) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: store connection failed: %v\n", err)
		return exitcode.BackendError
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	if err := server.New(conn, logger).ListenAndServe(ctx, listen); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
