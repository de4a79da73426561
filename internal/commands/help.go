package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                   List tasks
  todo list [common flags] [--ids]       List tasks (alias: ls)
  todo add [common flags] <text...>      Create a task (alias: create)
  todo toggle [common flags] <n|id>      Toggle a task's completed flag (alias: done)
  todo rm [common flags] <n|id>          Delete a task (alias: delete)
  todo tui [common flags]                Interactive task list
  todo serve [common flags] [--listen <addr>] [--store <driver>] [--dsn <dsn>]
                                         Serve /api/tasks from a store
  todo help
  todo version

Common flags:
  --config <dir>   Override config directory
  --server <url>   Task server URL (default http://localhost:8080)
  -q, --quiet      Suppress informational output
  --debug          Print debug logs to stderr

Store drivers: mongo, mysql, sqlite3, memory
`
