package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pixmesh-go/internal/cli/config"
	"github.com/yndnr/pixmesh-go/internal/cli/connection"
	"github.com/yndnr/pixmesh-go/internal/cli/output"
	"github.com/yndnr/pixmesh-go/internal/infra/buildinfo"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "pixmesh-cli",
		Usage:   "Command-line client for a pixmesh canvas server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			BoardCommand(),
			GetCommand(),
			SetCommand(),
			ClearCommand(),
			HealthCommand(),
			VersionCommand(),
			DiscoverCommand(),
		},
		Before: loadConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address or profile name (e.g., localhost:8000)",
			EnvVars: []string{"PIXMESH_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"PIXMESH_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

// GlobalFlags holds the resolved global options.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Timeout time.Duration
}

// ParseGlobalFlags resolves global flags against the CLI config. Explicit
// flags and environment variables win over config values.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)

	server := cfg.DefaultServer
	if c.IsSet("server") {
		server = cfg.Resolve(c.String("server"))
	}

	format := cfg.DefaultOutput
	if c.IsSet("output") {
		format = c.String("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if c.IsSet("timeout") {
		timeout = c.Duration("timeout")
	}

	return &GlobalFlags{Server: server, Output: f, Timeout: timeout}, nil
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if c.App != nil {
		if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
			return cfg
		}
	}
	return config.Default()
}

// newClient builds an HTTP client for the resolved server.
func newClient(c *cli.Context) (*connection.HTTPClient, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	return connection.NewHTTPClient(flags.Server, flags.Timeout), flags, nil
}

// requestContext bounds a single command by the client timeout.
func requestContext(c *cli.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// render writes data in the selected format.
func render(c *cli.Context, format output.Format, data any) error {
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// PrintError prints an error message to the application's error writer.
func PrintError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
