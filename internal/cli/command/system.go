package command

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pixmesh-go/internal/cli/output"
	"github.com/yndnr/pixmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/pixmesh-go/internal/infra/discovery"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Action: func(c *cli.Context) error {
			client, flags, err := newClient(c)
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(c, flags.Timeout)
			defer cancel()

			h, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			if flags.Output != output.FormatTable {
				return render(c, flags.Output, h)
			}

			w := c.App.Writer
			if h.Status == "ok" {
				fmt.Fprintf(w, "✓ Server is healthy\n")
			} else {
				fmt.Fprintf(w, "✗ Server is unhealthy: %s\n", h.Status)
			}
			fmt.Fprintf(w, "  Target:      %s\n", client.BaseURL())
			fmt.Fprintf(w, "  Version:     %s\n", h.Version)
			fmt.Fprintf(w, "  Uptime:      %s\n", time.Duration(h.UptimeSeconds)*time.Second)
			fmt.Fprintf(w, "  Board:       %dx%d (version %d)\n", h.Width, h.Height, h.BoardVersion)
			fmt.Fprintf(w, "  Subscribers: %d\n", h.Subscribers)
			return nil
		},
	}
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show client build information",
		Action: func(c *cli.Context) error {
			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}
			if flags.Output == output.FormatTable {
				fmt.Fprintf(c.App.Writer, "pixmesh-cli %s\n", buildinfo.String())
				return nil
			}
			return render(c, flags.Output, buildinfo.Get())
		},
	}
}

// DiscoverCommand returns the discover command.
func DiscoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Find servers advertised on the local network",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "wait",
				Usage: "how long to listen for answers",
				Value: discovery.DefaultBrowseTimeout,
			},
		},
		Action: func(c *cli.Context) error {
			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(c, c.Duration("wait"))
			defer cancel()

			peers, err := discovery.Browse(ctx)
			if err != nil {
				return err
			}
			sort.Slice(peers, func(i, j int) bool { return peers[i].Addr < peers[j].Addr })

			if flags.Output != output.FormatTable {
				return render(c, flags.Output, peers)
			}
			if len(peers) == 0 {
				fmt.Fprintln(c.App.Writer, "no servers found")
				return nil
			}
			t := &output.Table{Headers: []string{"INSTANCE", "ADDRESS", "INFO"}}
			for _, p := range peers {
				t.AddRow(p.Instance, p.Addr, formatInfo(p.Info))
			}
			return t.Render(c.App.Writer)
		},
	}
}

func formatInfo(info map[string]string) string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+info[k])
	}
	return strings.Join(parts, " ")
}
