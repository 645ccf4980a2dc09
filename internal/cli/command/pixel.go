package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pixmesh-go/internal/cli/connection"
)

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	flags := coordFlags()
	flags = append(flags,
		&cli.StringFlag{
			Name:     "color",
			Aliases:  []string{"c"},
			Usage:    "color as #RRGGBB",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "wait",
			Usage: "on cooldown, wait out Retry-After and try once more",
		},
	)

	return &cli.Command{
		Name:   "set",
		Usage:  "Paint one cell",
		Flags:  flags,
		Action: pixelSet,
	}
}

func pixelSet(c *cli.Context) error {
	client, flags, err := newClient(c)
	if err != nil {
		return err
	}

	x, y, color := c.Int("x"), c.Int("y"), c.String("color")

	err = setOnce(c, client, flags.Timeout, x, y, color)
	var apiErr *connection.APIError
	if c.Bool("wait") && connection.IsCooldown(err) && errors.As(err, &apiErr) {
		wait := apiErr.RetryAfter
		fmt.Fprintf(c.App.ErrWriter, "cooldown, retrying in %s\n", wait)

		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Context.Done():
			return c.Context.Err()
		}
		err = setOnce(c, client, flags.Timeout, x, y, color)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "(%d,%d) set to %s\n", x, y, color)
	return nil
}

func setOnce(c *cli.Context, client *connection.HTTPClient, timeout time.Duration, x, y int, color string) error {
	ctx, cancel := requestContext(c, timeout)
	defer cancel()
	return client.SetPixel(ctx, x, y, color)
}

// ClearCommand returns the clear command.
func ClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Reset every cell to the default color",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "skip the confirmation check",
			},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return fmt.Errorf("clear erases the whole board; rerun with --yes")
			}

			client, flags, err := newClient(c)
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(c, flags.Timeout)
			defer cancel()

			if err := client.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "board cleared")
			return nil
		},
	}
}
