package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pixmesh-go/internal/cli/connection"
	"github.com/yndnr/pixmesh-go/internal/cli/output"
	"github.com/yndnr/pixmesh-go/internal/core/domain"
)

// ColorCount is the number of cells holding one color.
type ColorCount struct {
	Color string `json:"color" yaml:"color"`
	Count int    `json:"count" yaml:"count"`
}

// BoardSummary condenses a board into counts.
type BoardSummary struct {
	Width    int          `json:"width" yaml:"width"`
	Height   int          `json:"height" yaml:"height"`
	Cooldown int          `json:"cooldown" yaml:"cooldown"`
	Painted  int          `json:"painted" yaml:"painted"`
	Colors   []ColorCount `json:"colors" yaml:"colors"`
}

// Summarize counts painted cells and colors. Colors are ordered by count,
// then by name, and truncated to top entries when top > 0.
func Summarize(b *connection.Board, top int) BoardSummary {
	s := BoardSummary{Width: b.Width, Height: b.Height, Cooldown: b.Cooldown}

	counts := make(map[string]int)
	for _, row := range b.Pixels {
		for _, cell := range row {
			c := strings.ToLower(cell)
			counts[c]++
			if c != domain.DefaultColor {
				s.Painted++
			}
		}
	}

	s.Colors = make([]ColorCount, 0, len(counts))
	for c, n := range counts {
		s.Colors = append(s.Colors, ColorCount{Color: c, Count: n})
	}
	sort.Slice(s.Colors, func(i, j int) bool {
		if s.Colors[i].Count != s.Colors[j].Count {
			return s.Colors[i].Count > s.Colors[j].Count
		}
		return s.Colors[i].Color < s.Colors[j].Color
	})
	if top > 0 && len(s.Colors) > top {
		s.Colors = s.Colors[:top]
	}
	return s
}

// BoardCommand returns the board command.
func BoardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Show a board summary",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Usage: "number of colors to list (0 for all)",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "print the full board document",
			},
		},
		Action: boardShow,
	}
}

func boardShow(c *cli.Context) error {
	client, flags, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, flags.Timeout)
	defer cancel()

	b, err := client.Board(ctx)
	if err != nil {
		return err
	}

	if c.Bool("raw") {
		if flags.Output == output.FormatTable {
			return render(c, output.FormatJSON, b)
		}
		return render(c, flags.Output, b)
	}

	summary := Summarize(b, c.Int("top"))
	if flags.Output != output.FormatTable {
		return render(c, flags.Output, summary)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Server:    %s\n", client.BaseURL())
	fmt.Fprintf(w, "Size:      %dx%d\n", summary.Width, summary.Height)
	fmt.Fprintf(w, "Cooldown:  %ds\n", summary.Cooldown)
	fmt.Fprintf(w, "Painted:   %d of %d\n\n", summary.Painted, summary.Width*summary.Height)

	t := &output.Table{Headers: []string{"COLOR", "CELLS"}}
	for _, cc := range summary.Colors {
		t.AddRow(cc.Color, strconv.Itoa(cc.Count))
	}
	return t.Render(w)
}

// Cell is one board cell.
type Cell struct {
	X     int    `json:"x" yaml:"x"`
	Y     int    `json:"y" yaml:"y"`
	Color string `json:"color" yaml:"color"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "get",
		Usage: "Show the color of one cell",
		Flags: coordFlags(),
		Action: func(c *cli.Context) error {
			client, flags, err := newClient(c)
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(c, flags.Timeout)
			defer cancel()

			b, err := client.Board(ctx)
			if err != nil {
				return err
			}

			x, y := c.Int("x"), c.Int("y")
			if y < 0 || y >= len(b.Pixels) || x < 0 || x >= len(b.Pixels[y]) {
				return fmt.Errorf("(%d,%d) is outside the %dx%d board", x, y, b.Width, b.Height)
			}
			return render(c, flags.Output, Cell{X: x, Y: y, Color: b.Pixels[y][x]})
		},
	}
}

func coordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "x", Usage: "column", Required: true},
		&cli.IntFlag{Name: "y", Usage: "row", Required: true},
	}
}
