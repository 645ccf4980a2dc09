package domain

import "fmt"

// Point is a cell coordinate. X indexes columns and Y indexes rows.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// In reports whether p lies inside a width x height rectangle.
func (p Point) In(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Grid is a row-major matrix of colors: Grid[y][x].
type Grid [][]string

// NewGrid returns a width x height grid filled with DefaultColor.
func NewGrid(width, height int) Grid {
	g := make(Grid, height)
	for y := range g {
		row := make([]string, width)
		for x := range row {
			row[x] = DefaultColor
		}
		g[y] = row
	}
	return g
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// Width returns the length of the first row, or 0 for an empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]string(nil), row...)
	}
	return out
}

// Validate checks that g is exactly width x height and that every cell
// holds a valid color.
func (g Grid) Validate(width, height int) error {
	if len(g) != height {
		return fmt.Errorf("grid has %d rows, want %d", len(g), height)
	}
	for y, row := range g {
		if len(row) != width {
			return fmt.Errorf("row %d has %d cells, want %d", y, len(row), width)
		}
		for x, c := range row {
			if !IsValidColor(c) {
				return fmt.Errorf("cell (%d,%d) holds invalid color %q", x, y, c)
			}
		}
	}
	return nil
}
