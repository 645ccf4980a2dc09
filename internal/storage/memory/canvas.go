package memory

import (
	"fmt"
	"sync"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
)

// Snapshot is a self-consistent view of the canvas at one instant.
//
// Pixels is shared with the canvas and with other snapshots and must be
// treated as read-only. Use Pixels.Clone() before modifying it.
type Snapshot struct {
	Width   int
	Height  int
	Pixels  domain.Grid
	Version uint64
}

// Canvas is the in-memory pixel grid.
//
// Published grids are never modified in place: a write replaces the outer
// slice and the touched row, so a Snapshot taken before the write keeps
// observing the old state. Reads only hold the read lock long enough to
// copy three words.
type Canvas struct {
	mu      sync.RWMutex
	width   int
	height  int
	grid    domain.Grid
	version uint64
}

// NewCanvas creates a canvas of the given dimensions.
// A nil initial grid yields an all-default canvas; a non-nil one must match
// the dimensions exactly.
func NewCanvas(width, height int, initial domain.Grid) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid dimensions %dx%d", width, height)
	}

	grid := initial
	if grid == nil {
		grid = domain.NewGrid(width, height)
	} else {
		if err := grid.Validate(width, height); err != nil {
			return nil, fmt.Errorf("canvas: %w", err)
		}
		grid = grid.Clone()
	}

	return &Canvas{
		width:  width,
		height: height,
		grid:   grid,
	}, nil
}

// Width returns the fixed number of columns.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the fixed number of rows.
func (c *Canvas) Height() int {
	return c.height
}

// InBounds reports whether (x, y) addresses a cell.
func (c *Canvas) InBounds(x, y int) bool {
	return domain.Point{X: x, Y: y}.In(c.width, c.height)
}

// Snapshot returns the current grid and dimensions.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Width:   c.width,
		Height:  c.height,
		Pixels:  c.grid,
		Version: c.version,
	}
}

// Get returns the color at (x, y).
func (c *Canvas) Get(x, y int) (string, error) {
	if !c.InBounds(x, y) {
		return "", domain.ErrOutOfBounds
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grid[y][x], nil
}

// SetPixel overwrites the cell at (x, y).
func (c *Canvas) SetPixel(x, y int, color string) error {
	if !c.InBounds(x, y) {
		return domain.ErrOutOfBounds
	}
	if err := domain.ValidateColor(color); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row := make([]string, c.width)
	copy(row, c.grid[y])
	row[x] = color

	grid := make(domain.Grid, c.height)
	copy(grid, c.grid)
	grid[y] = row

	c.grid = grid
	c.version++
	return nil
}

// Clear resets every cell to domain.DefaultColor.
func (c *Canvas) Clear() {
	grid := domain.NewGrid(c.width, c.height)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.grid = grid
	c.version++
}
