package snapshot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
)

// Store persists a single canvas snapshot.
//
// Save must replace the previous snapshot atomically: a concurrent Load
// sees either the old document or the new one, never a partial write.
// Load returns ErrNotFound when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	Close() error
}

// LoadGrid loads the stored grid for a width x height canvas.
//
// A missing, unreadable or malformed snapshot, or one whose dimensions do
// not match the configured canvas, is never fatal: LoadGrid logs the reason
// and returns a fresh all-default grid.
func LoadGrid(ctx context.Context, store Store, width, height int, logger *slog.Logger) domain.Grid {
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Info("no stored snapshot, starting with a blank canvas",
			"width", width,
			"height", height)
		return domain.NewGrid(width, height)
	case err != nil:
		logger.Warn("stored snapshot unusable, starting with a blank canvas",
			"error", err)
		return domain.NewGrid(width, height)
	}

	if doc.Width != width || doc.Height != height {
		logger.Warn("stored snapshot dimensions differ from configuration, starting with a blank canvas",
			"stored_width", doc.Width,
			"stored_height", doc.Height,
			"width", width,
			"height", height)
		return domain.NewGrid(width, height)
	}
	if err := doc.Pixels.Validate(width, height); err != nil {
		logger.Warn("stored snapshot grid invalid, starting with a blank canvas",
			"error", err)
		return domain.NewGrid(width, height)
	}

	logger.Info("canvas restored from snapshot",
		"width", width,
		"height", height)
	return doc.Pixels
}
