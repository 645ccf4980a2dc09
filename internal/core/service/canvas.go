package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
	"github.com/yndnr/pixmesh-go/internal/storage/memory"
	"github.com/yndnr/pixmesh-go/internal/storage/snapshot"
)

// DefaultPersistTimeout bounds a single snapshot save.
const DefaultPersistTimeout = 10 * time.Second

// Rejection reasons reported to Metrics.WriteRejected.
const (
	ReasonOutOfBounds  = "out_of_bounds"
	ReasonCooldown     = "cooldown"
	ReasonInvalidColor = "invalid_color"
)

// Metrics receives canvas activity. Implementations must be safe for
// concurrent use.
type Metrics interface {
	PixelSet()
	WriteRejected(reason string)
	CanvasCleared()
	PersistObserved(elapsed time.Duration, err error)
	LedgerSize(n int)
}

type nopMetrics struct{}

func (nopMetrics) PixelSet()                            {}
func (nopMetrics) WriteRejected(string)                 {}
func (nopMetrics) CanvasCleared()                       {}
func (nopMetrics) PersistObserved(time.Duration, error) {}
func (nopMetrics) LedgerSize(int)                       {}

// BoardView is the read-board payload.
type BoardView struct {
	Width  int
	Height int

	// Pixels is shared with the canvas and must not be modified.
	Pixels domain.Grid

	// CooldownSeconds is the configured per-identity cooldown.
	CooldownSeconds int

	Version uint64
}

// Option configures a CanvasService.
type Option func(*CanvasService)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CanvasService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *CanvasService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithFeed publishes accepted mutations to feed.
func WithFeed(feed *Feed) Option {
	return func(s *CanvasService) {
		s.feed = feed
	}
}

// WithClock overrides the time source used for cooldowns.
func WithClock(now func() time.Time) Option {
	return func(s *CanvasService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPersistTimeout bounds each snapshot save.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *CanvasService) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// CanvasService coordinates reads and writes of the shared canvas.
//
// Writes are serialized by a single mutex covering the cooldown check, the
// canvas mutation, the snapshot save and the feed publish, so every
// accepted write is persisted and published in the order it was applied.
// Reads do not take that mutex and see the latest applied mutation.
type CanvasService struct {
	mu     sync.Mutex
	canvas *memory.Canvas
	ledger *CooldownLedger
	store  snapshot.Store

	feed           *Feed
	metrics        Metrics
	logger         *slog.Logger
	now            func() time.Time
	persistTimeout time.Duration
}

// NewCanvasService creates the coordinator.
func NewCanvasService(canvas *memory.Canvas, ledger *CooldownLedger, store snapshot.Store, opts ...Option) *CanvasService {
	s := &CanvasService{
		canvas:         canvas,
		ledger:         ledger,
		store:          store,
		metrics:        nopMetrics{},
		logger:         slog.Default(),
		now:            time.Now,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board returns a consistent view of the canvas with the cooldown setting.
func (s *CanvasService) Board() BoardView {
	snap := s.canvas.Snapshot()
	return BoardView{
		Width:           snap.Width,
		Height:          snap.Height,
		Pixels:          snap.Pixels,
		CooldownSeconds: int(s.ledger.Cooldown() / time.Second),
		Version:         snap.Version,
	}
}

// SetPixel applies a single-pixel write from identity.
//
// Checks run in a fixed order: bounds, cooldown, color. The cooldown clock
// only advances for writes that are applied. A failed save is logged and
// counted but does not fail the write.
func (s *CanvasService) SetPixel(ctx context.Context, identity string, x, y int, color string) error {
	// 1. Bounds
	if !s.canvas.InBounds(x, y) {
		s.reject(ctx, identity, ReasonOutOfBounds)
		return domain.ErrOutOfBounds
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// 2. Cooldown
	if ok, remaining := s.ledger.Check(identity, now); !ok {
		s.reject(ctx, identity, ReasonCooldown)
		return domain.NewCooldownError(remaining)
	}

	// 3. Color
	if err := domain.ValidateColor(color); err != nil {
		s.reject(ctx, identity, ReasonInvalidColor)
		return err
	}

	// 4. Mutate and record
	if err := s.canvas.SetPixel(x, y, color); err != nil {
		return err
	}
	s.ledger.Record(identity, now)
	s.metrics.PixelSet()
	s.metrics.LedgerSize(s.ledger.Len())

	// 5. Persist and publish
	snap := s.canvas.Snapshot()
	_ = s.persist(ctx, snap)

	if s.feed != nil {
		s.feed.Publish(Event{
			Type:    EventPixel,
			X:       x,
			Y:       y,
			Color:   color,
			Version: snap.Version,
		})
	}

	s.logger.DebugContext(ctx, "pixel set",
		"identity", identity,
		"x", x,
		"y", y,
		"color", color)
	return nil
}

// Clear resets the canvas to the default color and persists it.
func (s *CanvasService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canvas.Clear()
	s.metrics.CanvasCleared()

	snap := s.canvas.Snapshot()
	_ = s.persist(ctx, snap)

	if s.feed != nil {
		s.feed.Publish(Event{
			Type:    EventClear,
			Version: snap.Version,
		})
	}

	s.logger.InfoContext(ctx, "canvas cleared")
	return nil
}

// Flush saves the current canvas. Unlike SetPixel and Clear it reports a
// failed save, as domain.ErrIOFailure.
func (s *CanvasService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, s.canvas.Snapshot()); err != nil {
		return domain.ErrIOFailure.WithCause(err)
	}
	return nil
}

// PruneCooldowns drops ledger entries whose cooldown has elapsed.
func (s *CanvasService) PruneCooldowns() int {
	removed := s.ledger.Prune(s.now())
	s.metrics.LedgerSize(s.ledger.Len())
	if removed > 0 {
		s.logger.Debug("cooldown ledger pruned",
			"removed", removed,
			"remaining", s.ledger.Len())
	}
	return removed
}

// RunPruner calls PruneCooldowns every interval until ctx is done.
// A non-positive interval returns immediately.
func (s *CanvasService) RunPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.PruneCooldowns()
		case <-ctx.Done():
			return
		}
	}
}

func (s *CanvasService) reject(ctx context.Context, identity, reason string) {
	s.metrics.WriteRejected(reason)
	s.logger.DebugContext(ctx, "pixel write rejected",
		"identity", identity,
		"reason", reason)
}

// persist saves snap. The save runs even if ctx has been cancelled by a
// departing client; it is bounded by persistTimeout instead.
func (s *CanvasService) persist(ctx context.Context, snap memory.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.Save(ctx, snapshot.NewDocument(snap.Width, snap.Height, snap.Pixels))
	s.metrics.PersistObserved(time.Since(start), err)

	if err != nil {
		s.logger.ErrorContext(ctx, "snapshot save failed",
			"version", snap.Version,
			"timeout", s.persistTimeout,
			"error", err)
		return err
	}
	return nil
}
