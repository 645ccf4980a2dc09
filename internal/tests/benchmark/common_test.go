package benchmark

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
	"github.com/yndnr/pixmesh-go/internal/core/service"
	"github.com/yndnr/pixmesh-go/internal/storage/memory"
	"github.com/yndnr/pixmesh-go/internal/storage/snapshot"
)

// CanvasSizes defines the square canvas edges for benchmarking.
var CanvasSizes = []int{32, 64, 128, 256, 512}

// SmallCanvasSizes for quick benchmarks.
var SmallCanvasSizes = []int{32, 128}

// newIdentity generates a distinct client identity.
func newIdentity() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "bench-" + strings.ToLower(id.String())
}

// memStore is an in-memory snapshot.Store that keeps the encoded bytes.
type memStore struct {
	mu   sync.Mutex
	data []byte
}

func (s *memStore) Load(context.Context) (*snapshot.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, snapshot.ErrNotFound
	}
	return snapshot.Decode(s.data)
}

func (s *memStore) Save(_ context.Context, doc *snapshot.Document) error {
	data, err := snapshot.Encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *memStore) Close() error { return nil }

// newService builds a coordinator over a size x size canvas with no cooldown.
func newService(b *testing.B, size int, store snapshot.Store) *service.CanvasService {
	b.Helper()
	canvas, err := memory.NewCanvas(size, size, nil)
	if err != nil {
		b.Fatalf("NewCanvas() error = %v", err)
	}
	if store == nil {
		store = &memStore{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewCanvasService(canvas, service.NewCooldownLedger(0), store, service.WithLogger(logger))
}

// paletteColor returns a valid color derived from i.
func paletteColor(i int) string {
	return fmt.Sprintf("#%06x", (i*2654435761)&0xffffff)
}

// filledGrid returns a size x size grid with every cell painted.
func filledGrid(size int) domain.Grid {
	g := domain.NewGrid(size, size)
	for y := range g {
		for x := range g[y] {
			g[y][x] = paletteColor(y*size + x)
		}
	}
	return g
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCanvasSizes runs a benchmark function with various canvas sizes.
func runWithCanvasSizes(b *testing.B, sizes []int, benchFn func(b *testing.B, size int)) {
	for _, size := range sizes {
		b.Run(fmt.Sprintf("canvas_%dx%d", size, size), func(b *testing.B) {
			benchFn(b, size)
		})
	}
}
