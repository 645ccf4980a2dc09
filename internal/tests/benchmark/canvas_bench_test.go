package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/pixmesh-go/internal/core/service"
	"github.com/yndnr/pixmesh-go/internal/storage/snapshot"
)

// BenchmarkSetPixel measures the full write path: checks, mutation and an
// in-memory save of the whole document.
func BenchmarkSetPixel(b *testing.B) {
	runWithCanvasSizes(b, CanvasSizes, func(b *testing.B, size int) {
		svc := newService(b, size, nil)
		ctx := context.Background()
		id := newIdentity()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if err := svc.SetPixel(ctx, id, i%size, (i/size)%size, paletteColor(i)); err != nil {
				b.Fatalf("SetPixel() error = %v", err)
			}
		}

		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkSetPixel_FileStore includes the temp-file-and-rename save.
func BenchmarkSetPixel_FileStore(b *testing.B) {
	runWithCanvasSizes(b, SmallCanvasSizes, func(b *testing.B, size int) {
		store, err := snapshot.NewFileStore(filepath.Join(b.TempDir(), "board.json"))
		if err != nil {
			b.Fatalf("NewFileStore() error = %v", err)
		}
		defer store.Close()

		svc := newService(b, size, store)
		ctx := context.Background()
		id := newIdentity()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if err := svc.SetPixel(ctx, id, i%size, (i/size)%size, paletteColor(i)); err != nil {
				b.Fatalf("SetPixel() error = %v", err)
			}
		}
	})
}

// BenchmarkSetPixel_Parallel measures writer contention across identities.
func BenchmarkSetPixel_Parallel(b *testing.B) {
	runWithCanvasSizes(b, SmallCanvasSizes, func(b *testing.B, size int) {
		svc := newService(b, size, nil)
		ctx := context.Background()

		var seq atomic.Int64
		b.ResetTimer()
		b.ReportAllocs()

		b.RunParallel(func(pb *testing.PB) {
			id := newIdentity()
			for pb.Next() {
				i := int(seq.Add(1))
				if err := svc.SetPixel(ctx, id, i%size, (i/size)%size, paletteColor(i)); err != nil {
					b.Errorf("SetPixel() error = %v", err)
					return
				}
			}
		})
	})
}

// BenchmarkBoard measures snapshot reads under no write load.
func BenchmarkBoard(b *testing.B) {
	runWithCanvasSizes(b, CanvasSizes, func(b *testing.B, size int) {
		svc := newService(b, size, nil)

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			view := svc.Board()
			if view.Width != size {
				b.Fatalf("Board().Width = %d, want %d", view.Width, size)
			}
		}
	})
}

// BenchmarkBoard_DuringWrites measures reads while one writer is active.
func BenchmarkBoard_DuringWrites(b *testing.B) {
	runWithCanvasSizes(b, SmallCanvasSizes, func(b *testing.B, size int) {
		svc := newService(b, size, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			id := newIdentity()
			for i := 0; ctx.Err() == nil; i++ {
				_ = svc.SetPixel(ctx, id, i%size, (i/size)%size, paletteColor(i))
			}
		}()

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_ = svc.Board()
			}
		})
		b.StopTimer()

		cancel()
		<-done
	})
}

// BenchmarkCooldownLedger measures admission checks over many identities.
func BenchmarkCooldownLedger(b *testing.B) {
	for _, n := range []int{1000, 10000, 100000} {
		b.Run(fmt.Sprintf("identities_%d", n), func(b *testing.B) {
			ledger := service.NewCooldownLedger(5 * time.Second)
			ids := make([]string, n)
			now := time.Now()
			for i := range ids {
				ids[i] = newIdentity()
				ledger.Record(ids[i], now)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				ledger.CheckAndRecord(ids[i%n], now.Add(time.Duration(i)*time.Millisecond))
			}
		})
	}
}

// BenchmarkCooldownPrune measures a full prune pass.
func BenchmarkCooldownPrune(b *testing.B) {
	const n = 100000
	ids := make([]string, n)
	for i := range ids {
		ids[i] = newIdentity()
	}
	start := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		ledger := service.NewCooldownLedger(time.Second)
		for j, id := range ids {
			ledger.Record(id, start.Add(time.Duration(j)*time.Microsecond))
		}
		b.StartTimer()

		ledger.Prune(start.Add(time.Second + n/2*time.Microsecond))
	}
}

// BenchmarkFeedPublish measures fan-out to live subscribers.
func BenchmarkFeedPublish(b *testing.B) {
	for _, subs := range []int{1, 16, 128} {
		b.Run(fmt.Sprintf("subscribers_%d", subs), func(b *testing.B) {
			feed := service.NewFeed(0)
			var wg sync.WaitGroup
			for i := 0; i < subs; i++ {
				sub := feed.Subscribe()
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range sub.Events() {
					}
				}()
			}
			defer wg.Wait()
			defer feed.Close()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				feed.Publish(service.Event{Type: service.EventPixel, X: i, Y: i, Color: "#000000"})
			}
		})
	}
}
