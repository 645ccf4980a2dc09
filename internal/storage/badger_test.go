package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestEngine(t *testing.T) *BadgerEngine {
	t.Helper()

	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = time.Hour
	cfg.Badger.SyncWrites = false

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("board"), []byte(`{"width":1}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := engine.Get(ctx, []byte("board"))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"width":1}` {
			t.Errorf("Get() = %s, want %s", got, `{"width":1}`)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("board"), []byte("v2")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := engine.Get(ctx, []byte("board"))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "v2" {
			t.Errorf("Get() = %s, want v2", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("missing"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("tmp"), []byte("x")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := engine.Delete(ctx, []byte("tmp")); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := engine.Get(ctx, []byte("tmp")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrKeyNotFound", err)
		}
	})
}

func TestBadgerEngine_Reopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultKVConfig(dir)
	cfg.Badger.GCInterval = time.Hour
	ctx := context.Background()

	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	if err := engine.Set(ctx, []byte("board"), []byte("persisted")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, []byte("board"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get() = %s, want persisted", got)
	}
}

func TestBadgerEngine_Closed(t *testing.T) {
	cfg := DefaultKVConfig(t.TempDir())
	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	ctx := context.Background()
	if _, err := engine.Get(ctx, []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() error = %v, want ErrClosed", err)
	}
	if err := engine.Set(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() error = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_RequiresDir(t *testing.T) {
	if _, err := NewBadgerEngine(KVConfig{}, nil); err == nil {
		t.Error("NewBadgerEngine() with empty dir should fail")
	}
}

func TestBadgerEngine_GCAndStats(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := engine.Set(ctx, []byte("board"), make([]byte, 1024)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if _, err := engine.GC(ctx); err != nil {
		t.Fatalf("GC() error = %v", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.LastGCTime == 0 {
		t.Error("Stats().LastGCTime = 0, want non-zero after GC")
	}
	if stats.TotalSize != stats.LSMSize+stats.ValueLogSize {
		t.Errorf("Stats().TotalSize = %d, want %d", stats.TotalSize, stats.LSMSize+stats.ValueLogSize)
	}
}

func TestBadgerEngine_RegisterMetrics(t *testing.T) {
	engine := newTestEngine(t)
	registry := prometheus.NewRegistry()

	if err := engine.RegisterMetrics(registry); err != nil {
		t.Fatalf("RegisterMetrics() error = %v", err)
	}
	if err := engine.RegisterMetrics(registry); err == nil {
		t.Error("second RegisterMetrics() error = nil, want duplicate registration error")
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"pixmesh_badger_lsm_size_bytes":            false,
		"pixmesh_badger_value_log_size_bytes":      false,
		"pixmesh_badger_last_gc_timestamp_seconds": false,
		"pixmesh_badger_gc_bytes_reclaimed_total":  false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestBadgerEngine_MetricsAfterClose(t *testing.T) {
	cfg := DefaultKVConfig(t.TempDir())
	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	registry := prometheus.NewRegistry()
	if err := engine.RegisterMetrics(registry); err != nil {
		t.Fatalf("RegisterMetrics() error = %v", err)
	}
	engine.Close()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 0 {
		t.Errorf("Gather() after Close returned %d families, want 0", len(families))
	}
}

func TestBadgerEngine_ZeroGCInterval(t *testing.T) {
	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = 0

	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	defer engine.Close()

	if engine.cfg.GCInterval != DefaultGCInterval {
		t.Errorf("GCInterval = %v, want %v", engine.cfg.GCInterval, DefaultGCInterval)
	}
}

func TestDefaultBadgerConfig(t *testing.T) {
	cfg := DefaultBadgerConfig()
	if cfg.GCInterval != 10*time.Minute {
		t.Errorf("GCInterval = %v, want 10m", cfg.GCInterval)
	}
	if !cfg.SyncWrites {
		t.Error("SyncWrites = false, want true")
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		t.Errorf("GCThreshold = %v, want within (0,1)", cfg.GCThreshold)
	}
}
