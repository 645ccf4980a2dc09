package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// gcRunTimeout bounds a single scheduled value log GC pass.
const gcRunTimeout = 5 * time.Minute

// BadgerEngine implements KVEngine on top of Badger v3.
type BadgerEngine struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	closed    atomic.Bool
	lastGC    atomic.Int64  // unix millis
	reclaimed atomic.Uint64 // approximate bytes

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewBadgerEngine opens (or creates) the database in cfg.Dir and
// schedules value log GC every cfg.Badger.GCInterval.
func NewBadgerEngine(cfg KVConfig, logger *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" {
		return nil, errors.New("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	tuning := cfg.Badger
	if tuning.GCInterval <= 0 {
		tuning.GCInterval = DefaultGCInterval
	}

	opts := badger.DefaultOptions(cfg.Dir).
		WithLogger(badgerLogger{logger}).
		WithBlockCacheSize(tuning.CacheSize).
		WithValueLogFileSize(tuning.ValueLogFileSize).
		WithSyncWrites(tuning.SyncWrites)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", cfg.Dir, err)
	}

	e := &BadgerEngine{
		db:     db,
		cfg:    tuning,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go e.runGC()

	logger.Info("badger engine opened",
		"dir", cfg.Dir,
		"sync_writes", tuning.SyncWrites,
		"gc_interval", tuning.GCInterval.String())
	return e, nil
}

// Get returns a copy of the value stored under key.
func (e *BadgerEngine) Get(_ context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

// Set stores value under key in a single transaction.
func (e *BadgerEngine) Set(_ context.Context, key, value []byte) error {
	return e.update(func(txn *badger.Txn) error { return txn.Set(key, value) })
}

// Delete removes key. Deleting a missing key is not an error.
func (e *BadgerEngine) Delete(_ context.Context, key []byte) error {
	return e.update(func(txn *badger.Txn) error { return txn.Delete(key) })
}

func (e *BadgerEngine) update(fn func(txn *badger.Txn) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.db.Update(fn)
}

// GC rewrites value log files until Badger reports nothing left to
// reclaim. The returned byte count is an estimate: one value log file per
// successful rewrite.
func (e *BadgerEngine) GC(ctx context.Context) (uint64, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}

	start := time.Now()
	var reclaimed uint64
	for ctx.Err() == nil {
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return reclaimed, fmt.Errorf("badger: value log gc: %w", err)
		}
		reclaimed += uint64(e.cfg.ValueLogFileSize)
	}
	if err := ctx.Err(); err != nil {
		return reclaimed, err
	}

	e.lastGC.Store(time.Now().UnixMilli())
	e.reclaimed.Add(reclaimed)
	e.logger.Debug("badger gc finished", "reclaimed_bytes", reclaimed, "took", time.Since(start))
	return reclaimed, nil
}

// Stats reports on-disk sizes and GC history.
func (e *BadgerEngine) Stats(_ context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	lsm, vlog := e.db.Size()
	return &KVStats{
		TotalSize:        uint64(lsm + vlog),
		LSMSize:          uint64(lsm),
		ValueLogSize:     uint64(vlog),
		LastGCTime:       e.lastGC.Load(),
		GCBytesReclaimed: e.reclaimed.Load(),
	}, nil
}

// Close stops the GC schedule and closes the database. Later calls
// return nil.
func (e *BadgerEngine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.stop)
		<-e.done
		if cerr := e.db.Close(); cerr != nil {
			err = fmt.Errorf("badger: close: %w", cerr)
		}
		e.logger.Info("badger engine closed")
	})
	return err
}

func (e *BadgerEngine) runGC() {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), gcRunTimeout)
			if _, err := e.GC(ctx); err != nil && !errors.Is(err, ErrClosed) {
				e.logger.Warn("scheduled badger gc failed", "error", err)
			}
			cancel()
		}
	}
}

// RegisterMetrics exposes the engine's sizes and GC history on reg.
// Values are read from the database when the registry is scraped.
func (e *BadgerEngine) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(newBadgerCollector(e))
}

type badgerCollector struct {
	engine *BadgerEngine

	lsm       *prometheus.Desc
	vlog      *prometheus.Desc
	lastGC    *prometheus.Desc
	reclaimed *prometheus.Desc
}

func newBadgerCollector(e *BadgerEngine) *badgerCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("pixmesh", "badger", name), help, nil, nil)
	}
	return &badgerCollector{
		engine:    e,
		lsm:       desc("lsm_size_bytes", "Badger LSM tree size in bytes"),
		vlog:      desc("value_log_size_bytes", "Badger value log size in bytes"),
		lastGC:    desc("last_gc_timestamp_seconds", "Unix time of the last completed value log GC"),
		reclaimed: desc("gc_bytes_reclaimed_total", "Approximate bytes reclaimed by value log GC"),
	}
}

func (c *badgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lsm
	ch <- c.vlog
	ch <- c.lastGC
	ch <- c.reclaimed
}

func (c *badgerCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.engine.Stats(context.Background())
	if err != nil {
		// Closed engines report nothing.
		return
	}
	ch <- prometheus.MustNewConstMetric(c.lsm, prometheus.GaugeValue, float64(stats.LSMSize))
	ch <- prometheus.MustNewConstMetric(c.vlog, prometheus.GaugeValue, float64(stats.ValueLogSize))
	ch <- prometheus.MustNewConstMetric(c.lastGC, prometheus.GaugeValue, float64(stats.LastGCTime)/1000)
	ch <- prometheus.MustNewConstMetric(c.reclaimed, prometheus.CounterValue, float64(stats.GCBytesReclaimed))
}

// badgerLogger routes Badger's printf-style logging into slog. Badger is
// chatty at info level, so Infof is demoted to debug.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(fmt.Sprintf(format, args...))
}
