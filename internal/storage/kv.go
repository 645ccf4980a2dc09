package storage

import (
	"context"
	"time"
)

// KVEngine is a durable, concurrency-safe key-value store. The canvas only
// ever uses one key, so the surface is small.
type KVEngine interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// GC compacts the engine and returns an estimate of bytes reclaimed.
	GC(ctx context.Context) (uint64, error)
	Stats(ctx context.Context) (*KVStats, error)
	Close() error
}

// KVStats describes on-disk usage.
type KVStats struct {
	TotalSize        uint64
	LSMSize          uint64
	ValueLogSize     uint64
	LastGCTime       int64 // unix millis, 0 before the first GC
	GCBytesReclaimed uint64
}

// KVConfig locates and tunes an engine.
type KVConfig struct {
	Dir    string
	Badger BadgerConfig
}

// BadgerConfig tunes Badger for a single small value that is rewritten
// on every canvas change.
type BadgerConfig struct {
	GCInterval       time.Duration // zero selects DefaultGCInterval
	GCThreshold      float64       // discard ratio passed to RunValueLogGC
	CacheSize        int64         // block cache, bytes
	ValueLogFileSize int64         // bytes
	SyncWrites       bool
}

// DefaultGCInterval is the value log GC period used when none is set.
const DefaultGCInterval = 10 * time.Minute

// DefaultKVConfig returns DefaultBadgerConfig rooted at dir.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{Dir: dir, Badger: DefaultBadgerConfig()}
}

// DefaultBadgerConfig favours durability and a small footprint.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       DefaultGCInterval,
		GCThreshold:      0.5,
		CacheSize:        8 << 20,
		ValueLogFileSize: 64 << 20,
		SyncWrites:       true,
	}
}
