package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yndnr/pixmesh-go/internal/server/config"
	"github.com/yndnr/pixmesh-go/internal/storage"
	"github.com/yndnr/pixmesh-go/internal/storage/snapshot"
	"github.com/yndnr/pixmesh-go/internal/telemetry/metric"
)

// openStore creates the snapshot backend named by storage.backend.
func openStore(ctx context.Context, cfg *config.ServerConfig, registry *metric.Registry, log *slog.Logger) (snapshot.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		store, err := snapshot.NewFileStore(cfg.Storage.BoardFile)
		if err != nil {
			return nil, err
		}
		log.Info("snapshot backend ready", "backend", config.BackendFile, "path", store.Path())
		return store, nil

	case config.BackendBadger:
		engine, err := storage.NewBadgerEngine(config.ToKVConfig(cfg), log.With("component", "badger"))
		if err != nil {
			return nil, err
		}
		if err := engine.RegisterMetrics(registry.Registerer()); err != nil {
			engine.Close()
			return nil, fmt.Errorf("register badger metrics: %w", err)
		}
		log.Info("snapshot backend ready", "backend", config.BackendBadger, "dir", cfg.Storage.BadgerDir)
		return snapshot.NewKVStore(engine, snapshot.DefaultKVKey), nil

	case config.BackendS3:
		store, err := snapshot.NewS3Store(ctx, config.ToS3Config(cfg))
		if err != nil {
			return nil, err
		}
		log.Info("snapshot backend ready", "backend", config.BackendS3,
			"bucket", cfg.Storage.S3.Bucket,
			"key", cfg.Storage.S3.Key)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
