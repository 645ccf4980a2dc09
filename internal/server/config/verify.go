package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/pixmesh-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyCanvas(&cfg.Canvas); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and server.http.tls_key_file must be set together")
	}
	if cfg.HTTP.RequestsPerSecond < 0 {
		return errors.New("server.http.requests_per_second must not be negative")
	}
	if cfg.HTTP.RequestsPerSecond > 0 && cfg.HTTP.RequestBurst < 1 {
		return errors.New("server.http.request_burst must be at least 1 when the request throttle is on")
	}
	if cfg.HTTP.ReadTimeout < 0 || cfg.HTTP.WriteTimeout < 0 {
		return errors.New("server.http timeouts must not be negative")
	}
	if cfg.MDNS.Enabled && cfg.MDNS.Instance == "" {
		return errors.New("server.mdns.instance is required when mdns is enabled")
	}
	return nil
}

func verifyCanvas(cfg *CanvasSection) error {
	if cfg.Width < 1 {
		return fmt.Errorf("canvas.width must be positive, got %d", cfg.Width)
	}
	if cfg.Height < 1 {
		return fmt.Errorf("canvas.height must be positive, got %d", cfg.Height)
	}
	if cfg.CooldownSeconds < 0 {
		return fmt.Errorf("canvas.cooldown_seconds must not be negative, got %d", cfg.CooldownSeconds)
	}
	if cfg.LedgerPruneInterval < 0 {
		return errors.New("canvas.ledger_prune_interval must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch strings.ToLower(cfg.Backend) {
	case BackendFile:
		if cfg.BoardFile == "" {
			return errors.New("storage.board_file is required for the file backend")
		}
	case BackendBadger:
		if cfg.BadgerDir == "" {
			return errors.New("storage.badger_dir is required for the badger backend")
		}
		if cfg.BadgerGCInterval < 0 {
			return errors.New("storage.badger_gc_interval must not be negative")
		}
	case BackendS3:
		if cfg.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of file, badger, s3", cfg.Backend)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}
