package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr     = "0.0.0.0:8000"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultRequestBurst = 20

	DefaultMDNSInstance = "pixmesh"

	DefaultWidth               = 200
	DefaultHeight              = 100
	DefaultCooldownSeconds     = 5
	DefaultLedgerPruneInterval = time.Minute

	DefaultBackend   = BackendFile
	DefaultBoardFile = "board.json"
	DefaultBadgerDir = "data/badger"
	DefaultBadgerGC  = 10 * time.Minute
	DefaultS3Key     = "pixmesh/board.json"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				RequestBurst: DefaultRequestBurst,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
			MDNS: MDNSConfig{
				Instance: DefaultMDNSInstance,
			},
		},
		Canvas: CanvasSection{
			Width:               DefaultWidth,
			Height:              DefaultHeight,
			CooldownSeconds:     DefaultCooldownSeconds,
			LedgerPruneInterval: DefaultLedgerPruneInterval,
		},
		Storage: StorageSection{
			Backend:          DefaultBackend,
			BoardFile:        DefaultBoardFile,
			BadgerDir:        DefaultBadgerDir,
			BadgerGCInterval: DefaultBadgerGC,
			S3: S3Config{
				Key: DefaultS3Key,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
