package config

import "time"

// ServerConfig is the root configuration for pixmesh-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Canvas  CanvasSection  `koanf:"canvas"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
	MDNS MDNSConfig `koanf:"mdns"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// TrustProxy takes the client identity from X-Forwarded-For or
	// X-Real-IP instead of the socket peer address.
	TrustProxy bool `koanf:"trust_proxy"`

	// RequestsPerSecond throttles requests per client address.
	// 0 disables the throttle.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	RequestBurst      int     `koanf:"request_burst"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// MDNSConfig configures LAN advertisement of the HTTP endpoint.
type MDNSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Instance string `koanf:"instance"`
}

// CanvasSection configures the shared canvas. All values are read once at
// startup.
type CanvasSection struct {
	Width           int `koanf:"width"`
	Height          int `koanf:"height"`
	CooldownSeconds int `koanf:"cooldown_seconds"`

	// LedgerPruneInterval is how often idle cooldown entries are dropped.
	// 0 disables pruning.
	LedgerPruneInterval time.Duration `koanf:"ledger_prune_interval"`
}

// Cooldown returns CooldownSeconds as a duration.
func (c CanvasSection) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Storage backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendS3     = "s3"
)

// StorageSection configures canvas persistence.
type StorageSection struct {
	Backend          string        `koanf:"backend"`
	BoardFile        string        `koanf:"board_file"`
	BadgerDir        string        `koanf:"badger_dir"`
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`
	S3               S3Config      `koanf:"s3"`
}

// S3Config configures the S3 backend. Credentials come from the standard
// AWS chain (environment, shared config, instance role).
type S3Config struct {
	Bucket       string `koanf:"bucket"`
	Key          string `koanf:"key"`
	Region       string `koanf:"region"`
	Endpoint     string `koanf:"endpoint"`
	UsePathStyle bool   `koanf:"use_path_style"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
