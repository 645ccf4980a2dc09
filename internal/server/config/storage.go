package config

import (
	"github.com/yndnr/pixmesh-go/internal/storage"
	"github.com/yndnr/pixmesh-go/internal/storage/snapshot"
)

// ToKVConfig converts the storage section to Badger engine settings.
func ToKVConfig(cfg *ServerConfig) storage.KVConfig {
	kv := storage.DefaultKVConfig(cfg.Storage.BadgerDir)
	if cfg.Storage.BadgerGCInterval > 0 {
		kv.Badger.GCInterval = cfg.Storage.BadgerGCInterval
	}
	return kv
}

// ToS3Config converts the storage section to S3 backend settings.
func ToS3Config(cfg *ServerConfig) snapshot.S3Config {
	s3 := cfg.Storage.S3
	return snapshot.S3Config{
		Bucket:       s3.Bucket,
		Key:          s3.Key,
		Region:       s3.Region,
		Endpoint:     s3.Endpoint,
		UsePathStyle: s3.UsePathStyle,
	}
}
