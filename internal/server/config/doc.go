// Package config provides server configuration for pixmesh.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (dimensions, backend, TLS pairing)
//   - sanitize.go: Log sanitization (hide sensitive values)
//   - storage.go: conversion to storage backend settings
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
