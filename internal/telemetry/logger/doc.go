// Package logger provides structured logging for pixmesh.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, global level, package-level helpers
//   - context.go: request ID propagation through context
//   - redact.go: masking of credentials before they reach the output
//
// The level is held in a shared slog.LevelVar so it can be changed at
// runtime with SetLevel, for example when the config file is edited.
package logger
