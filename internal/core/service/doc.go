// Package service provides the canvas domain services for pixmesh.
//
// This package contains:
//
//   - CooldownLedger: per-identity write cooldown
//   - CanvasService: the single entry point for board reads, pixel writes,
//     clears and flushes; it sequences cooldown check, canvas mutation,
//     snapshot save and feed publish
//   - Feed: non-blocking fan-out of accepted mutations to live subscribers
//
// Services own their synchronization and are safe for concurrent use.
package service
