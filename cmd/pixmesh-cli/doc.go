// Package main provides the entry point for pixmesh-cli.
//
// The CLI talks to a pixmesh server over its HTTP API:
//
//   - board summaries and single-cell reads
//   - painting and clearing
//   - health and build information
//   - LAN discovery of advertised servers
//
// Usage:
//
//	pixmesh-cli [global flags] <command> [flags]
//	pixmesh-cli -s localhost:8000 board -o json
//	pixmesh-cli set --x 3 --y 4 --color '#ff8800' --wait
package main
