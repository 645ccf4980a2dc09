// Package command provides the pixmesh-cli command tree.
//
// Commands are defined with urfave/cli/v2 and grouped by concern:
//
//   - root.go: application, global flags, client construction
//   - board.go: board summary and single-cell reads
//   - pixel.go: set and clear
//   - system.go: health, version and LAN discovery
//
// Every command resolves its target server and output format from the
// global flags, falling back to ~/.pixmesh/cli.yaml.
package command
