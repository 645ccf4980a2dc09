// Package config holds pixmesh-cli preferences from ~/.pixmesh/cli.yaml:
// the default server, output format and request timeout, plus named server
// profiles selectable with -s.
package config
