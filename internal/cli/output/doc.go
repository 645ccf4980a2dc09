// Package output renders pixmesh-cli results as aligned tables, JSON or
// YAML, selected with the global -o flag.
package output
