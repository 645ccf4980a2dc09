// Package storage provides embedded key-value storage for pixmesh.
//
// BadgerEngine backs the "badger" snapshot backend. The canvas itself
// lives in memory (package memory) and is persisted through package
// snapshot; this package only supplies the durable KV layer underneath.
package storage
