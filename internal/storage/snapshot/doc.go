// Package snapshot persists the canvas for pixmesh.
//
// A snapshot is one JSON document holding the canvas dimensions and the
// full pixel grid. Every save replaces the previous document as a whole.
//
// Backends:
//
//   - FileStore: a local file, written to a temp file and renamed into place
//   - KVStore: a single key in an embedded KV engine (Badger)
//   - S3Store: a single object in an S3 bucket
//
// Startup goes through LoadGrid, which falls back to a blank canvas when
// the stored snapshot is missing or unusable.
package snapshot
