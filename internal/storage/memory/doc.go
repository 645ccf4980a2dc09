// Package memory provides the in-memory canvas store for pixmesh.
//
// Canvas owns the pixel grid and its invariants: dimensions are fixed at
// construction and every cell always holds a valid color.
//
// Thread Safety:
//
// All operations are safe for concurrent use. Writers take the write lock,
// readers take the read lock and receive an immutable grid, so a reader
// never observes a half-applied write.
package memory
