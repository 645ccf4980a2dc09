// Package domain defines the core domain models for pixmesh.
//
// Domain models are pure values without any IO dependencies:
//
//   - Color: the "#RRGGBB" cell value and its validation
//   - Grid: a row-major rectangle of colors
//   - Point: a cell coordinate
//   - Errors: coded error taxonomy shared by the service and transport layers
package domain
