// Package httpserver hosts the pixmesh HTTP API.
//
// NewRouter wraps the handler package with the middleware chain
// (panic recovery, request IDs, client IP resolution, CORS, request
// metrics and per-IP throttling). Server owns the net/http server and its
// lifecycle.
package httpserver
