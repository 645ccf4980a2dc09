// Package handler implements the pixmesh HTTP API.
//
// The canvas surface is kept byte-compatible with existing browser clients:
// GET /board returns the raw board document, POST /set and POST /clear
// answer with plain-text bodies, and every error body is the bare message
// ("Out of bounds", "Cooldown: wait 3s"). Operational routes (/health,
// /metrics) and the /ws live feed sit alongside.
package handler
