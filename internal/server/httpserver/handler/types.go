package handler

import "github.com/yndnr/pixmesh-go/internal/core/domain"

// BoardResponse is the body of GET /board.
type BoardResponse struct {
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Pixels   domain.Grid `json:"pixels"`
	Cooldown int         `json:"cooldown"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	BoardVersion  uint64 `json:"board_version"`
	Subscribers   int    `json:"subscribers"`
}

// PixelMessage is a feed message for an accepted pixel write.
type PixelMessage struct {
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// ClearMessage is a feed message for a cleared board.
type ClearMessage struct {
	Type string `json:"type"`
}
