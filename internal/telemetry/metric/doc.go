// Package metric provides Prometheus metrics for pixmesh.
//
//   - prometheus.go: the application registry, canvas and HTTP metrics,
//     and the /metrics handler
//   - collector.go: a collector that reads canvas state at scrape time
//
// Registry implements the service.Metrics sink, so the canvas service
// reports into it without importing Prometheus.
package metric
