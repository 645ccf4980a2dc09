package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CanvasStats is the canvas state reported at scrape time.
type CanvasStats struct {
	Width           int
	Height          int
	Version         uint64
	FeedSubscribers int
}

// Collector reports canvas state by calling a stats function on every
// scrape, so no gauge has to be kept in sync with the canvas.
type Collector struct {
	stats func() CanvasStats

	width       *prometheus.Desc
	height      *prometheus.Desc
	version     *prometheus.Desc
	subscribers *prometheus.Desc
}

// NewCollector creates a collector backed by stats.
func NewCollector(stats func() CanvasStats) *Collector {
	return &Collector{
		stats: stats,
		width: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "canvas", "width"),
			"Canvas width in pixels", nil, nil),
		height: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "canvas", "height"),
			"Canvas height in pixels", nil, nil),
		version: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "canvas", "version"),
			"Number of mutations applied since startup", nil, nil),
		subscribers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "feed", "subscribers"),
			"Connected live feed subscribers", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.width
	ch <- c.height
	ch <- c.version
	ch <- c.subscribers
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.width, prometheus.GaugeValue, float64(s.Width))
	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(s.Height))
	ch <- prometheus.MustNewConstMetric(c.version, prometheus.CounterValue, float64(s.Version))
	ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue, float64(s.FeedSubscribers))
}
