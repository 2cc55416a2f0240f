package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_publishes_total",
			Help: "Published content updates by type",
		},
		[]string{"type"},
	)
	ConnectedDisplays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signage_connected_displays",
			Help: "Currently connected display sessions",
		},
	)
	ZoneJoinsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_zone_joins_total",
			Help: "Zone join messages processed",
		},
	)
	ReplaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_replays_total",
			Help: "Last-state replays sent to joining displays",
		},
	)
	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_upload_bytes_total",
			Help: "Bytes accepted through the publish endpoint",
		},
	)
)

// Register installs the signage collectors on the default registry.
func Register() {
	prometheus.MustRegister(
		PublishesTotal,
		ConnectedDisplays,
		ZoneJoinsTotal,
		ReplaysTotal,
		UploadBytesTotal,
	)
}
