package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventdesk"

// Registry holds every collector the server exposes on /metrics.
var Registry = prometheus.NewRegistry()

// AppInfo is always 1; the build metadata lives in its labels.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application build information (always 1, details in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// Domain metrics
var (
	EventsCreated = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_created_total",
			Help:      "Total number of events created",
		},
	)

	EventsDeleted = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted_total",
			Help:      "Total number of events deleted",
		},
	)

	// BlobsReleased counts image payloads removed from the blob store, by outcome.
	BlobsReleased = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blobs_released_total",
			Help:      "Total number of image payloads released from the blob store",
		},
		[]string{"outcome"},
	)

	// InvalidElements counts elements rejected by the bulk tag/customer setters.
	InvalidElements = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_elements_total",
			Help:      "Total number of elements rejected during bulk relationship replacement",
		},
		[]string{"relation"},
	)

	PublicLookups = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "public_lookups_total",
			Help:      "Public access-token lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Init publishes build information.
func Init(version, commit, buildDate string) {
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
