package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const storageMetricsPrefix = "weeklyfit_storage_"

// SetupPrometheus builds the registry served on the metrics listener.
// Extra collectors (the pgx pool one) are registered under the storage
// prefix.
func SetupPrometheus(extra ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsGC, collectors.MetricsMemory),
		),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prometheus.WrapRegistererWithPrefix(storageMetricsPrefix, promRegistry).MustRegister(extra...)

	return promRegistry
}
