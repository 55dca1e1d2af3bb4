package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SetupPrometheus builds the service registry: build, runtime and process collectors plus
// the given extra ones (pgx pool stats when postgres is the source).
func SetupPrometheus(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range extra {
		if c != nil {
			reg.MustRegister(c)
		}
	}
	return reg
}

// Handler serves reg for scraping. Scrapes are themselves counted in reg and traced.
func Handler(reg *prometheus.Registry) http.Handler {
	scrape := promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      reg,
	})
	return otelhttp.NewHandler(promhttp.InstrumentMetricHandler(reg, scrape), "metrics")
}
