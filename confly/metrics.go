package confly

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors the aggregation driver updates as
// it builds cubes. They are registered against a caller-supplied registry
// rather than the global default, so a run embedded in a larger process
// does not fight over registration.
type Metrics struct {
	CubesBuilt      prometheus.Counter
	CubeWriteErrors prometheus.Counter
	CubeBuildTime   prometheus.Histogram
}

// NewMetrics constructs and registers the collector set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CubesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confly_cubes_built_total",
			Help: "Number of cube replicas successfully finalised and written.",
		}),
		CubeWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confly_cube_write_errors_total",
			Help: "Number of cube replicas that failed to write.",
		}),
		CubeBuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "confly_cube_build_seconds",
			Help:    "Wall-clock time to sample, expand, finalise, and write one cube.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.CubesBuilt, m.CubeWriteErrors, m.CubeBuildTime)
	return m
}
