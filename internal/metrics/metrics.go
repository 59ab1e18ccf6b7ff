// Package metrics counts stage outcomes on a private Prometheus registry so a
// run can leave them behind for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder struct {
	registry      *prometheus.Registry
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	failedURLs    prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		stageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lhci_stage_total",
				Help: "Stage executions, labeled by stage and status.",
			},
			[]string{"stage", "status"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lhci_stage_duration_seconds",
				Help:    "Wall time of stage executions, labeled by stage.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		failedURLs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lhci_failed_urls",
			Help: "URLs whose assertions failed in the last run.",
		}),
	}
}

// ObserveStage records one stage execution. A nil Recorder is a no-op.
func (r *Recorder) ObserveStage(stage, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.stageTotal.WithLabelValues(stage, status).Inc()
	if status != "skipped" {
		r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) SetFailedURLs(n int) {
	if r == nil {
		return
	}
	r.failedURLs.Set(float64(n))
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the current values in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
