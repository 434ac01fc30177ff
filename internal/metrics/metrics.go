// Package metrics records per-run pipeline counters. Recorder is what the
// pipeline depends on; Nop is the driver's default.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Recorder interface {
	// DatasetDone is called once per dataset type with its final status.
	DatasetDone(dataset, status string, rows int64, took time.Duration)
	FilesFailed(dataset string, n int)
	Flush(ctx context.Context) error
}

type Nop struct{}

func (Nop) DatasetDone(string, string, int64, time.Duration) {}

func (Nop) FilesFailed(string, int) {}

func (Nop) Flush(context.Context) error { return nil }

// Prometheus keeps metrics in its own registry and pushes them to a
// Pushgateway on Flush. With an empty gateway URL Flush does nothing.
type Prometheus struct {
	gatewayURL string
	job        string
	reg        *prometheus.Registry

	datasets    *prometheus.CounterVec
	rows        *prometheus.CounterVec
	failedFiles *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func NewPrometheus(job, gatewayURL string) (*Prometheus, error) {
	if job == "" {
		job = "rfcnpj_parquet"
	}
	p := &Prometheus{
		gatewayURL: gatewayURL,
		job:        job,
		reg:        prometheus.NewRegistry(),
		datasets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfcnpj_datasets_total",
			Help: "Dataset types processed, by final status.",
		}, []string{"dataset", "status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfcnpj_rows_written_total",
			Help: "Rows written to parquet per dataset type.",
		}, []string{"dataset"}),
		failedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfcnpj_files_failed_total",
			Help: "Source files skipped because they could not be read.",
		}, []string{"dataset"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rfcnpj_dataset_duration_seconds",
			Help:    "Time spent assembling and writing one dataset type.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"dataset"}),
	}
	for _, c := range []prometheus.Collector{p.datasets, p.rows, p.failedFiles, p.duration} {
		if err := p.reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

func (p *Prometheus) DatasetDone(dataset, status string, rows int64, took time.Duration) {
	p.datasets.WithLabelValues(dataset, status).Inc()
	p.rows.WithLabelValues(dataset).Add(float64(rows))
	p.duration.WithLabelValues(dataset).Observe(took.Seconds())
}

func (p *Prometheus) FilesFailed(dataset string, n int) {
	if n > 0 {
		p.failedFiles.WithLabelValues(dataset).Add(float64(n))
	}
}

func (p *Prometheus) Flush(ctx context.Context) error {
	if p.gatewayURL == "" {
		return nil
	}
	return push.New(p.gatewayURL, p.job).Gatherer(p.reg).PushContext(ctx)
}
