// Package metrics records batch run statistics in a Prometheus registry and
// dumps them in the node_exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/cvjd/pkg/cvjd/featurize"
)

// Recorder observes featurizer runs and scalar feature jobs.
type Recorder struct {
	registry *prometheus.Registry

	runSeconds  *prometheus.HistogramVec
	records     *prometheus.GaugeVec
	vocabulary  *prometheus.GaugeVec
	explained   *prometheus.GaugeVec
	malformed   *prometheus.CounterVec
	scalarsSeen *prometheus.CounterVec
	scalarsMiss *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cvjd_group_run_seconds",
			Help:    "Wall time of one column group fit.",
			Buckets: prometheus.DefBuckets,
		}, []string{"group"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cvjd_group_records",
			Help: "Records in the last fit of a group.",
		}, []string{"group"}),
		vocabulary: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cvjd_group_vocabulary_size",
			Help: "TF-IDF vocabulary size of a group.",
		}, []string{"group"}),
		explained: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cvjd_group_explained_variance_ratio",
			Help: "Share of variance kept by the reduced dimensions.",
		}, []string{"group"}),
		malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cvjd_malformed_fields_total",
			Help: "Fields that failed structural parsing and were treated as empty.",
		}, []string{"group"}),
		scalarsSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cvjd_scalar_values_total",
			Help: "Scalar feature values computed.",
		}, []string{"feature"}),
		scalarsMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cvjd_scalar_missing_total",
			Help: "Scalar feature values with no usable input.",
		}, []string{"feature"}),
	}

	r.registry.MustRegister(r.runSeconds)
	r.registry.MustRegister(r.records)
	r.registry.MustRegister(r.vocabulary)
	r.registry.MustRegister(r.explained)
	r.registry.MustRegister(r.malformed)
	r.registry.MustRegister(r.scalarsSeen)
	r.registry.MustRegister(r.scalarsMiss)
	return r
}

// ObserveRun implements featurize.Observer.
func (r *Recorder) ObserveRun(res *featurize.Result) {
	group := res.Group.Name
	r.runSeconds.WithLabelValues(group).Observe(res.Elapsed.Seconds())
	r.vocabulary.WithLabelValues(group).Set(float64(res.VocabularySize))
	r.malformed.WithLabelValues(group).Add(float64(res.Malformed))

	if res.Features != nil {
		r.records.WithLabelValues(group).Set(float64(len(res.Features.IDs)))
	}

	total := 0.0
	for _, v := range res.ExplainedVarianceRatio {
		total += v
	}
	r.explained.WithLabelValues(group).Set(total)
}

// ObserveScalars counts one scalar feature pass; missing are the values
// that had nothing to parse.
func (r *Recorder) ObserveScalars(feature string, total, missing int) {
	r.scalarsSeen.WithLabelValues(feature).Add(float64(total))
	r.scalarsMiss.WithLabelValues(feature).Add(float64(missing))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current values to path for the node_exporter
// textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
