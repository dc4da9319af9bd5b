// Package metrics generalizes the teacher's analytics.Recorder (cache
// hit/miss events in cache_fs.go/cache_http.go) into Prometheus counters for
// the hub's own operations: ingest, extract, upload and download.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exposes the counters the hub increments as it serves requests.
type Recorder struct {
	Ingests   *prometheus.CounterVec
	Extracts  *prometheus.CounterVec
	Uploads   *prometheus.CounterVec
	Downloads *prometheus.CounterVec
	Replaces  *prometheus.CounterVec
}

// New registers the hub's counters against reg and returns a Recorder.
// Pass prometheus.NewRegistry() in tests to avoid colliding with the
// default global registry across parallel test packages.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extension_hub",
			Name:      "ingests_total",
			Help:      "Archive ingest attempts by outcome.",
		}, []string{"outcome"}),
		Extracts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extension_hub",
			Name:      "extracts_total",
			Help:      "Archive extraction attempts by outcome.",
		}, []string{"outcome"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extension_hub",
			Name:      "uploads_total",
			Help:      "Bulk-plane upload requests by outcome.",
		}, []string{"outcome"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extension_hub",
			Name:      "downloads_total",
			Help:      "Bulk-plane download requests by outcome.",
		}, []string{"outcome"}),
		Replaces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extension_hub",
			Name:      "text_replaces_total",
			Help:      "ReplaceText RPCs by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.Ingests, r.Extracts, r.Uploads, r.Downloads, r.Replaces)
	return r
}

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

func (r *Recorder) ObserveIngest(err error)   { r.Ingests.WithLabelValues(outcome(err)).Inc() }
func (r *Recorder) ObserveExtract(err error)  { r.Extracts.WithLabelValues(outcome(err)).Inc() }
func (r *Recorder) ObserveUpload(err error)   { r.Uploads.WithLabelValues(outcome(err)).Inc() }
func (r *Recorder) ObserveDownload(err error) { r.Downloads.WithLabelValues(outcome(err)).Inc() }
func (r *Recorder) ObserveReplace(err error)  { r.Replaces.WithLabelValues(outcome(err)).Inc() }
