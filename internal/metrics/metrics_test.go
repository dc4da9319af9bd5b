package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, cv *prometheus.CounterVec, label string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, cv.WithLabelValues(label).Write(m))
	return m.GetCounter().GetValue()
}

func TestObserveIngest_SplitsByOutcome(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.ObserveIngest(nil)
	r.ObserveIngest(errors.New("boom"))
	r.ObserveIngest(nil)

	require.Equal(t, float64(2), counterValue(t, r.Ingests, OutcomeOK))
	require.Equal(t, float64(1), counterValue(t, r.Ingests, OutcomeError))
}

func TestObserveExtractUploadDownloadReplace_Independent(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.ObserveExtract(errors.New("x"))
	r.ObserveUpload(nil)
	r.ObserveDownload(nil)
	r.ObserveReplace(errors.New("y"))

	require.Equal(t, float64(1), counterValue(t, r.Extracts, OutcomeError))
	require.Equal(t, float64(1), counterValue(t, r.Uploads, OutcomeOK))
	require.Equal(t, float64(1), counterValue(t, r.Downloads, OutcomeOK))
	require.Equal(t, float64(1), counterValue(t, r.Replaces, OutcomeError))
}
