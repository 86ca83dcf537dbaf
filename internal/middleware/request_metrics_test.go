package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/weeklyfit/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	promcl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	metricsManager, reg := metrics.NewTestManagerAndRegistry()

	r := mux.NewRouter()
	r.Use(RequestMetrics(metricsManager))
	r.HandleFunc("/weekly/meals/{slot}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}).Methods("PUT")

	for _, slot := range []string{"breakfast", "lunch"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("PUT", "/weekly/meals/"+slot, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(metricsManager.CounterRequests.WithLabelValues("PUT", "400")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.GaugeRequests))
	// both requests share the templated route label
	assert.Equal(t, 1, testutil.CollectAndCount(metricsManager.HistogramRequestDuration))

	count, err := testutil.GatherAndCount(reg, "weeklyfit_test_server_request_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	gathered, err := reg.Gather()
	require.NoError(t, err)
	var durationHistogram *promcl.MetricFamily
	for _, m := range gathered {
		if m.GetName() == "weeklyfit_test_server_request_duration_seconds" {
			durationHistogram = m
			break
		}
	}
	require.NotNil(t, durationHistogram)
	require.Len(t, durationHistogram.GetMetric(), 1)

	sample := durationHistogram.GetMetric()[0]
	assert.Equal(t, uint64(2), sample.GetHistogram().GetSampleCount())
	labels := map[string]string{}
	for _, l := range sample.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, map[string]string{
		"route":       "/weekly/meals/{slot}",
		"method":      "PUT",
		"status_code": "400",
	}, labels)
}

func TestDrainAndCloseRequest(t *testing.T) {
	body := &trackingBody{remaining: 10}
	req := httptest.NewRequest("POST", "/weekly/exercises", nil)
	req.Body = body

	DrainAndCloseRequest()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, body.closed)
	assert.Equal(t, int64(10), body.read)
}

func TestDrainAndCloseRequest_BoundedDrain(t *testing.T) {
	body := &trackingBody{remaining: 10 * maxDrainBytes}
	req := httptest.NewRequest("POST", "/weekly", nil)
	req.Body = body

	DrainAndCloseRequest()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, body.closed)
	assert.Equal(t, int64(maxDrainBytes), body.read)
}

type trackingBody struct {
	remaining int64
	read      int64
	closed    bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	if b.remaining == 0 {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > b.remaining {
		n = b.remaining
	}
	b.remaining -= n
	b.read += n
	return int(n), nil
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
