package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/flu-mobility-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
	"github.com/couchcryptid/flu-mobility-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockInflows struct {
	series    domain.WeeklySeries
	err       error
	requested string
}

func (m *mockInflows) Series(fips string) (domain.WeeklySeries, error) {
	m.requested = fips
	return m.series, m.err
}

func newTestServer(readyErr error, inflows *mockInflows) *httpadapter.Server {
	if inflows == nil {
		inflows = &mockInflows{}
	}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, inflows, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(fmt.Errorf("not ready yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStatesEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/v1/states")
	require.Equal(t, http.StatusOK, rec.Code)

	var states []domain.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
	assert.Len(t, states, 51)
	assert.Equal(t, domain.State{FIPS: 1, Abbr: "AL"}, states[0])
}

func TestStateEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)

	for _, code := range []string{"pa", "PA", "42"} {
		rec := get(t, srv, "/v1/states/"+code)
		require.Equal(t, http.StatusOK, rec.Code, code)

		var state domain.State
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
		assert.Equal(t, domain.State{FIPS: 42, Abbr: "PA"}, state)
	}

	rec := get(t, srv, "/v1/states/PR")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown location")
}

func TestSeriesEndpoint(t *testing.T) {
	v1, v3 := 10.0, 30.0
	inflows := &mockInflows{series: domain.WeeklySeries{
		DestFIPS: "06037",
		Points: []domain.SeriesPoint{
			{Week: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Inflow: &v1},
			{Week: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
			{Week: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Inflow: &v3},
		},
	}}

	rec := get(t, newTestServer(nil, inflows), "/v1/inflows/FIPS:6037/series")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "06037", inflows.requested)

	var body struct {
		DestFIPS string `json:"dest_fips"`
		Points   []struct {
			Week   time.Time `json:"week"`
			Inflow *float64  `json:"total_inflow"`
		} `json:"points"`
		Summary domain.SeriesSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "06037", body.DestFIPS)
	require.Len(t, body.Points, 3)
	assert.Nil(t, body.Points[1].Inflow)
	assert.Equal(t, 3, body.Summary.Weeks)
	assert.Equal(t, 2, body.Summary.Observed)
	assert.Equal(t, 20.0, body.Summary.Mean)
}

func TestSeriesEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"no digits", "/v1/inflows/unknown/series", nil, http.StatusBadRequest},
		{"not ready", "/v1/inflows/06037/series", pipeline.ErrNotReady, http.StatusServiceUnavailable},
		{"bad data", "/v1/inflows/06037/series", errors.New("parse week"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(nil, &mockInflows{err: tt.err}), tt.path)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSeriesEndpoint_EmptySeries(t *testing.T) {
	inflows := &mockInflows{series: domain.WeeklySeries{DestFIPS: "36061", Points: []domain.SeriesPoint{}}}

	rec := get(t, newTestServer(nil, inflows), "/v1/inflows/36061/series")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":[]`)
}
