package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/recorder"
)

func priceCSV(n int) string {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,1000\n", day.AddDate(0, 0, i).Format("2006-01-02"), c-0.5, c+1, c-1, c)
	}
	return b.String()
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	col := collector.NewCollector(&collector.MockFetcher{Price: 120}, nil, 60, "1d", nil)
	col.Now = func() time.Time { return time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC) }
	rec, err := recorder.NewSQLiteRecorder(t.TempDir()+"/api.db", nil)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	s := New(calculator.New(calculator.Options{}), col, rec, NewMetrics(prometheus.NewRegistry()), nil)
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return s, srv
}

func scrape(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestIndicators_ReturnsReport(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/indicators", "text/csv", strings.NewReader(priceCSV(40)))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "\nCalculated Indicators:\n"))
	assert.Len(t, strings.Split(strings.TrimPrefix(string(body), "\n"), "\n"), 8)
	metrics := scrape(t, srv)
	assert.Contains(t, metrics, "analyst_calculation_rows 40\n")
	assert.Contains(t, metrics, `analyst_http_requests_total{route="/v1/indicators",status="200"} 1`)
}

func TestIndicators_QueryOverrides(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/indicators?tail=2&extended=true", "text/csv", strings.NewReader(priceCSV(30)))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Parabolic_SAR")
	assert.Len(t, strings.Split(strings.TrimPrefix(string(body), "\n"), "\n"), 5)

	resp, err = http.Post(srv.URL+"/v1/indicators?tail=zero", "text/csv", strings.NewReader(priceCSV(30)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndicators_ParseErrorIsBadRequest(t *testing.T) {
	_, srv := newTestServer(t)

	csv := "Date,Open,High,Low,Close,Volume\n2024-01-01,1,2,0.5,N/A,10\n"
	resp, err := http.Post(srv.URL+"/v1/indicators", "text/csv", strings.NewReader(csv))
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, payload["error"], "Close")
	metrics := scrape(t, srv)
	assert.Contains(t, metrics, "analyst_calculation_errors_total 1\n")
	assert.Contains(t, metrics, `analyst_http_requests_total{route="/v1/indicators",status="400"} 1`)
}

func TestReportAndHistory(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/report/aapl")
	require.NoError(t, err)
	var report model.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AAPL", report.Symbol)
	assert.Equal(t, "mock", report.Source)
	require.NotNil(t, report.Summary)
	assert.Contains(t, report.Latest, model.ColRSI)

	resp, err = http.Get(srv.URL + "/v1/history/AAPL?limit=5")
	require.NoError(t, err)
	var recs []recorder.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	resp.Body.Close()
	require.Len(t, recs, 1)
	assert.Equal(t, report.ID, recs[0].ID)

	resp, err = http.Get(srv.URL + "/v1/history/AAPL?limit=-1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, scrape(t, srv), `analyst_http_requests_total{route="/healthz",status="200"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/indicators")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
