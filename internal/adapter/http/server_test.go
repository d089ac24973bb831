package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/school-accident-trends/internal/adapter/http"
	"github.com/couchcryptid/school-accident-trends/internal/domain"
	"github.com/couchcryptid/school-accident-trends/internal/observability"
	"github.com/couchcryptid/school-accident-trends/internal/query"
)

func record(region, weekday, clock, place string) domain.Record {
	r := domain.Record{Region: region, Weekday: weekday, Time: clock}
	r.Values[domain.Place] = place
	return r
}

func testDataset() *domain.Dataset {
	var tables []domain.Table
	for i, y := range []int{2019, 2020, 2021} {
		t := domain.Table{Year: y}
		for n := 0; n < 10*(i+1); n++ {
			t.Records = append(t.Records, record("서울", "월", "10:20", "교실"))
		}
		for n := 0; n < 5; n++ {
			t.Records = append(t.Records, record("서울", "월", "10:40", "운동장"))
		}
		tables = append(tables, t)
	}
	return domain.NewDataset(tables...)
}

// failingService overrides a real service so error paths can be exercised.
type failingService struct {
	*query.Service
	readyErr error
	queryErr error
}

func (f *failingService) CheckReadiness(_ context.Context) error { return f.readyErr }

func (f *failingService) Project(_ context.Context, _ query.Query) (query.ProjectResult, error) {
	return query.ProjectResult{}, f.queryErr
}

func newTestServer(t *testing.T) (*httpadapter.Server, *observability.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	svc := query.NewService(testDataset(), logger, metrics, query.DefaultOptions())
	return httpadapter.NewServer(":0", svc, logger, metrics), metrics
}

func newFailingServer(t *testing.T, readyErr, queryErr error) *httpadapter.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	svc := &failingService{
		Service:  query.NewService(testDataset(), logger, metrics, query.DefaultOptions()),
		readyErr: readyErr,
		queryErr: queryErr,
	}
	return httpadapter.NewServer(":0", svc, logger, metrics)
}

func post(t *testing.T, srv http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newFailingServer(t, errors.New("no dataset loaded"), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCatalog(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body query.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Dimensions, 6)
	assert.Equal(t, []int{2019, 2020, 2021}, body.Years)
	assert.Equal(t, 2022, body.DefaultTargetYear)
	assert.Equal(t, "place", body.Dimensions[0].Name)
}

func TestTabulate(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := post(t, srv, "/api/v1/tabulate",
		`{"dimension":"place","region":"서울","weekday":"월","hour_start":10,"hour_end":11}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body query.TabulateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.QueryID)
	assert.False(t, body.GeneratedAt.IsZero())
	assert.Equal(t, map[int]int{2019: 15, 2020: 25, 2021: 35}, body.Tabulation.Counts)
	assert.Equal(t, 10, body.Tabulation.LabelCounts[2019]["교실"])
}

func TestProject(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := post(t, srv, "/api/v1/project",
		`{"dimension":"place","region":"서울","weekday":"월","hour_start":10,"hour_end":11,"target_year":2022}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body query.ProjectResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2022, body.Projection.TargetYear)
	assert.InDelta(t, 40.0, body.Projection.Counts["교실"], 1e-6)
	assert.InDelta(t, 5.0, body.Projection.Counts["운동장"], 1e-6)
	assert.InDelta(t, 45.0, body.Projection.Total, 1e-6)
}

func TestProjectEmptyRangeIsAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := post(t, srv, "/api/v1/project",
		`{"dimension":"place","region":"서울","weekday":"월","hour_start":10,"hour_end":10}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body query.ProjectResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Projection.Total)
}

func TestGrid(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := post(t, srv, "/api/v1/grid", `{"dimension":"place","region":"서울","weekday":"월"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body query.GridResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Grid.Slots, 16)
	assert.Equal(t, 6, body.Grid.Slots[0].HourStart)
	assert.Equal(t, domain.BandHigh, body.Grid.Slots[4].Cells["교실"].Band)

	rec = post(t, srv, "/api/v1/grid", `{"dimension":"place","region":"서울","weekday":"월","from_hour":0,"to_hour":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Grid.Slots, 3)
}

func TestWeekdays(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := post(t, srv, "/api/v1/weekdays", `{"dimension":"place","region":"서울","hour_start":0,"hour_end":24}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body query.WeekdaysResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 15, body.Breakdown.Years[2019]["월"].Count)
	assert.Equal(t, 0, body.Breakdown.Years[2019]["일"].Count)
}

func TestInvalidRequests(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		endpoint string
		want     string
	}{
		{"malformed json", "/api/v1/tabulate", `{"dimension":`, "tabulate", "decode request"},
		{"missing hour", "/api/v1/tabulate", `{"dimension":"place","region":"서울","weekday":"월","hour_start":10}`, "tabulate", "hour_end"},
		{"hour out of range", "/api/v1/project", `{"dimension":"place","region":"서울","weekday":"월","hour_start":10,"hour_end":30}`, "project", "hour_end"},
		{"non-numeric hour", "/api/v1/project", `{"dimension":"place","region":"서울","weekday":"월","hour_start":"ten","hour_end":11}`, "project", "decode request"},
		{"bad weekday", "/api/v1/tabulate", `{"dimension":"place","region":"서울","weekday":"Monday","hour_start":10,"hour_end":11}`, "tabulate", "weekday"},
		{"inverted range", "/api/v1/tabulate", `{"dimension":"place","region":"서울","weekday":"월","hour_start":12,"hour_end":11}`, "tabulate", "before"},
		{"unknown dimension", "/api/v1/project", `{"dimension":"weather","region":"서울","weekday":"월","hour_start":10,"hour_end":11}`, "project", "unknown dimension"},
		{"inverted grid", "/api/v1/grid", `{"dimension":"place","region":"서울","weekday":"월","from_hour":12,"to_hour":8}`, "grid", "from_hour"},
		{"missing region", "/api/v1/weekdays", `{"dimension":"place","hour_start":0,"hour_end":24}`, "weekdays", "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, metrics := newTestServer(t)
			rec := post(t, srv, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.want)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.InvalidRequests.WithLabelValues(tt.endpoint)), 0)
		})
	}
}

func TestQueryFailureReturns500(t *testing.T) {
	srv := newFailingServer(t, nil, errors.New("boom"))
	rec := post(t, srv, "/api/v1/project",
		`{"dimension":"place","region":"서울","weekday":"월","hour_start":10,"hour_end":11}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "query failed", body["error"])
}
