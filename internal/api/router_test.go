package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ec-simulator/internal/api/models"
	"ec-simulator/internal/cache"
	"ec-simulator/internal/insight"
	"ec-simulator/internal/metrics"
	"ec-simulator/internal/simulation"
)

const presetDir = "../../examples/scenarios"

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ insight.CompletionRequest) (string, error) {
	f.calls++
	return f.reply, f.err
}

type testServer struct {
	router    *gin.Engine
	completer *fakeCompleter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	src := insight.NewMockSource(7)
	src.Now = func() time.Time { return time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC) }
	completer := &fakeCompleter{}

	router := NewRouter(Deps{
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Runner:    simulation.NewMemoized(nil, cache.NewMemory[*simulation.Result](time.Hour)),
		Source:    src,
		Completer: completer,
		PresetDir: presetDir,
	})
	return &testServer{router: router, completer: completer}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorDetail {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRunSimulation_SingleMarketplace(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations", map[string]any{
		"scenario":     map[string]any{"marketplaces": []string{"rakuten"}},
		"include_rows": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.False(t, resp.Cached)
	assert.Equal(t, 12, resp.RowCount)
	require.Len(t, resp.Rows, 12)

	jan := resp.Rows[0]
	assert.Equal(t, "Jan", jan.MonthLabel)
	assert.EqualValues(t, 37000, jan.Visits)
	assert.InDelta(t, 0.0227, jan.CVR, 1e-9)
	assert.EqualValues(t, 4195800, jan.Revenue)
	assert.EqualValues(t, 2185312, jan.ContributionMargin)

	require.NotNil(t, resp.Report)
	assert.EqualValues(t, "default", resp.Report.Recommendation.Plan)
}

func TestRunSimulation_PresetIsMemoized(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"preset": "three-plans"}

	first := s.do(t, http.MethodPost, "/api/v1/simulations", body)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	var a models.SimulationResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	assert.Equal(t, "Three plans", a.Name)
	assert.Equal(t, 108, a.RowCount)
	assert.False(t, a.Cached)
	assert.Empty(t, a.Rows)
	assert.Len(t, a.Report.Plans, 3)

	second := s.do(t, http.MethodPost, "/api/v1/simulations", body)
	require.Equal(t, http.StatusOK, second.Code)
	var b models.SimulationResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.True(t, b.Cached)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Report.Recommendation, b.Report.Recommendation)
}

func TestRunSimulation_UnknownPreset(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations", map[string]any{"preset": "../secrets"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.CodePresetNotFound, decodeError(t, w).Code)
}

func TestRunSimulation_InvalidConfig(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations", map[string]any{
		"scenario": map[string]any{"general": map[string]any{"cogs_rate": 1.5}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	detail := decodeError(t, w)
	assert.Equal(t, models.CodeInvalidConfig, detail.Code)
	fields, ok := detail.Details["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be at most 1", fields["general.cogs_rate"])
}

func TestRunSimulation_AmountOverflowIsInvalidConfig(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations", map[string]any{
		"scenario": map[string]any{
			"marketplaces": []string{"rakuten"},
			"general":      map[string]any{"average_order_value": 1e15, "organic_visits": 1e9},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	detail := decodeError(t, w)
	assert.Equal(t, models.CodeInvalidConfig, detail.Code)
	assert.Contains(t, detail.Message, "out of range")
}

func TestRunSimulation_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations", `{"scenario":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeInvalidRequest, decodeError(t, w).Code)
}

func TestExportSimulation(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations/export", map[string]any{
		"scenario": map[string]any{"marketplaces": []string{"yahoo"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ec_simulation_result.csv")

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "\xef\xbb\xbf"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xef\xbb\xbf")), "\n")
	assert.Equal(t, strings.Join(simulation.CSVHeader, ","), strings.TrimSpace(lines[0]))
	assert.Len(t, lines, 13)
}

func TestExportSimulation_WithoutBOM(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/simulations/export", map[string]any{"bom": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "plan,month,"))
}

func TestListPlans(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PlansResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Plans, 3)
	assert.EqualValues(t, "conservative", resp.Plans[0].Name)
	assert.True(t, resp.Plans[0].IsBaseline)
	assert.Equal(t, 2.0, resp.Plans[2].AdBudget)
	assert.Equal(t, 1, resp.Plans[2].PreferenceRank)
	assert.Equal(t, 3.0, resp.Policy.MinIncrementalROAS)
}

func TestListMarketplaces(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/marketplaces", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.MarketplacesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Marketplaces, 3)
	assert.EqualValues(t, "amazon", resp.Default)
	assert.Equal(t, []int{7}, resp.Marketplaces[0].EventMonths)
	assert.Equal(t, []int{3, 6, 9, 12}, resp.Marketplaces[1].EventMonths)
	assert.Equal(t, 0.03, resp.Marketplaces[2].CommissionRate)
}

func TestListPresets(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PresetsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Presets, 4)
}

func TestInsightSnapshot(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/insight/snapshot?period=weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dash insight.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, insight.PeriodWeekly, dash.Period)
	assert.Len(t, dash.TopPages, insight.DefaultTopPages)
	assert.NotEmpty(t, dash.KPIs)
	assert.Less(t, len(dash.Series), insight.DefaultSeriesDays)

	bad := s.do(t, http.MethodGet, "/api/v1/insight/snapshot?period=hourly", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestInsightAnalyze_MissingKey(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/insight/analyze", map[string]any{"api_key": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeMissingAPIKey, decodeError(t, w).Code)
	assert.Zero(t, s.completer.calls)
}

func TestInsightAnalyze_UnsupportedModel(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/insight/analyze", map[string]any{"api_key": "k", "model": "gpt-4"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeInvalidRequest, decodeError(t, w).Code)
}

func TestInsightAnalyze_ProviderErrorIsPassedThrough(t *testing.T) {
	s := newTestServer(t)
	s.completer.err = &insight.CompletionError{
		StatusCode: http.StatusBadRequest,
		Status:     "INVALID_ARGUMENT",
		Message:    "API key not valid. Please pass a valid API key.",
	}

	w := s.do(t, http.MethodPost, "/api/v1/insight/analyze", map[string]any{"api_key": "bad"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, models.CodeCompletionFailed, detail.Code)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", detail.Message)
	assert.Equal(t, "INVALID_ARGUMENT", detail.Details["status"])
}

func TestInsightAnalyze_OK(t *testing.T) {
	s := newTestServer(t)
	s.completer.reply = "```json\n{\"agents\":{\"ui\":\"ok\",\"seo\":\"meh\",\"analyst\":\"up\"},\"matrix\":[{\"priority\":1,\"task\":\"CTA\",\"total\":\"A\"}]}\n```"

	w := s.do(t, http.MethodPost, "/api/v1/insight/analyze", map[string]any{"api_key": "k", "model": insight.ModelGeminiPro})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.InsightAnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, insight.ModelGeminiPro, resp.Model)
	assert.Equal(t, insight.PeriodDaily, resp.Period)
	require.NotNil(t, resp.Commentary)
	assert.Equal(t, "up", resp.Commentary.Agents.Analyst)
	require.Len(t, resp.Commentary.Matrix, 1)
	assert.Equal(t, 1, s.completer.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/plans", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ecsim_http_requests_total{method="GET",route="/api/v1/plans",status="200"} 1`)
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.CodeNotFound, decodeError(t, w).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicIsRecovered(t *testing.T) {
	s := newTestServer(t)
	s.router.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := s.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, models.CodeInternal, detail.Code)
	assert.Equal(t, "kaboom", detail.Message)
}
