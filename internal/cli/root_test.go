package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"gopkg.in/yaml.v3"

	"github.com/seuros/vidpulse/internal/config"
	"github.com/seuros/vidpulse/internal/panels"
	"github.com/seuros/vidpulse/internal/reportapi"
)

// newBackend serves canned JSON bodies keyed by path.
func newBackend(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(backend string) *config.Config {
	return &config.Config{
		BackendURL:       backend,
		Port:             "3000",
		ChartDelay:       100 * time.Millisecond,
		RotationInterval: time.Second,
		SessionTTL:       time.Minute,
		TrustedOrigins:   []string{"localhost"},
	}
}

func TestNewServerRoutes(t *testing.T) {
	originalVersion := Version
	Version = "1.2.3"
	t.Cleanup(func() {
		Version = originalVersion
	})

	backend := newBackend(t, map[string]string{"/api/platforms": `["TikTok"]`})
	srv, err := newServer(testConfig(backend.URL), []byte(`<main data-page="{{.PageID}}"></main>`))
	require.NoError(t, err)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "vidpulse", payload["service"])
	assert.Equal(t, "1.2.3", resp.Header.Get("X-VidPulse-Version"))

	up, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/up", nil), fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	_ = up.Body.Close()
	assert.Equal(t, http.StatusOK, up.StatusCode)
}

func TestNewServerBlocksUntrustedOrigins(t *testing.T) {
	srv, err := newServer(testConfig("http://127.0.0.1:1"), []byte(`ok`))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/ui/some-page", nil)
	req.Header.Set("Origin", "https://evil.test")
	resp, err := srv.app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/ui/some-page", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = srv.app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewServerRejectsBadTemplate(t *testing.T) {
	_, err := newServer(testConfig("http://127.0.0.1:1"), []byte(`{{.Broken`))
	assert.Error(t, err)
}

func TestHealthcheck(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/up", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(healthy.Close)
	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(unhealthy.Close)

	var stderr bytes.Buffer
	require.NoError(t, runHealthcheck(context.Background(), &fasthttp.Client{}, healthy.URL+"/up", &stderr))
	assert.Empty(t, stderr.String())

	err := runHealthcheck(context.Background(), &fasthttp.Client{}, unhealthy.URL+"/up", &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, stderr.String(), "Healthcheck failed: status 503")
}

func TestDoctorAllChecksPass(t *testing.T) {
	backend := newBackend(t, map[string]string{
		"/api/platforms":   `["TikTok","YouTube"]`,
		"/api/countries":   `[{"code":"US","name":"United States"}]`,
		"/api/year-months": `[]`,
	})
	cfg := testConfig(backend.URL)

	var out bytes.Buffer
	require.NoError(t, runDoctor(context.Background(), cfg, reportapi.NewClient(cfg.BackendURL, time.Second), false, &out))

	assert.Contains(t, out.String(), "✓ Platform List (2 entries)")
	assert.Contains(t, out.String(), "✓ Country List (1 entries)")
	assert.Contains(t, out.String(), "✓ Year/Month List (0 entries)")
	assert.Contains(t, out.String(), "5/5 checks passed")
}

func TestDoctorJSONReportsFailures(t *testing.T) {
	backend := newBackend(t, map[string]string{
		"/api/platforms": `["TikTok"]`,
		"/api/countries": `not json`,
	})
	cfg := testConfig(backend.URL)
	cfg.TrustedOrigins = nil

	var out bytes.Buffer
	err := runDoctor(context.Background(), cfg, reportapi.NewClient(cfg.BackendURL, time.Second), true, &out)
	require.Error(t, err)
	assert.Equal(t, "3 of 5 checks failed", err.Error())

	var results []CheckResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 5)
	assert.True(t, results[0].Pass)
	assert.False(t, results[1].Pass)
	assert.True(t, results[2].Pass)
	assert.False(t, results[3].Pass)
	assert.Equal(t, backendSuggestion, results[3].Suggestion)
	assert.False(t, results[4].Pass)
}

func TestDoctorSkipsEndpointsForInvalidURL(t *testing.T) {
	cfg := testConfig("ftp://reports")

	var out bytes.Buffer
	err := runDoctor(context.Background(), cfg, reportapi.NewClient(cfg.BackendURL, time.Second), false, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "✗ Backend URL")
	assert.NotContains(t, out.String(), "Platform List")
	assert.Contains(t, out.String(), "1/2 checks passed")
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, formatText, resolveFormat("", true))
	assert.Equal(t, formatJSON, resolveFormat("", false))
	assert.Equal(t, formatYAML, resolveFormat("YAML", true))
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"platform=TikTok", " year_month =2025-03", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, panels.Fields{"platform": "TikTok", "year_month": "2025-03", "note": "a=b"}, fields)

	_, err = parseFields([]string{"platform"})
	assert.Error(t, err)
	_, err = parseFields([]string{"=x"})
	assert.Error(t, err)
}

func newReportBackend(t *testing.T) *reportapi.Client {
	t.Helper()
	backend := newBackend(t, map[string]string{
		"/api/global-analysis":             `{"error":"","report_html":"<h2>Global</h2><p>Views &amp; trends</p>","labels":["US"],"values":[1]}`,
		"/api/platform-dominance-extended": `{"error":"No data for country"}`,
	})
	return reportapi.NewClient(backend.URL, time.Second)
}

func TestRunReportText(t *testing.T) {
	api := newReportBackend(t)

	var out bytes.Buffer
	err := runReport(context.Background(), api, panels.PanelGlobal,
		[]string{"platform=TikTok", "year_month=2025-03"}, formatText, &out)
	require.NoError(t, err)
	assert.Equal(t, "Global\nViews & trends\n", out.String())
}

func TestRunReportJSONAndYAML(t *testing.T) {
	api := newReportBackend(t)
	pairs := []string{"platform=TikTok", "year_month=2025-03"}

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), api, panels.PanelGlobal, pairs, formatJSON, &out))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, []any{"US"}, payload["labels"])

	out.Reset()
	require.NoError(t, runReport(context.Background(), api, panels.PanelGlobal, pairs, formatYAML, &out))
	assert.NotContains(t, out.String(), "{")
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, []any{"US"}, decoded["labels"])
	assert.Equal(t, "<h2>Global</h2><p>Views &amp; trends</p>", decoded["report_html"])
}

func TestRunReportBackendError(t *testing.T) {
	api := newReportBackend(t)

	var out bytes.Buffer
	err := runReport(context.Background(), api, panels.PanelDominance, []string{"country_code=ZZ"}, formatText, &out)
	require.Error(t, err)
	assert.Equal(t, "backend error: No data for country", err.Error())
	assert.Empty(t, out.String())

	err = runReport(context.Background(), api, panels.PanelDominance, []string{"country_code=ZZ"}, formatJSON, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), `"error": "No data for country"`)
}

func TestRunReportRejectsBadInput(t *testing.T) {
	api := newReportBackend(t)
	var out bytes.Buffer

	err := runReport(context.Background(), api, panels.PanelGlobal, []string{"platform=TikTok"}, formatText, &out)
	var verr *panels.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, panels.PanelGlobal, verr.Panel)

	err = runReport(context.Background(), api, panels.PanelGlobal, []string{"colour=red"}, formatText, &out)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "panel global has no field \"colour\""))

	err = runReport(context.Background(), api, "weather", nil, formatText, &out)
	assert.ErrorIs(t, err, panels.ErrUnknownPanel)

	err = runReport(context.Background(), api, panels.PanelGlobal, nil, "csv", &out)
	assert.EqualError(t, err, `unsupported format "csv" (use text, json or yaml)`)
	assert.Empty(t, out.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range RootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "report", "doctor", "healthcheck"} {
		assert.True(t, names[want], want)
	}
}
