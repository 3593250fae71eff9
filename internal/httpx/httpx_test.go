package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestExchangePostsJSON(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	status, body, err := Exchange(context.Background(), &fasthttp.Client{}, http.MethodPost, server.URL+"/api/x", []byte(`{"a":1}`), 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestExchangeGetHasNoBody(t *testing.T) {
	var gotLength int64 = -1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	status, body, err := Exchange(context.Background(), &fasthttp.Client{}, http.MethodGet, server.URL, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, int64(0), gotLength)
}

func TestExchangeHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, _, err := Exchange(context.Background(), &fasthttp.Client{}, http.MethodGet, server.URL, nil, 50*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, fasthttp.ErrTimeout)
}

func TestExchangeRejectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Exchange(ctx, &fasthttp.Client{}, http.MethodGet, "http://127.0.0.1:1", nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEffectiveDeadline(t *testing.T) {
	_, ok := effectiveDeadline(context.Background(), 0)
	assert.False(t, ok)

	got, ok := effectiveDeadline(context.Background(), time.Second)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), got, 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ctxDeadline, _ := ctx.Deadline()
	got, ok = effectiveDeadline(ctx, time.Hour)
	assert.True(t, ok)
	assert.Equal(t, ctxDeadline, got)
}

func TestErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Error(c, fiber.StatusNotFound, "unknown panel")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unknown panel"}`, string(body))
}
