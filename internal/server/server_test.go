package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/toastq/internal/core/envelope"
	"github.com/hay-kot/toastq/internal/core/notify"
)

type memHistory struct {
	mu      sync.Mutex
	records []notify.Record
}

func (m *memHistory) Save(_ context.Context, r notify.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.records) + 1)
	m.records = append([]notify.Record{r}, m.records...)
	return r.ID, nil
}

func (m *memHistory) List(context.Context) ([]notify.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Record(nil), m.records...), nil
}

func (m *memHistory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *memHistory) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

type testEnv struct {
	center *notify.Center[string]
	server *Server
	http   *httptest.Server
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	center := notify.New[string]()
	s := New(center, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
		center.Clear()
	})
	return &testEnv{center: center, server: s, http: ts}
}

func do[T any](t *testing.T, env *testEnv, method, path string, body any) (int, envelope.Envelope[T]) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequest(method, env.http.URL+path, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out envelope.Envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_create_and_list(t *testing.T) {
	env := newTestEnv(t)

	status, created := do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{
		Title:       "Saved",
		Description: "invoice 42",
		Severity:    notify.SeveritySuccess,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Data.ID)
	assert.Equal(t, "Saved", created.Data.Title)
	assert.Equal(t, int64(8000), created.Data.DurationMS)
	assert.True(t, created.Data.Visible)

	status, list := do[[]Toast](t, env, http.MethodGet, "/api/toasts", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.Data.ID, list.Data[0].ID)
}

func TestServer_create_explicit_duration_and_id(t *testing.T) {
	env := newTestEnv(t)

	_, created := do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{
		ID:         "fixed",
		Severity:   notify.SeverityError,
		DurationMS: 1500,
	})

	assert.Equal(t, "fixed", created.Data.ID)
	assert.Equal(t, int64(1500), created.Data.DurationMS)
}

func TestServer_create_rejects_bad_input(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{"},
		{"unknown severity", CreateRequest{Severity: "fatal"}},
		{"negative duration", CreateRequest{DurationMS: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := do[any](t, env, http.MethodPost, "/api/toasts", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, out.Success)
			assert.NotEmpty(t, out.Message)
		})
	}

	assert.Zero(t, env.center.Len())
}

func TestServer_update(t *testing.T) {
	env := newTestEnv(t)
	h := env.center.Notify(notify.Spec[string]{Title: "Uploading", Severity: notify.SeverityInfo})

	status, out := do[Toast](t, env, http.MethodPatch, "/api/toasts/"+h.ID(), UpdateRequest{
		Severity: notify.Ptr(notify.SeverityError),
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, notify.SeverityError, out.Data.Severity)
	assert.Equal(t, "Uploading", out.Data.Title)
	// Not created through the API, so the duration is left alone.
	assert.Equal(t, int64(8000), out.Data.DurationMS)
}

func TestServer_update_rederives_duration_for_api_toasts(t *testing.T) {
	env := newTestEnv(t)
	_, created := do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{Severity: notify.SeverityInfo})

	_, out := do[Toast](t, env, http.MethodPatch, "/api/toasts/"+created.Data.ID, UpdateRequest{
		Title:    notify.Ptr("Failed"),
		Severity: notify.Ptr(notify.SeverityError),
	})

	assert.Equal(t, "Failed", out.Data.Title)
	assert.Equal(t, int64(12000), out.Data.DurationMS)
}

func TestServer_pruneHandles_keeps_handles_missing_from_stale_snapshot(t *testing.T) {
	env := newTestEnv(t)
	_, created := do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{Severity: notify.SeverityInfo})
	id := created.Data.ID

	// A snapshot taken before the create is delivered late.
	env.server.pruneHandles(nil)
	_, ok := env.server.handles.Get(id)
	require.True(t, ok)

	_, out := do[Toast](t, env, http.MethodPatch, "/api/toasts/"+id, UpdateRequest{
		Severity: notify.Ptr(notify.SeverityWarning),
	})
	assert.Equal(t, int64(10000), out.Data.DurationMS)

	env.center.Remove(id)
	_, ok = env.server.handles.Get(id)
	assert.False(t, ok)
}

func TestServer_update_errors(t *testing.T) {
	env := newTestEnv(t)
	h := env.center.Notify(notify.Spec[string]{})

	status, _ := do[any](t, env, http.MethodPatch, "/api/toasts/missing", UpdateRequest{Title: notify.Ptr("x")})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do[any](t, env, http.MethodPatch, "/api/toasts/"+h.ID(), UpdateRequest{DurationMS: notify.Ptr(int64(0))})
	assert.Equal(t, http.StatusBadRequest, status)

	sev := notify.Severity("fatal")
	status, _ = do[any](t, env, http.MethodPatch, "/api/toasts/"+h.ID(), UpdateRequest{Severity: &sev})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_dismiss(t *testing.T) {
	env := newTestEnv(t)
	a := env.center.Notify(notify.Spec[string]{})
	b := env.center.Notify(notify.Spec[string]{})

	status, out := do[any](t, env, http.MethodPost, "/api/toasts/"+a.ID()+"/dismiss", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "toast dismissed", out.Message)

	n, _ := a.Get()
	assert.False(t, n.Visible)
	n, _ = b.Get()
	assert.True(t, n.Visible)

	status, _ = do[any](t, env, http.MethodPost, "/api/toasts/missing/dismiss", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do[any](t, env, http.MethodPost, "/api/toasts/dismiss", nil)
	require.Equal(t, http.StatusOK, status)
	for _, n := range env.center.Snapshot() {
		assert.False(t, n.Visible)
	}
}

func TestServer_remove_and_clear(t *testing.T) {
	env := newTestEnv(t)
	a := env.center.Notify(notify.Spec[string]{})
	env.center.Notify(notify.Spec[string]{})

	status, _ := do[any](t, env, http.MethodDelete, "/api/toasts/"+a.ID(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, env.center.Len())

	status, _ = do[any](t, env, http.MethodDelete, "/api/toasts/"+a.ID(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do[any](t, env, http.MethodDelete, "/api/toasts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, env.center.Len())
	assert.Zero(t, env.server.handles.Len())
}

func TestServer_history(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t)
		status, out := do[any](t, env, http.MethodGet, "/api/history", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "history is disabled", out.Message)
	})

	t.Run("enabled", func(t *testing.T) {
		store := &memHistory{}
		env := newTestEnv(t, WithHistory(store))
		notify.NewRecorder[string](store, nil).Attach(env.center)

		do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{Title: "one"})
		do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{Title: "two"})

		status, out := do[[]notify.Record](t, env, http.MethodGet, "/api/history", nil)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, out.Data, 2)
		assert.Equal(t, "two", out.Data[0].Title)
	})
}

func TestServer_metrics(t *testing.T) {
	env := newTestEnv(t, WithMetrics(prometheus.NewRegistry()))

	do[Toast](t, env, http.MethodPost, "/api/toasts", CreateRequest{Severity: notify.SeverityWarning})

	resp, err := http.Get(env.http.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `toastq_toasts_created_total{severity="warning"} 1`)
	assert.Contains(t, string(body), "toastq_toasts_visible 1")
}

func TestServer_metrics_not_mounted_without_registry(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.http.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_stream(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/api/toasts/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() { _ = conn.Close() }()

	read := func() envelope.Envelope[[]Toast] {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var out envelope.Envelope[[]Toast]
		require.NoError(t, conn.ReadJSON(&out))
		return out
	}

	first := read()
	assert.True(t, first.Success)
	assert.Empty(t, first.Data)

	require.Eventually(t, func() bool { return env.server.clients.Len() == 1 }, time.Second, 10*time.Millisecond)

	env.center.Notify(notify.Spec[string]{Title: "pushed"})

	var got []Toast
	for len(got) == 0 {
		got = read().Data
	}
	assert.Equal(t, "pushed", got[0].Title)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.server.clients.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
